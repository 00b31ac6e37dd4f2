package target

import (
	"context"
	"io"

	"github.com/opencontainers/go-digest"
)

// Starts build containers from base images.
type Engine interface {

	// Starts a container with the given ID from the base image for the given
	// OCI platform (e.g., "linux/amd64").
	Start(ctx context.Context, base Base, id, platform string) (Target, error)

	// Releases the engine's client connection.
	Close() error
}

// A running build container.
type Target interface {

	// Runs command through "shell -c". A non-zero exit code is reported in
	// the result, not as an error.
	Exec(ctx context.Context, shell, command string, env []string, workdir string) (*ExecResult, error)

	// Creates a directory inside the container, including parents.
	MkdirAll(ctx context.Context, path string) error

	// Extracts a tar stream into destDir inside the container.
	CopyTo(ctx context.Context, r io.Reader, destDir string) error

	// Stops the container and commits its filesystem as a new image stored
	// under ref. When output is non-empty, the image is also written there as
	// an archive.
	Commit(ctx context.Context, ref string, cfg ImageConfig, output string) (*Image, error)

	// Removes the container and its resources. Errors are logged, not returned.
	Destroy(ctx context.Context)
}

// Identifies the base image a build starts from.
type Base struct {
	Ref     string // Image reference, e.g. "docker.io/library/python:3.12.4-slim".
	Archive string // Optional OCI archive to import instead of pulling Ref.
}

// Output of a command execution inside a container.
type ExecResult struct {
	ExitCode int    // Exit code of the process.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Image configuration applied at commit time.
type ImageConfig struct {
	Cmd          []string          // Default command. The entrypoint is cleared.
	ExposedPorts []string          // Ports in "port/proto" form.
	WorkingDir   string            // Working directory of the default process.
	Env          []string          // Extra "key=value" entries merged into the image env.
	Labels       map[string]string // Image labels.
}

// A committed image.
type Image struct {
	Ref    string        // Name the image was stored under.
	Path   string        // Archive written by the commit, empty when none was requested.
	Digest digest.Digest // Digest of the image manifest (containerd) or image ID (Docker).
}
