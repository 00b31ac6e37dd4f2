package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/containerd/platforms"
	"gopkg.in/yaml.v3"
)

// Conventional recipe filename, looked up in the build context.
const Filename = "provision.yaml"

// Supported native package managers.
const (
	ManagerApt = "apt"
	ManagerApk = "apk"
)

// Describes a complete provisioning run.
type Recipe struct {
	Name     string            `yaml:"name"`     // Build name, used for container IDs and the default image tag.
	Base     Base              `yaml:"base"`     // Pinned base image.
	Platform string            `yaml:"platform"` // Target OCI platform. Empty means the host platform.
	Native   Native            `yaml:"native"`   // Native system packages.
	Source   Source            `yaml:"source"`   // Source tree placement.
	Package  Package           `yaml:"package"`  // Package build and install.
	Purge    Purge             `yaml:"purge"`    // Post-install cleanup.
	Runtime  Runtime           `yaml:"runtime"`  // Runtime declarations of the final image.
	Env      map[string]string `yaml:"env"`      // Environment applied to every build command and kept in the image.
}

// Identifies the base image.
type Base struct {
	Ref     string `yaml:"ref"`     // Image reference pinned to an exact version or digest.
	Archive string `yaml:"archive"` // Optional OCI archive, relative to the build context, imported instead of pulling.
}

// Lists the native packages installed on the base image.
type Native struct {
	Manager  string   `yaml:"manager"`  // Package manager, "apt" or "apk".
	Packages []string `yaml:"packages"` // Package names. Order and duplicates are irrelevant.
}

// Places the source tree inside the target.
type Source struct {
	Workdir string `yaml:"workdir"` // Absolute path the build context is copied to.
}

// Configures how the distributable package is built and installed.
type Package struct {
	Name      string   `yaml:"name"`      // Distribution name registered after install.
	Python    string   `yaml:"python"`    // Interpreter used to run pip and the build frontend.
	Manifest  string   `yaml:"manifest"`  // Dependency manifest, relative to the source tree.
	Toolchain []string `yaml:"toolchain"` // Packaging tools upgraded before anything else is installed.
	Output    string   `yaml:"output"`    // Artifact directory, relative to the source tree.
	Artifact  string   `yaml:"artifact"`  // Glob the single build artifact must match.
}

// Lists what is removed once the package is installed.
type Purge struct {
	Extra []string `yaml:"extra"` // Literal absolute paths removed in addition to the source tree. Globs are rejected.
}

// Declares how the final image is run.
type Runtime struct {
	Port    int    `yaml:"port"`    // TCP port the process listens on.
	Command string `yaml:"command"` // Command name resolved through PATH.
}

// Returns the recipe describing the ragbuilder image.
func Default() *Recipe {
	return &Recipe{
		Name: "ragbuilder",
		Base: Base{
			Ref: "python:3.12.4-slim",
		},
		Native: Native{
			Manager:  ManagerApt,
			Packages: []string{"libjpeg-dev", "zlib1g-dev", "gcc", "pkg-config"},
		},
		Source: Source{
			Workdir: "/ragbuilder",
		},
		Package: Package{
			Name:      "ragbuilder",
			Python:    "python3",
			Manifest:  "requirements.txt",
			Toolchain: []string{"pip", "setuptools", "wheel", "build"},
			Output:    "dist",
			Artifact:  "*.tar.gz",
		},
		Purge: Purge{
			Extra: []string{"/root/.cache/pip"},
		},
		Runtime: Runtime{
			Port:    8085,
			Command: "ragbuilder",
		},
	}
}

// Reads and validates the recipe at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}
	return Parse(data)
}

// Returns the recipe for a build context.
//
// An explicit path is loaded as is. Otherwise the context's [Filename] is
// loaded when present, and [Default] is used when it is not.
func Find(contextDir, path string) (*Recipe, error) {
	if path != "" {
		return Load(path)
	}

	path = filepath.Join(contextDir, Filename)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		r := Default()
		return r, r.Validate()
	}
	return Load(path)
}

// Decodes a YAML recipe on top of [Default] and validates it.
//
// Unknown fields are rejected so that typos do not silently fall back to
// defaults. Lists replace the default lists instead of extending them.
func Parse(data []byte) (*Recipe, error) {
	r := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(r); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Checks every field for consistency.
//
// The base must be pinned (see [CheckPinned]), paths inside the target must
// be absolute, paths inside the source tree must be relative and stay inside
// it, and the runtime command must be a bare name so that it resolves
// through the registered executables rather than a fixed location.
func (r *Recipe) Validate() error {
	if err := CheckPinned(r.Base.Ref); err != nil {
		return err
	}

	checks := []struct {
		ok  bool
		msg string
	}{
		{r.Name != "", "name is required"},
		{r.Native.Manager == ManagerApt || r.Native.Manager == ManagerApk, fmt.Sprintf("unsupported package manager %q", r.Native.Manager)},
		{isTargetPath(r.Source.Workdir), fmt.Sprintf("source workdir %q must be an absolute path below /", r.Source.Workdir)},
		{r.Package.Name != "", "package name is required"},
		{r.Package.Python != "", "package python is required"},
		{isSourcePath(r.Package.Manifest), fmt.Sprintf("manifest %q must be a relative path inside the source tree", r.Package.Manifest)},
		{isSourcePath(r.Package.Output), fmt.Sprintf("output %q must be a relative path inside the source tree", r.Package.Output)},
		{isGlob(r.Package.Artifact), fmt.Sprintf("artifact pattern %q is malformed", r.Package.Artifact)},
		{r.Runtime.Port > 0 && r.Runtime.Port <= 65535, fmt.Sprintf("port %d out of range", r.Runtime.Port)},
		{isCommandName(r.Runtime.Command), fmt.Sprintf("command %q must be a bare executable name", r.Runtime.Command)},
	}
	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%w: %s", ErrInvalidRecipe, c.msg)
		}
	}

	for _, p := range r.Purge.Extra {
		if !isTargetPath(p) {
			return fmt.Errorf("%w: purge path %q must be an absolute path below /", ErrInvalidRecipe, p)
		}
		if strings.ContainsAny(p, "*?[") {
			return fmt.Errorf("%w: purge path %q must be literal, not a glob", ErrInvalidRecipe, p)
		}
	}

	for _, p := range r.Native.Packages {
		if strings.TrimSpace(p) == "" || strings.ContainsAny(p, " \t\n;&|$`'\"") {
			return fmt.Errorf("%w: invalid native package name %q", ErrInvalidRecipe, p)
		}
	}

	if r.Platform != "" {
		if _, err := platforms.Parse(r.Platform); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
		}
	}

	return nil
}

// Returns the path of the manifest inside the target.
func (r *Recipe) ManifestPath() string {
	return path.Join(r.Source.Workdir, r.Package.Manifest)
}

// Returns the artifact directory inside the target.
func (r *Recipe) OutputPath() string {
	return path.Join(r.Source.Workdir, r.Package.Output)
}

// Returns the port declaration in "port/proto" form.
func (r *Recipe) ExposedPort() string {
	return fmt.Sprintf("%d/tcp", r.Runtime.Port)
}

// Whether p is an absolute, clean path that is not the filesystem root.
func isTargetPath(p string) bool {
	return path.IsAbs(p) && path.Clean(p) == p && p != "/"
}

// Whether p is a relative path that stays inside the source tree.
func isSourcePath(p string) bool {
	if p == "" || path.IsAbs(p) {
		return false
	}
	c := path.Clean(p)
	return c != ".." && !strings.HasPrefix(c, "../")
}

// Whether pattern is a well-formed, non-empty glob without separators.
func isGlob(pattern string) bool {
	if pattern == "" || strings.Contains(pattern, "/") {
		return false
	}
	_, err := path.Match(pattern, "")
	return err == nil
}

// Whether name is a bare executable name.
func isCommandName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "/ \t\n")
}
