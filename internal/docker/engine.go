package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/containerd/errdefs"
	"github.com/containerd/platforms"
	"github.com/cruciblehq/provision/internal/target"
	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/jsonmessage"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Label set on every build container so leftovers can be found.
const buildLabel = "org.cruciblehq.provision.build"

// Starts build containers through a Docker daemon.
type Engine struct {
	client *client.Client // Docker Engine API client.
}

var _ target.Engine = (*Engine)(nil)

// Creates an engine connected to the Docker daemon at host.
//
// An empty host uses the environment (DOCKER_HOST and friends). The API
// version is negotiated with the daemon on first use.
func New(host string) (*Engine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, wrap(err)
	}

	return &Engine{client: cli}, nil
}

// Closes the client connection.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Starts a build container from the base image.
//
// The base is loaded from its archive when one is set, or pulled otherwise.
// Any container left behind under the same ID is removed first. An empty
// platform uses the daemon's default.
func (e *Engine) Start(ctx context.Context, base target.Base, id, platform string) (target.Target, error) {
	ref, err := normalize(base.Ref)
	if err != nil {
		return nil, err
	}

	if base.Archive != "" {
		err = e.loadBase(ctx, base.Archive, ref)
	} else {
		err = e.pullBase(ctx, ref, platform)
	}
	if err != nil {
		return nil, err
	}

	ctr := &Container{client: e.client, id: id}
	ctr.remove(ctx)

	var plat *ocispec.Platform
	if platform != "" {
		p, err := platforms.Parse(platform)
		if err != nil {
			return nil, wrap(err)
		}
		plat = &p
	}

	if _, err := e.client.ContainerCreate(ctx, containerConfig(ref), &container.HostConfig{}, nil, plat, id); err != nil {
		return nil, wrap(err)
	}

	if err := e.client.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		ctr.Destroy(ctx)
		return nil, wrap(err)
	}

	slog.Debug("container started", "id", id, "image", ref)
	return ctr, nil
}

// Pulls ref from its registry, draining the progress stream.
func (e *Engine) pullBase(ctx context.Context, ref, platform string) error {
	slog.Info("pulling image", "ref", ref, "platform", platform)

	rc, err := e.client.ImagePull(ctx, ref, image.PullOptions{Platform: platform})
	if err != nil {
		return wrap(err)
	}
	defer rc.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(rc, io.Discard, 0, false, nil); err != nil {
		return wrap(err)
	}
	return nil
}

// Loads an image archive and checks it provides ref.
func (e *Engine) loadBase(ctx context.Context, path, ref string) error {
	slog.Info("loading image", "path", path, "ref", ref)

	f, err := os.Open(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()

	resp, err := e.client.ImageLoad(ctx, f, client.ImageLoadWithQuiet(true))
	if err != nil {
		return wrap(err)
	}
	defer resp.Body.Close()

	if err := jsonmessage.DisplayJSONMessagesStream(resp.Body, io.Discard, 0, false, nil); err != nil {
		return wrap(err)
	}

	if _, err := e.client.ImageInspect(ctx, ref); err != nil {
		if errdefs.IsNotFound(err) {
			return fmt.Errorf("%w: %w: %s", ErrDocker, ErrMissingImage, ref)
		}
		return wrap(err)
	}
	return nil
}

// Returns the fully qualified form of ref ("python:3" becomes
// "docker.io/library/python:3").
func normalize(ref string) (string, error) {
	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return "", wrap(err)
	}
	return reference.TagNameOnly(named).String(), nil
}

// Returns the configuration of a build container for the image ref.
//
// The entrypoint is cleared and the container idles so that commands can be
// executed into it.
func containerConfig(ref string) *container.Config {
	return &container.Config{
		Image:      ref,
		Entrypoint: []string{},
		Cmd:        []string{"sleep", "infinity"},
		Labels:     map[string]string{buildLabel: "true"},
	}
}
