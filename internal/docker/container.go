package docker

import (
	"context"
	"log/slog"

	"github.com/containerd/errdefs"
	"github.com/cruciblehq/provision/internal/target"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"
)

// A running build container managed by the Docker daemon.
type Container struct {
	client *client.Client // Docker Engine API client.
	id     string         // Container name.
}

var _ target.Target = (*Container)(nil)

// Stops the container. Stopping a container that is not running is not an
// error.
func (c *Container) Stop(ctx context.Context) error {
	timeout := 0
	if err := c.client.ContainerStop(ctx, c.id, container.StopOptions{Timeout: &timeout}); err != nil && !errdefs.IsNotFound(err) {
		return wrap(err)
	}
	return nil
}

// Removes the container and its anonymous volumes.
func (c *Container) Destroy(ctx context.Context) {
	err := c.client.ContainerRemove(ctx, c.id, container.RemoveOptions{Force: true, RemoveVolumes: true})
	if err != nil && !errdefs.IsNotFound(err) {
		slog.Warn("failed to remove container", "id", c.id, "error", err)
	}
}

// Removes an existing container with this ID, if one exists.
func (c *Container) remove(ctx context.Context) {
	c.client.ContainerRemove(ctx, c.id, container.RemoveOptions{Force: true, RemoveVolumes: true})
}
