package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cruciblehq/provision/internal/target"
	"github.com/docker/docker/api/types/container"
	"github.com/opencontainers/go-digest"
)

// Filename of the image archive produced by Commit.
const exportFilename = "image.tar"

// Stops the container and commits its filesystem as a new image stored
// under ref.
//
// cfg is applied as Dockerfile-style changes, so the entrypoint inherited
// from the base image is cleared and Cmd becomes the complete default
// process. When output is non-empty the image is also saved to
// output/image.tar.
func (c *Container) Commit(ctx context.Context, ref string, cfg target.ImageConfig, output string) (*target.Image, error) {
	if err := c.Stop(ctx); err != nil {
		return nil, err
	}

	name, err := normalize(ref)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.ContainerCommit(ctx, c.id, container.CommitOptions{
		Reference: name,
		Changes:   changes(cfg),
	})
	if err != nil {
		return nil, wrap(err)
	}

	id, err := digest.Parse(resp.ID)
	if err != nil {
		return nil, wrap(err)
	}

	img := &target.Image{Ref: ref, Digest: id}

	if output != "" {
		img.Path = filepath.Join(output, exportFilename)
		if err := c.save(ctx, name, img.Path); err != nil {
			return nil, err
		}
		slog.Info("image exported", "path", img.Path)
	}

	slog.Debug("image committed", "ref", name, "id", id)
	return img, nil
}

// Writes the image archive of ref to path.
func (c *Container) save(ctx context.Context, ref, path string) error {
	rc, err := c.client.ImageSave(ctx, []string{ref})
	if err != nil {
		return wrap(err)
	}
	defer rc.Close()

	f, err := os.Create(path)
	if err != nil {
		return wrap(err)
	}
	defer f.Close()

	if _, err := io.Copy(f, rc); err != nil {
		return wrap(err)
	}
	return f.Close()
}

// Translates an image configuration into commit changes.
//
// Exec-form JSON is used for CMD so no shell wraps the command. Env entries
// and labels are emitted in sorted order so equal configurations always yield
// the same change list.
func changes(cfg target.ImageConfig) []string {
	out := []string{"ENTRYPOINT []", "CMD " + jsonArray(cfg.Cmd)}

	for _, p := range cfg.ExposedPorts {
		out = append(out, "EXPOSE "+p)
	}

	if cfg.WorkingDir != "" {
		out = append(out, "WORKDIR "+cfg.WorkingDir)
	}

	env := slices.Clone(cfg.Env)
	slices.Sort(env)
	for _, e := range env {
		out = append(out, "ENV "+e)
	}

	for _, k := range slices.Sorted(maps.Keys(cfg.Labels)) {
		out = append(out, fmt.Sprintf("LABEL %s=%s", strconv.Quote(k), strconv.Quote(cfg.Labels[k])))
	}

	return out
}

// Formats args as a JSON array of strings.
func jsonArray(args []string) string {
	if args == nil {
		args = []string{}
	}
	data, _ := json.Marshal(args)
	return string(data)
}
