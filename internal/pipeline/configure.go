package pipeline

import (
	"context"
	"fmt"

	"github.com/cruciblehq/provision/internal/target"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Checks the runtime command resolves in the target, then commits the target
// with the runtime configuration and exports the image.
func configure(ctx context.Context, r *run) error {
	rt := r.recipe.Runtime

	if _, err := runStep(ctx, r.target, Step{Run: resolvable(rt.Command)}, r.state); err != nil {
		return fmt.Errorf("%s does not resolve through PATH: %w", rt.Command, err)
	}

	if err := r.prepareOutput(); err != nil {
		return err
	}

	img, err := r.target.Commit(ctx, r.ref, r.imageConfig(), r.output)
	if err != nil {
		return err
	}
	r.image = img

	return nil
}

// Returns the image configuration declared by the recipe. The persistent
// step state supplies the recipe environment and the working directory,
// which is the filesystem root once the source tree is purged.
func (r *run) imageConfig() target.ImageConfig {
	return target.ImageConfig{
		Cmd:          []string{r.recipe.Runtime.Command},
		ExposedPorts: []string{r.recipe.ExposedPort()},
		WorkingDir:   r.state.workdir,
		Env:          r.state.environ(),
		Labels: map[string]string{
			ocispec.AnnotationTitle:         r.recipe.Name,
			ocispec.AnnotationBaseImageName: r.recipe.Base.Ref,
		},
	}
}
