package pipeline

import (
	"context"
	"fmt"
	"path"
)

// Copies the build context into the source workdir of the target.
//
// The workdir must not exist yet. Once the copy completes it becomes the
// working directory of every later command.
func materialize(ctx context.Context, r *run) error {
	workdir := r.recipe.Source.Workdir

	if _, err := runStep(ctx, r.target, Step{Run: absent(workdir)}, r.state); err != nil {
		return fmt.Errorf("%s already exists in the target: %w", workdir, err)
	}

	if err := r.target.MkdirAll(ctx, path.Dir(workdir)); err != nil {
		return err
	}

	if err := copyTree(ctx, r.target, r.context, workdir); err != nil {
		return err
	}

	r.state.apply(Step{Workdir: workdir})
	return nil
}
