package pipeline

import (
	"context"
	"fmt"
)

// Removes the source tree and the extra purge paths from the target, then
// checks the source tree is gone.
//
// Commands run from the filesystem root from here on, since the runtime
// would otherwise recreate the removed workdir as the process directory.
func purge(ctx context.Context, r *run) error {
	workdir := r.recipe.Source.Workdir
	r.state.apply(Step{Workdir: "/"})

	paths := append([]string{workdir}, r.recipe.Purge.Extra...)
	if _, err := runStep(ctx, r.target, Step{Run: removePaths(paths)}, r.state); err != nil {
		return err
	}

	if _, err := runStep(ctx, r.target, Step{Run: absent(workdir)}, r.state); err != nil {
		return fmt.Errorf("%s still present after purge: %w", workdir, err)
	}

	return nil
}
