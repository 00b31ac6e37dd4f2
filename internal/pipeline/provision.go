package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/cruciblehq/provision/internal/target"
)

// Starts the build container from the pinned base image and installs the
// native packages in a single command that also drops the package index.
func provision(ctx context.Context, r *run) error {
	base := target.Base{Ref: r.recipe.Base.Ref}
	if r.recipe.Base.Archive != "" {
		base.Archive = filepath.Join(r.context, r.recipe.Base.Archive)
	}

	t, err := r.engine.Start(ctx, base, r.id, r.recipe.Platform)
	if err != nil {
		return err
	}
	r.target = t

	r.state.apply(Step{Env: r.recipe.Env})

	native := r.recipe.Native
	cmd := nativeInstall(native.Manager, native.Packages)
	if cmd == "" {
		slog.Info("no native packages to install")
		return nil
	}

	_, err = runStep(ctx, t, Step{Run: cmd, Env: nativeEnv(native.Manager)}, r.state)
	return err
}
