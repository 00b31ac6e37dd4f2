package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/provision/internal/target"
)

// Executes a single step with scoped modifier overrides.
//
// Step-level modifiers override the persistent state for this command only.
// A non-zero exit code is reported as [ErrCommandFailed] carrying the exit
// code and the command's standard error verbatim. The result is returned in
// both cases so callers can inspect the output.
func runStep(ctx context.Context, t target.Target, step Step, state *stepState) (*target.ExecResult, error) {
	resolved := state.resolve(step)

	slog.Debug("run", "command", step.Run, "shell", resolved.shell, "workdir", resolved.workdir)

	result, err := t.Exec(ctx, resolved.shell, step.Run, resolved.environ(), resolved.workdir)
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return result, fmt.Errorf("%w: %s: exit code %d: %s", ErrCommandFailed, step.Run, result.ExitCode, result.Stderr)
	}

	return result, nil
}
