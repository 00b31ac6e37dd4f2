package pipeline

import "context"

// A pipeline stage.
type stage struct {
	name  string                                  // Stage name reported in errors and results.
	class error                                   // Sentinel for failures the stage does not classify itself.
	exec  func(ctx context.Context, r *run) error // Stage body.
}

// Stages in execution order.
var stages = []stage{
	{"provision", ErrProvision, provision},
	{"materialize", ErrMaterialize, materialize},
	{"package", ErrBuild, buildPackage},
	{"purge", ErrPurge, purge},
	{"configure", ErrConfigure, configure},
}

// Returns the names of the stages in execution order.
func StageNames() []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.name
	}
	return names
}
