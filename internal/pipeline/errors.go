package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrProvision     = errors.New("base environment provisioning failed")
	ErrMaterialize   = errors.New("source materialization failed")
	ErrManifest      = errors.New("dependency manifest unresolvable")
	ErrBuild         = errors.New("package build failed")
	ErrArtifact      = errors.New("build artifact ambiguous")
	ErrPurge         = errors.New("source purge failed")
	ErrConfigure     = errors.New("runtime configuration failed")
	ErrCommandFailed = errors.New("command failed")
	ErrFileSystem    = errors.New("file system operation failed")
)

// Sentinels that classify a stage failure.
var classes = []error{
	ErrProvision,
	ErrMaterialize,
	ErrManifest,
	ErrBuild,
	ErrArtifact,
	ErrPurge,
	ErrConfigure,
}

// Reports the stage at which a run stopped.
//
// Err is classified by one of the stage sentinels ([ErrProvision],
// [ErrManifest], ...) and carries the failing tool's diagnostics verbatim.
type StageError struct {
	Stage string // Stage name, e.g. "package".
	Index int    // 1-based position of the stage in the pipeline.
	Err   error  // Underlying, classified error.
}

// Formats the error with the stage position and name.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %v", e.Index, e.Stage, e.Err)
}

// Returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// Wraps err with class unless it is already classified.
func classify(class, err error) error {
	for _, c := range classes {
		if errors.Is(err, c) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", class, err)
}
