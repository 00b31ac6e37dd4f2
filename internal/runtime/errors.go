package runtime

import (
	"errors"
	"fmt"
)

var (
	ErrRuntime        = errors.New("runtime error")
	ErrEmptyIndex     = errors.New("empty image index")
	ErrEmptyArchive   = errors.New("archive contains no image")
	ErrMultipleImages = errors.New("archive contains more than one image")
)

// Wraps err with [ErrRuntime].
func wrap(err error) error {
	return fmt.Errorf("%w: %w", ErrRuntime, err)
}

// Formats an error wrapping [ErrRuntime].
func wrapf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRuntime, fmt.Sprintf(format, args...))
}
