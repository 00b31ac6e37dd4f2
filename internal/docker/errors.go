package docker

import (
	"errors"
	"fmt"
)

var (
	ErrDocker       = errors.New("docker engine error")
	ErrMissingImage = errors.New("image not provided by archive")
)

// Wraps err as an [ErrDocker] error.
func wrap(err error) error {
	return fmt.Errorf("%w: %w", ErrDocker, err)
}

// Formats a message as an [ErrDocker] error.
func wrapf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDocker, fmt.Sprintf(format, args...))
}
