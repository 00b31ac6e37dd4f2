package manifest

import "errors"

var (
	ErrSyntax     = errors.New("malformed requirement")
	ErrConstraint = errors.New("unresolvable version constraint")
	ErrConflict   = errors.New("conflicting requirements")
)
