package recipe

import "errors"

var (
	ErrInvalidRecipe = errors.New("invalid recipe")
	ErrFloatingBase  = errors.New("base image is not pinned")
)
