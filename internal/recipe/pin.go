package recipe

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
	"github.com/distribution/reference"
)

// Leading "major.minor.patch" of an image tag, optionally prefixed with "v".
var tagVersion = regexp.MustCompile(`^v?(\d+\.\d+\.\d+)`)

// Checks that ref identifies exactly one image.
//
// A reference is pinned when it carries a digest, or when its tag starts
// with a complete "major.minor.patch" version ("3.12.4", "3.12.4-slim").
// Missing tags, "latest", and partial versions ("3.12", "3-slim") float
// between releases and are rejected with [ErrFloatingBase].
func CheckPinned(ref string) error {
	if ref == "" {
		return fmt.Errorf("%w: base image reference is required", ErrInvalidRecipe)
	}

	named, err := reference.ParseNormalizedNamed(ref)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, err)
	}

	if _, ok := named.(reference.Digested); ok {
		return nil
	}

	tagged, ok := named.(reference.Tagged)
	if !ok {
		return fmt.Errorf("%w: %s has no tag", ErrFloatingBase, ref)
	}

	if _, err := TagVersion(tagged.Tag()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFloatingBase, ref, err)
	}

	return nil
}

// Extracts the exact version a tag is pinned to.
func TagVersion(tag string) (*semver.Version, error) {
	m := tagVersion.FindStringSubmatch(tag)
	if m == nil {
		return nil, fmt.Errorf("tag %q does not start with major.minor.patch", tag)
	}
	return semver.StrictNewVersion(m[1])
}
