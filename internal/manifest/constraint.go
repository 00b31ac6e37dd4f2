package manifest

import (
	"errors"
	"fmt"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// Returns the specifier set that all of the requirement's specifiers form.
// Returns nil when the requirement places no bound on the version (bare
// names and direct references).
//
// Arbitrary equality ("===") against a string that is not a version is
// left to the installer.
func (r Requirement) Constraint() (*pep440.Specifiers, error) {
	parts := make([]string, 0, len(r.Specifiers))
	for _, s := range r.Specifiers {
		if s.Op == "===" {
			if _, err := pep440.Parse(s.Version); err != nil {
				continue
			}
		}
		parts = append(parts, s.Op+s.Version)
	}
	if len(parts) == 0 {
		return nil, nil
	}

	c, err := pep440.NewSpecifiers(strings.Join(parts, ", "))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConstraint, r.Name, err)
	}
	return &c, nil
}

// Returns the exact version the requirement pins, if any.
//
// A requirement is pinned by "==" without a wildcard, or by "===" with a
// valid version.
func (r Requirement) Pinned() (pep440.Version, bool) {
	for _, s := range r.Specifiers {
		if (s.Op == "==" && !strings.HasSuffix(s.Version, "*")) || s.Op == "===" {
			v, err := pep440.Parse(s.Version)
			if err != nil {
				return pep440.Version{}, false
			}
			return v, true
		}
	}
	return pep440.Version{}, false
}

// Checks that every requirement's specifiers form a valid specifier set and
// that requirements sharing a distribution name and marker agree.
//
// Two requirements agree when at least one of their pinned versions satisfies
// both. Requirements without a pin are not cross-checked against each other.
// All problems are returned together.
func (m *Manifest) Validate() error {
	var (
		errs   []error
		order  []string
		groups = make(map[string][]pinned)
	)

	for _, r := range m.Requirements {
		c, err := r.Constraint()
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", r.Line, err))
			continue
		}
		if r.Name == "" {
			continue
		}

		p := pinned{req: r, constraint: c}
		p.pin, p.ok = r.Pinned()

		key := Normalize(r.Name) + ";" + r.Marker
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	for _, key := range order {
		g := groups[key]
		for i := range g {
			for j := i; j < len(g); j++ {
				if !agree(g[i], g[j]) {
					errs = append(errs, conflict(g[i].req, g[j].req))
				}
			}
		}
	}

	return errors.Join(errs...)
}

// A requirement with its specifier set and pin.
type pinned struct {
	req        Requirement
	constraint *pep440.Specifiers
	pin        pep440.Version
	ok         bool
}

// Whether v satisfies the requirement's specifier set.
func (p pinned) admits(v pep440.Version) bool {
	return p.constraint == nil || p.constraint.Check(v)
}

// Whether some pin of a or b satisfies both. Requirements without a pin
// always agree.
func agree(a, b pinned) bool {
	if !a.ok && !b.ok {
		return true
	}
	if a.ok && a.admits(a.pin) && b.admits(a.pin) {
		return true
	}
	return b.ok && a.admits(b.pin) && b.admits(b.pin)
}

// Describes a conflict between two requirements.
func conflict(a, b Requirement) error {
	if a.Line == b.Line {
		return fmt.Errorf("%w: line %d: %s is unsatisfiable", ErrConflict, a.Line, a)
	}
	return fmt.Errorf("%w: line %d: %s excludes line %d: %s", ErrConflict, b.Line, b, a.Line, a)
}
