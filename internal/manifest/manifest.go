package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (

	// Distribution name followed by optional extras.
	namePattern = regexp.MustCompile(`^([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)\s*(?:\[([^\]]*)\])?\s*`)

	// Runs of separators collapsed by name normalization.
	separators = regexp.MustCompile(`[-_.]+`)

	// Specifier operators, longest first so that "===" wins over "==".
	operators = []string{"===", "~=", "==", "!=", ">=", "<=", ">", "<"}

	// Per-requirement options ("--hash=...", "--config-settings ...").
	optionPattern = regexp.MustCompile(`\s--`)

	// Environment marker of a URL or path line, which needs whitespace
	// before the ";".
	markerPattern = regexp.MustCompile(`\s;`)

	// Named direct reference without spaces ("name@url").
	namedPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+(?:\[[^\]]*\])?@`)

	// Project name given in a direct reference's fragment.
	eggPattern = regexp.MustCompile(`[#&]egg=([A-Za-z0-9._-]+)`)

	// Archive suffixes that make a bare file name a direct reference.
	archiveSuffixes = []string{".whl", ".tar.gz", ".tar.bz2", ".tgz", ".zip"}
)

// A parsed dependency manifest.
type Manifest struct {
	Requirements []Requirement // Requirements in declaration order.
	Options      []string      // Option lines ("-r", "--index-url", ...) kept verbatim.
}

// A single declared dependency.
type Requirement struct {
	Name       string      // Distribution name as written, empty for unnamed references.
	Extras     []string    // Requested extras.
	Specifiers []Specifier // Version specifiers, all of which must hold.
	URL        string      // Direct reference (URL, VCS URL or path), exclusive with specifiers.
	Marker     string      // Environment marker, without the leading ";".
	Options    string      // Trailing per-requirement options, kept verbatim.
	Line       int         // 1-based line the requirement starts on.
}

// A version specifier such as ">=1.0".
type Specifier struct {
	Op      string // Comparison operator.
	Version string // Version operand as written.
}

// Reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f)
}

// Parses a manifest from r.
//
// All malformed lines are reported together, each prefixed with its line
// number, so that one run surfaces every problem.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{}
	var errs []error

	err := scanLines(r, func(line string, num int) {
		if strings.HasPrefix(line, "-") {
			m.Options = append(m.Options, line)
			return
		}

		req, err := parseRequirement(line)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", num, err))
			return
		}
		req.Line = num
		m.Requirements = append(m.Requirements, req)
	})
	if err != nil {
		return nil, err
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// Calls fn for every logical line with comments stripped and continuations
// joined. Blank lines are skipped. The line number is that of the first
// physical line.
func scanLines(r io.Reader, fn func(line string, num int)) error {
	sc := bufio.NewScanner(r)

	var (
		buf   strings.Builder
		start int
		num   int
	)

	for sc.Scan() {
		num++
		text := stripComment(sc.Text())

		if buf.Len() == 0 {
			start = num
		}

		if cont, ok := strings.CutSuffix(strings.TrimRight(text, " \t"), `\`); ok {
			buf.WriteString(cont)
			buf.WriteByte(' ')
			continue
		}

		buf.WriteString(text)
		if line := strings.TrimSpace(buf.String()); line != "" {
			fn(line, start)
		}
		buf.Reset()
	}

	if line := strings.TrimSpace(buf.String()); line != "" {
		fn(line, start)
	}

	return sc.Err()
}

// Removes a "#" comment. A "#" only starts a comment at the beginning of the
// line or after whitespace, so URL fragments survive.
func stripComment(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '#' && (i == 0 || s[i-1] == ' ' || s[i-1] == '\t') {
			return s[:i]
		}
	}
	return s
}

// Parses one requirement line.
func parseRequirement(line string) (Requirement, error) {
	var req Requirement

	if loc := optionPattern.FindStringIndex(line); loc != nil {
		req.Options = strings.TrimSpace(line[loc[0]:])
		line = strings.TrimSpace(line[:loc[0]])
	}

	if isReference(line) {
		return parseReference(req, line), nil
	}

	body, marker, _ := strings.Cut(line, ";")
	req.Marker = strings.TrimSpace(marker)

	m := namePattern.FindStringSubmatchIndex(body)
	if m == nil {
		return req, fmt.Errorf("%w: %q: missing distribution name", ErrSyntax, line)
	}
	req.Name = body[m[2]:m[3]]
	if m[4] >= 0 {
		for _, e := range strings.Split(body[m[4]:m[5]], ",") {
			if e = strings.TrimSpace(e); e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
	}

	rest := strings.TrimSpace(body[m[1]:])
	if rest == "" {
		return req, nil
	}

	if url, ok := strings.CutPrefix(rest, "@"); ok {
		req.URL = strings.TrimSpace(url)
		if req.URL == "" {
			return req, fmt.Errorf("%w: %q: empty direct reference", ErrSyntax, line)
		}
		return req, nil
	}

	// Parenthesized specifiers are allowed: "name (>=1.0)".
	if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
		rest = rest[1 : len(rest)-1]
	}

	for _, part := range strings.Split(rest, ",") {
		spec, err := parseSpecifier(strings.TrimSpace(part))
		if err != nil {
			return req, fmt.Errorf("%w: %q: %w", ErrSyntax, line, err)
		}
		req.Specifiers = append(req.Specifiers, spec)
	}

	return req, nil
}

// Whether the line is an unnamed direct reference: a URL, a VCS URL, a local
// path or an archive file name.
func isReference(line string) bool {
	first, _, _ := strings.Cut(line, " ")
	if namedPattern.MatchString(first) {
		return false
	}
	if strings.HasPrefix(first, ".") || strings.ContainsAny(first, `/\`) {
		return true
	}
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(first, suffix) {
			return true
		}
	}
	return false
}

// Builds a direct-reference requirement. The name comes from an "#egg="
// fragment when there is one.
func parseReference(req Requirement, line string) Requirement {
	if loc := markerPattern.FindStringIndex(line); loc != nil {
		req.Marker = strings.TrimSpace(line[loc[1]:])
		line = line[:loc[0]]
	}
	req.URL = strings.TrimSpace(line)
	if m := eggPattern.FindStringSubmatch(req.URL); m != nil {
		req.Name = m[1]
	}
	return req
}

// Parses a single specifier such as "~=1.4.2".
func parseSpecifier(s string) (Specifier, error) {
	for _, op := range operators {
		if v, ok := strings.CutPrefix(s, op); ok {
			v = strings.TrimSpace(v)
			if v == "" || strings.ContainsAny(v, " \t") {
				return Specifier{}, fmt.Errorf("invalid version in %q", s)
			}
			return Specifier{Op: op, Version: v}, nil
		}
	}
	return Specifier{}, fmt.Errorf("unknown operator in %q", s)
}

// Returns the normalized form of a distribution name: lowercase, with runs
// of "-", "_" and "." collapsed to a single "-".
func Normalize(name string) string {
	return separators.ReplaceAllString(strings.ToLower(name), "-")
}

// Formats the requirement as a manifest line.
func (r Requirement) String() string {
	var b strings.Builder
	if r.Name == "" {
		b.WriteString(r.URL)
	} else {
		b.WriteString(r.Name)
		if len(r.Extras) > 0 {
			b.WriteString("[" + strings.Join(r.Extras, ",") + "]")
		}
		if r.URL != "" {
			b.WriteString(" @ " + r.URL)
		}
	}
	for i, s := range r.Specifiers {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s.Op + s.Version)
	}
	if r.Marker != "" {
		if r.URL != "" {
			b.WriteByte(' ')
		}
		b.WriteString("; " + r.Marker)
	}
	if r.Options != "" {
		b.WriteString(" " + r.Options)
	}
	return b.String()
}

// Returns the distinct normalized names in declaration order. Unnamed direct
// references are left out.
func (m *Manifest) Names() []string {
	seen := make(map[string]bool, len(m.Requirements))
	var names []string
	for _, r := range m.Requirements {
		if r.Name == "" {
			continue
		}
		n := Normalize(r.Name)
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}
