// Parses and validates dependency manifests.
//
// A manifest is a requirements file: one requirement per line, written as a
// distribution name, optional extras, optional comma-separated version
// specifiers, and an optional environment marker after ";". A line may also
// be a direct reference (a URL, a VCS URL, a local path or an archive file),
// which is kept without version checks. Per-requirement options such as
// "--hash" follow the requirement and are kept verbatim. Comments start with
// "#", a trailing backslash continues a line, and lines starting with "-"
// (index options, nested files, editable installs) are kept verbatim without
// validation.
//
// Validation happens before anything is installed. Specifiers are checked
// with PEP 440 ordering, and requirements that name the same distribution
// under the same marker must agree: two pins that exclude each other, or a
// pin another specifier excludes, is a conflict.
//
// Example usage:
//
//	m, err := manifest.Load("requirements.txt")
//	if err != nil {
//	    return err
//	}
//	if err := m.Validate(); err != nil {
//	    return err
//	}
package manifest
