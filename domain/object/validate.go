package object

import "fmt"

// Validate checks a definition against the minimum shape required to generate
// and deploy metadata. Checks run in a fixed order and the first failure
// short-circuits, so nothing partial flows downstream.
//
// Validation is deliberately shallow: it does not check field name
// uniqueness, reserved words, or cross-field consistency. The target platform
// applies its own rules at deploy time.
// This is a PURE function.
func Validate(d Definition) error {
	if d.Name == "" {
		return &ValidationError{Message: "objectName is required"}
	}
	if !ValidName(d.Name) {
		return &ValidationError{Message: fmt.Sprintf("objectName %q must start with a letter and contain only letters, digits, and underscores", d.Name)}
	}
	if len(d.Fields) == 0 {
		return &ValidationError{Message: "fields must be a non-empty array"}
	}
	if d.OrgAlias == "" {
		return &ValidationError{Message: "orgAlias is required"}
	}
	for i, f := range d.Fields {
		if f.Name == "" || f.Label == "" || f.Type == "" {
			return &ValidationError{Message: fmt.Sprintf("fields[%d] must have name, label, and type", i)}
		}
	}
	return nil
}

// ValidName reports whether a name is identifier-safe: a letter followed by
// letters, digits, or underscores. Names parameterize descriptor file paths,
// so anything else is rejected before it reaches the filesystem.
// This is a PURE function.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == '_', r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
