// Package object provides custom object definition value types and pure
// validation functions. This package has NO dependencies on I/O or external
// packages.
package object

// Definition describes a custom object to be created in a target org
// (immutable value type, built fresh per request).
type Definition struct {
	Name     string  `json:"objectName"`
	Fields   []Field `json:"fields"`
	OrgAlias string  `json:"orgAlias"`
}

// Field describes a single custom field on the object.
type Field struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// ValidationError reports the first check an incoming definition failed.
// The message is safe to return to the caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
