package metadata

import "github.com/metagate/metagate/domain/object"

// FieldType is a descriptor field type understood by the target platform.
type FieldType string

// The recognized descriptor types. Every request type resolves to exactly
// one of these.
const (
	TypeText     FieldType = "Text"
	TypeLongText FieldType = "LongTextArea"
	TypeDate     FieldType = "Date"
	TypeDateTime FieldType = "DateTime"
	TypeNumber   FieldType = "Number"
	TypeCheckbox FieldType = "Checkbox"
	TypePicklist FieldType = "Picklist"
)

// Attribute defaults fixed by the target platform's descriptor schema. These
// values must not drift: the platform rejects documents that omit them or
// exceed its bounds.
const (
	textLength           = 255
	longTextLength       = 32768
	longTextVisibleLines = 3
	numberPrecision      = 18
	numberScale          = 0
)

// requestTypes maps the request vocabulary to descriptor types. Lookups are
// case-sensitive; anything absent resolves to TypeText.
var requestTypes = map[string]FieldType{
	"Text":     TypeText,
	"TextArea": TypeLongText,
	"Date":     TypeDate,
	"DateTime": TypeDateTime,
	"Number":   TypeNumber,
	"Checkbox": TypeCheckbox,
	"Picklist": TypePicklist,
}

// ResolveType maps a request field type to the descriptor type generated for
// it. Unrecognized values resolve to TypeText.
// This is a PURE function.
func ResolveType(requestType string) FieldType {
	if t, ok := requestTypes[requestType]; ok {
		return t
	}
	return TypeText
}

// buildField fills the descriptor fragment for one field. Each resolved type
// carries a fixed attribute template; only the name and label vary with the
// request.
func buildField(f object.Field) fieldDescriptor {
	d := fieldDescriptor{
		FullName: APIName(f.Name),
		Label:    f.Label,
	}

	t := ResolveType(f.Type)
	d.Type = string(t)

	switch t {
	case TypeText:
		d.Length = textLength
		d.Required = boolPtr(false)
	case TypeLongText:
		d.Length = longTextLength
		d.VisibleLines = longTextVisibleLines
		d.Required = boolPtr(false)
	case TypeDate, TypeDateTime:
		d.Required = boolPtr(false)
	case TypeNumber:
		d.Precision = numberPrecision
		d.Scale = intPtr(numberScale)
		d.Required = boolPtr(false)
	case TypeCheckbox:
		// Checkboxes carry a default instead of a required flag; the platform
		// rejects required on this type.
		d.DefaultValue = boolPtr(false)
	case TypePicklist:
		d.ValueSet = &valueSet{
			Restricted: true,
			Definition: valueSetDefinition{
				Sorted: false,
				Values: []picklistValue{
					{FullName: "Option 1", Default: false, Label: "Option 1"},
					{FullName: "Option 2", Default: false, Label: "Option 2"},
				},
			},
		}
	}

	return d
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }
