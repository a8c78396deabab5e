package fieldtypes

import "strings"

// FieldType is the declared data type of a model field
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeBoolean  FieldType = "boolean"
	TypeDate     FieldType = "date"
	TypeDatetime FieldType = "datetime"
	TypeEnum     FieldType = "enum"
	TypeRelation FieldType = "relation"
)

// AllTypes lists the supported field types in catalogue order
var AllTypes = []FieldType{
	TypeString, TypeText, TypeNumber, TypeBoolean,
	TypeDate, TypeDatetime, TypeEnum, TypeRelation,
}

// Parse normalizes a declared type name. The second result is false for unknown names;
// the normalized name is still returned so callers can store it verbatim.
func Parse(name string) (FieldType, bool) {
	ft := FieldType(strings.ToLower(strings.TrimSpace(name)))
	return ft, ft.IsValid()
}

// IsValid reports whether t is one of the supported field types
func (t FieldType) IsValid() bool {
	switch t {
	case TypeString, TypeText, TypeNumber, TypeBoolean, TypeDate, TypeDatetime, TypeEnum, TypeRelation:
		return true
	}
	return false
}

// IsTextual reports whether values of t are plain strings
func (t FieldType) IsTextual() bool {
	return t == TypeString || t == TypeText
}

func (t FieldType) String() string {
	return string(t)
}
