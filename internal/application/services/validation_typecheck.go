package services

import (
	"fmt"
	"time"

	"github.com/jroneil/MI-Tool/internal/domain/models"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
	"github.com/jroneil/MI-Tool/pkg/isotime"
)

// Field error messages. Clients match on these strings.
const (
	MsgFieldRequired     = "Field is required"
	MsgFieldNull         = "Field cannot be null"
	MsgMustBeString      = "Must be a string"
	MsgMustBeNumber      = "Must be a number"
	MsgMustBeBoolean     = "Must be a boolean"
	MsgMustBeDatetime    = "Must be a datetime string or object"
	MsgValueNotPermitted = "Value not permitted"
	MsgMustReferenceID   = "Must reference related record id"
	MsgUnsupportedType   = "Unsupported field type"
	MsgInvalidValue      = "Invalid value"
	MsgRelatedNotFound   = "Related record not found"
	MsgRelatedWorkspace  = "Related record belongs to a different workspace"
	MsgRelatedModel      = "Related record belongs to a different model"
	MsgValueMustBeUnique = "Value must be unique"
)

// ParseISO parses an ISO-8601 date or timestamp
func ParseISO(s string) (time.Time, error) {
	return isotime.Parse(s)
}

// coerceDate accepts a date or datetime string, or a native time, and truncates to the day
func coerceDate(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		y, m, d := val.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case string:
		t, err := ParseISO(val)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %T", v)
}

// CheckFieldValue checks one present value against its field's declared type.
// It returns "" when the value conforms. It never panics: any fault becomes "Invalid value".
func CheckFieldValue(field models.Field, value interface{}) (msg string) {
	if value == nil {
		return MsgFieldNull
	}

	defer func() {
		if r := recover(); r != nil {
			msg = MsgInvalidValue
		}
	}()

	kind := models.KindOf(value)

	switch field.DataType {
	case fieldtypes.TypeString, fieldtypes.TypeText:
		if kind != models.KindString {
			return MsgMustBeString
		}
	case fieldtypes.TypeNumber:
		if kind != models.KindNumber {
			return MsgMustBeNumber
		}
	case fieldtypes.TypeBoolean:
		if kind != models.KindBool {
			return MsgMustBeBoolean
		}
	case fieldtypes.TypeDate:
		if _, err := coerceDate(value); err != nil {
			return MsgInvalidValue
		}
	case fieldtypes.TypeDatetime:
		switch v := value.(type) {
		case string:
			if _, err := ParseISO(v); err != nil {
				return MsgInvalidValue
			}
		case time.Time:
		default:
			return MsgMustBeDatetime
		}
	case fieldtypes.TypeEnum:
		cfg, _ := field.Settings().(models.EnumConfig)
		if !cfg.Permits(value) {
			return MsgValueNotPermitted
		}
	case fieldtypes.TypeRelation:
		if _, ok := models.IntegerID(value); !ok {
			return MsgMustReferenceID
		}
	default:
		return MsgUnsupportedType
	}
	return ""
}
