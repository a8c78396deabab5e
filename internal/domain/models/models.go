package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jroneil/MI-Tool/pkg/constants"
	"github.com/jroneil/MI-Tool/pkg/fieldtypes"
)

// User is an account that can sign in
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Workspace is the tenant boundary
type Workspace struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links a user to a workspace with a role
type Membership struct {
	ID          int64                   `json:"id"`
	UserID      int64                   `json:"user_id"`
	WorkspaceID int64                   `json:"workspace_id"`
	Role        constants.WorkspaceRole `json:"role"`
	Workspace   *Workspace              `json:"workspace,omitempty"`
}

// Model is a user-defined record schema inside a workspace
type Model struct {
	ID          int64           `json:"id"`
	WorkspaceID int64           `json:"workspace_id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description *string         `json:"description"`
	Rules       ValidationRules `json:"rules"`
	Fields      []Field         `json:"fields"`
	CreatedBy   *int64          `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Field is one typed slot of a model
type Field struct {
	ID         int64                `json:"id"`
	ModelID    int64                `json:"model_id"`
	Name       string               `json:"name"`
	Slug       string               `json:"slug"`
	DataType   fieldtypes.FieldType `json:"data_type"`
	IsRequired bool                 `json:"is_required"`
	IsUnique   bool                 `json:"is_unique"`
	Position   int                  `json:"position"`
	Config     Document             `json:"config"`

	settings FieldConfig
}

// Decode interprets Config for DataType and keeps the result on the field
func (f *Field) Decode() {
	f.settings = DecodeFieldConfig(f.DataType, f.Config)
}

// Settings returns the decoded config, decoding on first use for fields built in code
func (f Field) Settings() FieldConfig {
	if f.settings != nil {
		return f.settings
	}
	return DecodeFieldConfig(f.DataType, f.Config)
}

// DecodeFields decodes the config of every field in place
func DecodeFields(fields []Field) {
	for i := range fields {
		fields[i].Decode()
	}
}

// ValidationRule is a model-level check; the rule fails when Condition evaluates to true
type ValidationRule struct {
	Name      string `json:"name"`
	Condition string `json:"condition"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
}

// ErrorField returns the key the rule's error is reported under
func (r ValidationRule) ErrorField() string {
	if r.Field != "" {
		return r.Field
	}
	return constants.RecordRuleField
}

// ValidationRules is stored as a JSON column
type ValidationRules []ValidationRule

// Scan implements sql.Scanner
func (r *ValidationRules) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*r = nil
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ValidationRules", src)
	}
	if len(b) == 0 {
		*r = nil
		return nil
	}
	return json.Unmarshal(b, (*[]ValidationRule)(r))
}

// Value implements driver.Valuer
func (r ValidationRules) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]ValidationRule(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Record is one stored document of a model
type Record struct {
	ID          int64     `json:"id"`
	ModelID     int64     `json:"model_id"`
	WorkspaceID int64     `json:"workspace_id"`
	Data        Document  `json:"data"`
	CreatedBy   *int64    `json:"created_by"`
	UpdatedBy   *int64    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecordListQuery selects a page of records of one model
type RecordListQuery struct {
	Skip        int
	Limit       int
	SortBy      string
	SortOrder   constants.SortOrder
	FilterKey   string
	FilterValue *string
}

// RecordPage is one page of a record listing
type RecordPage struct {
	Items   []Record `json:"items"`
	Total   int      `json:"total"`
	HasMore bool     `json:"has_more"`
}

// ModelUsage is the record count of one model, used by the usage report
type ModelUsage struct {
	ModelID     int64
	WorkspaceID int64
	Slug        string
	Records     int
}
