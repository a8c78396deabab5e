package constants

// Column names shared by several tables.
// These are the snake_case names used in storage, SQL and JSON payloads.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
	FieldCreatedBy   = "created_by"
	FieldUpdatedBy   = "updated_by"

	// User
	FieldEmail        = "email"
	FieldPasswordHash = "password_hash"

	// Membership
	FieldUserID      = "user_id"
	FieldWorkspaceID = "workspace_id"
	FieldRole        = "role"

	// Model / Field
	FieldModelID    = "model_id"
	FieldDataType   = "data_type"
	FieldIsRequired = "is_required"
	FieldIsUnique   = "is_unique"
	FieldPosition   = "position"
	FieldConfig     = "config"
	FieldRules      = "rules"

	// Record
	FieldData = "data"
)

// Field config keys, interpreted per data type.
const (
	ConfigValues      = "values"
	ConfigOptions     = "options" // legacy alias of ConfigValues
	ConfigModelID     = "model_id"
	ConfigWorkspaceID = "workspace_id"
)

// RecordRuleField is the error key used by model rules that do not name a field.
const RecordRuleField = "_record"
