package constants

// Table names used by the repositories and the bootstrap DDL.
const (
	TableUser            = "users"
	TableWorkspace       = "workspaces"
	TableWorkspaceMember = "workspace_members"
	TableModel           = "models"
	TableModelField      = "model_fields"
	TableRecord          = "records"
)

// AllTables lists tables in creation order (parents before children).
var AllTables = []string{
	TableUser,
	TableWorkspace,
	TableWorkspaceMember,
	TableModel,
	TableModelField,
	TableRecord,
}
