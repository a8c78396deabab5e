package constants

// WorkspaceRole is a member's role inside a workspace
type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleAdmin  WorkspaceRole = "admin"
	RoleMember WorkspaceRole = "member"
)

// DefaultRole is given to members added without an explicit role
const DefaultRole = RoleMember

// WorkspaceRoles lists every role, highest first
var WorkspaceRoles = []WorkspaceRole{RoleOwner, RoleAdmin, RoleMember}

// IsValidRole reports whether r is one of the known workspace roles
func IsValidRole(r string) bool {
	switch WorkspaceRole(r) {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// SortOrder for record listing
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Record listing bounds
const (
	DefaultRecordPageSize = 50
	MaxRecordPageSize     = 100
)
