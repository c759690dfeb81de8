// Package permission holds the static permission catalog and the default roles
// seeded into the credential store on start.
package permission

const (
	UserRead   = "user:read"
	UserCreate = "user:create"
	UserUpdate = "user:update"
	UserDelete = "user:delete"
	UserList   = "user:list"

	RoleRead   = "role:read"
	RoleManage = "role:manage"
	RoleList   = "role:list"
	RoleAssign = "role:assign"

	PermissionRead   = "permission:read"
	PermissionManage = "permission:manage"
	PermissionList   = "permission:list"
	PermissionAssign = "permission:assign"

	SystemAdmin       = "system:admin"
	SystemSettings    = "system:settings"
	SystemLogs        = "system:logs"
	SystemMaintenance = "system:maintenance"

	AuditRead   = "audit:read"
	AuditExport = "audit:export"

	HealthRead = "health:read"

	AuthRefresh = "auth:refresh"
	AuthLogout  = "auth:logout"

	ProfileRead   = "profile:read"
	ProfileUpdate = "profile:update"
)

type Entry struct {
	Name        string
	Description string
}

// Catalog is the canonical list of system permissions, grouped by resource.
var Catalog = []Entry{
	{UserRead, "View user details"},
	{UserCreate, "Create new users"},
	{UserUpdate, "Update existing users"},
	{UserDelete, "Delete users"},
	{UserList, "List all users"},

	{RoleRead, "View role details"},
	{RoleManage, "Manage roles"},
	{RoleList, "List all roles"},
	{RoleAssign, "Assign roles to users"},

	{PermissionRead, "View permission details"},
	{PermissionManage, "Manage permissions"},
	{PermissionList, "List all permissions"},
	{PermissionAssign, "Assign permissions to roles or users"},

	{SystemAdmin, "Full system administration access"},
	{SystemSettings, "Manage system settings"},
	{SystemLogs, "View system logs"},
	{SystemMaintenance, "Perform system maintenance tasks"},

	{AuditRead, "View audit logs"},
	{AuditExport, "Export audit data"},

	{HealthRead, "View system health status"},

	{AuthRefresh, "Refresh authentication tokens"},
	{AuthLogout, "Log out from system"},

	{ProfileRead, "View own profile"},
	{ProfileUpdate, "Update own profile"},
}

type RoleSeed struct {
	Name        string
	Description string
	Permissions []string
}

const DefaultRole = "user"

var DefaultRoles = []RoleSeed{
	{
		Name:        DefaultRole,
		Description: "Standard user with basic permissions",
		Permissions: []string{ProfileRead, ProfileUpdate, AuthRefresh, UserRead},
	},
	{
		Name:        "moderator",
		Description: "Moderator with user management permissions",
		Permissions: []string{
			UserRead, UserList, UserUpdate,
			RoleRead, RoleList,
			PermissionRead, PermissionList,
			HealthRead,
			AuthRefresh, AuthLogout,
			ProfileRead, ProfileUpdate,
		},
	},
	{
		Name:        "admin",
		Description: "Administrator with full system access",
		Permissions: Names(),
	},
}

// Names returns every permission name in catalog order.
func Names() []string {
	out := make([]string, 0, len(Catalog))
	for _, e := range Catalog {
		out = append(out, e.Name)
	}
	return out
}

// Describe returns the canonical description of a catalog permission.
func Describe(name string) (string, bool) {
	for _, e := range Catalog {
		if e.Name == name {
			return e.Description, true
		}
	}
	return "", false
}
