package repo

import (
	"context"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	// GetUserByEmail and GetUserByID return the user with roles, role permissions
	// and direct permissions loaded.
	GetUserByEmail(ctx context.Context, email string) (model.User, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	ListUsers(ctx context.Context, offset, limit int) ([]model.User, int64, error)

	UpdateUser(ctx context.Context, u model.User) error

	DeleteUser(ctx context.Context, id uuid.UUID) error

	AssignRole(ctx context.Context, userID, roleID uuid.UUID) error

	RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error

	AssignPermission(ctx context.Context, userID, permissionID uuid.UUID) error
}

type RoleRepo interface {
	CreateRole(ctx context.Context, r model.Role) (model.Role, error)

	GetRoleByID(ctx context.Context, id uuid.UUID) (model.Role, error)

	GetRoleByName(ctx context.Context, name string) (model.Role, error)

	ListRoles(ctx context.Context) ([]model.Role, error)

	// UpdateRole saves name/description and replaces the permission set.
	UpdateRole(ctx context.Context, r model.Role) error

	DeleteRole(ctx context.Context, id uuid.UUID) error
}

type PermissionRepo interface {
	CreatePermission(ctx context.Context, p model.Permission) (model.Permission, error)

	GetPermissionByID(ctx context.Context, id uuid.UUID) (model.Permission, error)

	GetPermissionByName(ctx context.Context, name string) (model.Permission, error)

	GetPermissionsByNames(ctx context.Context, names []string) ([]model.Permission, error)

	ListPermissions(ctx context.Context) ([]model.Permission, error)

	UpdatePermission(ctx context.Context, p model.Permission) error

	DeletePermission(ctx context.Context, id uuid.UUID) error
}

// Cache is a TTL key/value store. Read paths never fail: faults are reported as a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)

	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete reports whether the key existed. Its error must be honoured by callers
	// that rely on the delete for single-use semantics.
	Delete(ctx context.Context, key string) (bool, error)

	DeletePattern(ctx context.Context, pattern string) (int, error)

	// Equal compares the stored value with value in constant time. A miss is false.
	Equal(ctx context.Context, key, value string) bool
}
