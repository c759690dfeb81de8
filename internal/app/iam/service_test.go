package iam_test

import (
	"context"
	"testing"
	"time"

	"github.com/Miraines/rbac-auth-service/internal/adapters/db/postgres"
	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/identity"
	"github.com/Miraines/rbac-auth-service/internal/app/iam"
	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/permission"
	"github.com/Miraines/rbac-auth-service/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

/* ───────────────────────────── helpers ───────────────────────────── */

type fixture struct {
	svc      *iam.Service
	users    *postgres.PostgresUserRepo
	perms    *postgres.PostgresPermissionRepo
	resolver *identity.Resolver
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	db := testutil.DB(t)
	cache, mr := testutil.Cache(t)
	users := postgres.NewPostgresUserRepo(db)
	roles := postgres.NewPostgresRoleRepo(db)
	perms := postgres.NewPostgresPermissionRepo(db)
	resolver := identity.NewResolver(users, cache, 5*time.Minute, nil)

	return fixture{
		svc:      iam.NewService(users, roles, perms, resolver, dto.NewValidator(), nil),
		users:    users,
		perms:    perms,
		resolver: resolver,
		mr:       mr,
	}
}

func (f fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.SeedPermissions(ctx)
	require.NoError(t, err)
	_, err = f.svc.SeedRoles(ctx)
	require.NoError(t, err)
}

func (f fixture) newUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	id, err := f.users.CreateUser(context.Background(), model.User{Email: &email, PasswordHash: "h"})
	require.NoError(t, err)
	return id
}

/* ───────────────────────────── seeding ───────────────────────────── */

func TestSeed_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rep, err := f.svc.SeedPermissions(ctx)
	require.NoError(t, err)
	require.Equal(t, len(permission.Catalog), rep.Created)

	rep, err = f.svc.SeedPermissions(ctx)
	require.NoError(t, err)
	require.Zero(t, rep.Created)
	require.Zero(t, rep.Updated)

	rep, err = f.svc.SeedRoles(ctx)
	require.NoError(t, err)
	require.Equal(t, len(permission.DefaultRoles), rep.Created)

	rep, err = f.svc.SeedRoles(ctx)
	require.NoError(t, err)
	require.Zero(t, rep.Created)
	require.Zero(t, rep.Updated)

	all, err := f.svc.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(permission.Catalog))
	for _, p := range all {
		require.True(t, p.IsSystem, p.Name)
	}

	roles, err := f.svc.ListRoles(ctx)
	require.NoError(t, err)
	for _, r := range roles {
		if r.Name == "admin" {
			require.Len(t, r.Permissions, len(permission.Catalog))
		}
	}
}

func TestSeed_RepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)

	p, err := f.perms.GetPermissionByName(ctx, permission.UserRead)
	require.NoError(t, err)
	p.Description = "tampered"
	require.NoError(t, f.perms.UpdatePermission(ctx, p))

	extra, err := f.perms.CreatePermission(ctx, model.Permission{Name: "report:read"})
	require.NoError(t, err)

	rep, err := f.svc.SeedPermissions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rep.Updated)

	p, err = f.perms.GetPermissionByName(ctx, permission.UserRead)
	require.NoError(t, err)
	desc, _ := permission.Describe(permission.UserRead)
	require.Equal(t, desc, p.Description)

	// seeding never deletes
	_, err = f.perms.GetPermissionByID(ctx, extra.ID)
	require.NoError(t, err)
}

/* ───────────────────────────── roles ───────────────────────────── */

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)

	role, err := f.svc.CreateRole(ctx, dto.CreateRoleDTO{
		Name:        "auditor",
		Permissions: []string{permission.AuditRead, permission.AuditExport},
	})
	require.NoError(t, err)
	require.Len(t, role.Permissions, 2)

	_, err = f.svc.CreateRole(ctx, dto.CreateRoleDTO{Name: "auditor"})
	require.True(t, customErrors.IsAlreadyExists(err))

	_, err = f.svc.CreateRole(ctx, dto.CreateRoleDTO{Name: "ghost", Permissions: []string{"ghost:read"}})
	require.True(t, customErrors.IsNotFound(err))

	_, err = f.svc.CreateRole(ctx, dto.CreateRoleDTO{Name: "bad", Permissions: []string{"NotAPermission"}})
	require.True(t, customErrors.IsInvalidArgument(err))
}

func TestUpdateRole_EvictsIdentities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)

	uid := f.newUser(t, "u@example.com")
	require.NoError(t, f.svc.AssignRole(ctx, uid, dto.AssignRoleDTO{Role: "user"}))

	ident, err := f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)
	require.False(t, ident.HasPermission(permission.UserDelete))
	require.True(t, f.mr.Exists(identity.UserKey(uid)))

	role, err := f.svc.ListRoles(ctx)
	require.NoError(t, err)
	var userRole model.Role
	for _, r := range role {
		if r.Name == "user" {
			userRole = r
		}
	}

	perms := []string{permission.UserRead, permission.UserDelete}
	updated, err := f.svc.UpdateRole(ctx, userRole.ID, dto.UpdateRoleDTO{Permissions: &perms})
	require.NoError(t, err)
	require.Len(t, updated.Permissions, 2)
	require.False(t, f.mr.Exists(identity.UserKey(uid)))

	ident, err = f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)
	require.True(t, ident.HasPermission(permission.UserDelete))
	require.False(t, ident.HasPermission(permission.ProfileRead))
}

func TestDeleteRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.svc.CreateRole(ctx, dto.CreateRoleDTO{Name: "temp"})
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteRole(ctx, role.ID))

	_, err = f.svc.GetRole(ctx, role.ID)
	require.True(t, customErrors.IsNotFound(err))
	require.True(t, customErrors.IsNotFound(f.svc.DeleteRole(ctx, role.ID)))
}

/* ───────────────────────────── permissions ───────────────────────────── */

func TestDeletePermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)

	sys, err := f.perms.GetPermissionByName(ctx, permission.UserRead)
	require.NoError(t, err)
	require.True(t, customErrors.IsConflict(f.svc.DeletePermission(ctx, sys.ID)))

	custom, err := f.svc.CreatePermission(ctx, dto.CreatePermissionDTO{Name: "report:read"})
	require.NoError(t, err)
	require.False(t, custom.IsSystem)

	_, err = f.svc.CreatePermission(ctx, dto.CreatePermissionDTO{Name: "report:read"})
	require.True(t, customErrors.IsAlreadyExists(err))

	require.NoError(t, f.svc.DeletePermission(ctx, custom.ID))
	require.True(t, customErrors.IsNotFound(f.svc.DeletePermission(ctx, custom.ID)))
}

/* ───────────────────────────── assignment ───────────────────────────── */

func TestAssignAndRemoveRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)
	uid := f.newUser(t, "a@example.com")

	require.True(t, customErrors.IsNotFound(f.svc.AssignRole(ctx, uid, dto.AssignRoleDTO{Role: "nope"})))
	require.True(t, customErrors.IsNotFound(f.svc.AssignRole(ctx, uuid.New(), dto.AssignRoleDTO{Role: "admin"})))

	_, err := f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)

	require.NoError(t, f.svc.AssignRole(ctx, uid, dto.AssignRoleDTO{Role: "admin"}))
	require.False(t, f.mr.Exists(identity.UserKey(uid)))

	ident, err := f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)
	require.True(t, ident.HasPermission(permission.SystemAdmin))

	require.NoError(t, f.svc.RemoveRole(ctx, uid, "admin"))
	require.True(t, customErrors.IsNotFound(f.svc.RemoveRole(ctx, uid, "admin")))

	ident, err = f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)
	require.Empty(t, ident.ComputedPermissions)
}

func TestAssignPermission(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t)
	uid := f.newUser(t, "p@example.com")

	require.NoError(t, f.svc.AssignPermission(ctx, uid, dto.AssignPermissionDTO{Permission: permission.AuditRead}))
	// assigning twice is harmless
	require.NoError(t, f.svc.AssignPermission(ctx, uid, dto.AssignPermissionDTO{Permission: permission.AuditRead}))

	ident, err := f.resolver.Resolve(ctx, uid)
	require.NoError(t, err)
	require.Equal(t, []string{permission.AuditRead}, ident.ComputedPermissions)

	err = f.svc.AssignPermission(ctx, uid, dto.AssignPermissionDTO{Permission: "ghost:read"})
	require.True(t, customErrors.IsNotFound(err))
}
