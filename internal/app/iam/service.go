// Package iam manages roles, permissions and their assignment to users.
package iam

import (
	"context"
	"sort"
	"strings"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Evicter drops cached identities after their permissions change.
type Evicter interface {
	Evict(ctx context.Context, id uuid.UUID)
	EvictAll(ctx context.Context)
}

type Service struct {
	users repo.UserRepo
	roles repo.RoleRepo
	perms repo.PermissionRepo
	cache Evicter
	v     *validator.Validate
	log   *zap.Logger
}

func NewService(
	users repo.UserRepo,
	roles repo.RoleRepo,
	perms repo.PermissionRepo,
	cache Evicter,
	v *validator.Validate,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, roles: roles, perms: perms, cache: cache, v: v, log: log}
}

/* ─── roles ─── */

func (s *Service) CreateRole(ctx context.Context, in dto.CreateRoleDTO) (model.Role, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Role{}, customErrors.NewInvalidArgument(err.Error())
	}
	perms, err := s.permissionsByName(ctx, in.Permissions)
	if err != nil {
		return model.Role{}, err
	}

	role, err := s.roles.CreateRole(ctx, model.Role{
		Name:        in.Name,
		Description: in.Description,
		Permissions: perms,
	})
	if customErrors.IsAlreadyExists(err) {
		return model.Role{}, customErrors.NewAlreadyExists("role " + in.Name + " already exists")
	}
	return role, err
}

func (s *Service) ListRoles(ctx context.Context) ([]model.Role, error) {
	return s.roles.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (model.Role, error) {
	role, err := s.roles.GetRoleByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return model.Role{}, customErrors.NewNotFound("role not found")
	}
	return role, err
}

// UpdateRole applies the non-nil fields of in. Every cached identity is
// dropped afterwards since any user may hold the role.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, in dto.UpdateRoleDTO) (model.Role, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Role{}, customErrors.NewInvalidArgument(err.Error())
	}
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return model.Role{}, err
	}

	if in.Name != nil {
		role.Name = *in.Name
	}
	if in.Description != nil {
		role.Description = *in.Description
	}
	if in.Permissions != nil {
		perms, err := s.permissionsByName(ctx, *in.Permissions)
		if err != nil {
			return model.Role{}, err
		}
		role.Permissions = perms
	}

	switch err := s.roles.UpdateRole(ctx, role); {
	case customErrors.IsAlreadyExists(err):
		return model.Role{}, customErrors.NewAlreadyExists("role " + role.Name + " already exists")
	case err != nil:
		return model.Role{}, err
	}
	s.cache.EvictAll(ctx)
	return s.roles.GetRoleByID(ctx, id)
}

func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	if err := s.roles.DeleteRole(ctx, id); err != nil {
		if customErrors.IsNotFound(err) {
			return customErrors.NewNotFound("role not found")
		}
		return err
	}
	s.cache.EvictAll(ctx)
	return nil
}

/* ─── permissions ─── */

func (s *Service) CreatePermission(ctx context.Context, in dto.CreatePermissionDTO) (model.Permission, error) {
	if err := s.v.Struct(in); err != nil {
		return model.Permission{}, customErrors.NewInvalidArgument(err.Error())
	}
	perm, err := s.perms.CreatePermission(ctx, model.Permission{
		Name:        in.Name,
		Description: in.Description,
		IsSystem:    in.IsSystem,
	})
	if customErrors.IsAlreadyExists(err) {
		return model.Permission{}, customErrors.NewAlreadyExists("permission " + in.Name + " already exists")
	}
	return perm, err
}

func (s *Service) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	return s.perms.ListPermissions(ctx)
}

// DeletePermission refuses system permissions.
func (s *Service) DeletePermission(ctx context.Context, id uuid.UUID) error {
	perm, err := s.perms.GetPermissionByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound("permission not found")
	}
	if err != nil {
		return err
	}
	if perm.IsSystem {
		return customErrors.NewConflict("system permission " + perm.Name + " cannot be deleted")
	}
	if err := s.perms.DeletePermission(ctx, id); err != nil {
		return err
	}
	s.cache.EvictAll(ctx)
	return nil
}

/* ─── assignment ─── */

func (s *Service) AssignRole(ctx context.Context, userID uuid.UUID, in dto.AssignRoleDTO) error {
	if err := s.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	if err := s.userExists(ctx, userID); err != nil {
		return err
	}
	role, err := s.roles.GetRoleByName(ctx, in.Role)
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound("role " + in.Role + " not found")
	}
	if err != nil {
		return err
	}
	if err := s.users.AssignRole(ctx, userID, role.ID); err != nil {
		return err
	}
	s.cache.Evict(ctx, userID)
	s.log.Info("role assigned", zap.String("user_id", userID.String()), zap.String("role", role.Name))
	return nil
}

func (s *Service) RemoveRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := s.roles.GetRoleByName(ctx, roleName)
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound("role " + roleName + " not found")
	}
	if err != nil {
		return err
	}
	if err := s.users.RemoveRole(ctx, userID, role.ID); err != nil {
		if customErrors.IsNotFound(err) {
			return customErrors.NewNotFound("user does not have role " + roleName)
		}
		return err
	}
	s.cache.Evict(ctx, userID)
	s.log.Info("role removed", zap.String("user_id", userID.String()), zap.String("role", role.Name))
	return nil
}

func (s *Service) AssignPermission(ctx context.Context, userID uuid.UUID, in dto.AssignPermissionDTO) error {
	if err := s.v.Struct(in); err != nil {
		return customErrors.NewInvalidArgument(err.Error())
	}
	if err := s.userExists(ctx, userID); err != nil {
		return err
	}
	perm, err := s.perms.GetPermissionByName(ctx, in.Permission)
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound("permission " + in.Permission + " not found")
	}
	if err != nil {
		return err
	}
	if err := s.users.AssignPermission(ctx, userID, perm.ID); err != nil {
		return err
	}
	s.cache.Evict(ctx, userID)
	return nil
}

func (s *Service) userExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.users.GetUserByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return customErrors.NewNotFound("user not found")
	}
	return err
}

// permissionsByName resolves every name or reports the unknown ones.
func (s *Service) permissionsByName(ctx context.Context, names []string) ([]model.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	perms, err := s.perms.GetPermissionsByNames(ctx, names)
	if err != nil {
		return nil, err
	}

	found := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		found[p.Name] = struct{}{}
	}
	var unknown []string
	for _, n := range names {
		if _, ok := found[n]; !ok {
			unknown = append(unknown, n)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, customErrors.NewNotFound("unknown permissions: " + strings.Join(unknown, ", "))
	}
	return perms, nil
}
