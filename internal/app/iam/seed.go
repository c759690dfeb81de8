package iam

import (
	"context"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/permission"
	"go.uber.org/zap"
)

type SeedReport struct {
	Created int
	Updated int
}

// SeedPermissions upserts the catalog: missing entries are created as system
// permissions and drifted descriptions are corrected. Nothing is deleted.
func (s *Service) SeedPermissions(ctx context.Context) (SeedReport, error) {
	var rep SeedReport
	for _, entry := range permission.Catalog {
		existing, err := s.perms.GetPermissionByName(ctx, entry.Name)
		switch {
		case customErrors.IsNotFound(err):
			if _, err := s.perms.CreatePermission(ctx, model.Permission{
				Name:        entry.Name,
				Description: entry.Description,
				IsSystem:    true,
			}); err != nil && !customErrors.IsAlreadyExists(err) {
				return rep, err
			}
			rep.Created++
		case err != nil:
			return rep, err
		case existing.Description != entry.Description || !existing.IsSystem:
			existing.Description = entry.Description
			existing.IsSystem = true
			if err := s.perms.UpdatePermission(ctx, existing); err != nil {
				return rep, err
			}
			rep.Updated++
		}
	}
	s.log.Info("permissions seeded", zap.Int("created", rep.Created), zap.Int("updated", rep.Updated))
	return rep, nil
}

// SeedRoles makes the default roles exist with exactly their canonical
// permission sets. Run it after SeedPermissions.
func (s *Service) SeedRoles(ctx context.Context) (SeedReport, error) {
	var rep SeedReport
	for _, seed := range permission.DefaultRoles {
		perms, err := s.permissionsByName(ctx, seed.Permissions)
		if err != nil {
			return rep, err
		}

		existing, err := s.roles.GetRoleByName(ctx, seed.Name)
		switch {
		case customErrors.IsNotFound(err):
			if _, err := s.roles.CreateRole(ctx, model.Role{
				Name:        seed.Name,
				Description: seed.Description,
				Permissions: perms,
			}); err != nil {
				return rep, err
			}
			rep.Created++
		case err != nil:
			return rep, err
		case !samePermissions(existing.Permissions, perms) || existing.Description != seed.Description:
			existing.Description = seed.Description
			existing.Permissions = perms
			if err := s.roles.UpdateRole(ctx, existing); err != nil {
				return rep, err
			}
			rep.Updated++
		}
	}
	if rep.Updated > 0 {
		s.cache.EvictAll(ctx)
	}
	s.log.Info("roles seeded", zap.Int("created", rep.Created), zap.Int("updated", rep.Updated))
	return rep, nil
}

func samePermissions(a, b []model.Permission) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, p := range a {
		set[p.Name] = struct{}{}
	}
	for _, p := range b {
		if _, ok := set[p.Name]; !ok {
			return false
		}
	}
	return true
}
