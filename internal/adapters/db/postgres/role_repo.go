package postgres

import (
	"context"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoleRepo struct {
	db *gorm.DB
}

func NewPostgresRoleRepo(db *gorm.DB) *PostgresRoleRepo {
	return &PostgresRoleRepo{db: db}
}

func (p *PostgresRoleRepo) CreateRole(ctx context.Context, r model.Role) (model.Role, error) {
	e := RoleEntity{ID: r.ID, Name: r.Name, Description: r.Description}
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&e).Error; err != nil {
			return err
		}
		return linkPermissions(tx, e.ID, r.Permissions)
	})
	if err != nil {
		return model.Role{}, translate(err, "CreateRole")
	}
	return p.GetRoleByID(ctx, e.ID)
}

func (p *PostgresRoleRepo) GetRoleByID(ctx context.Context, id uuid.UUID) (model.Role, error) {
	var e RoleEntity
	if err := p.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&e).Error; err != nil {
		return model.Role{}, translate(err, "GetRoleByID")
	}
	return roleFromEntity(e), nil
}

func (p *PostgresRoleRepo) GetRoleByName(ctx context.Context, name string) (model.Role, error) {
	var e RoleEntity
	if err := p.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&e).Error; err != nil {
		return model.Role{}, translate(err, "GetRoleByName")
	}
	return roleFromEntity(e), nil
}

func (p *PostgresRoleRepo) ListRoles(ctx context.Context) ([]model.Role, error) {
	var es []RoleEntity
	if err := p.db.WithContext(ctx).Preload("Permissions").Order("name ASC").Find(&es).Error; err != nil {
		return nil, translate(err, "ListRoles")
	}
	out := make([]model.Role, 0, len(es))
	for _, e := range es {
		out = append(out, roleFromEntity(e))
	}
	return out, nil
}

func (p *PostgresRoleRepo) UpdateRole(ctx context.Context, r model.Role) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RoleEntity{ID: r.ID}).
			Select("name", "description", "updated_at").
			Updates(RoleEntity{Name: r.Name, Description: r.Description})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		if err := tx.Where("role_id = ?", r.ID).Delete(&rolePermission{}).Error; err != nil {
			return err
		}
		return linkPermissions(tx, r.ID, r.Permissions)
	})
	return translate(err, "UpdateRole")
}

func (p *PostgresRoleRepo) DeleteRole(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&rolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&userRole{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&RoleEntity{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	return translate(err, "DeleteRole")
}

func linkPermissions(tx *gorm.DB, roleID uuid.UUID, perms []model.Permission) error {
	if len(perms) == 0 {
		return nil
	}
	rows := make([]rolePermission, 0, len(perms))
	for _, perm := range perms {
		rows = append(rows, rolePermission{RoleID: roleID, PermissionID: perm.ID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
