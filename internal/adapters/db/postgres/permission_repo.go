package postgres

import (
	"context"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresPermissionRepo struct {
	db *gorm.DB
}

func NewPostgresPermissionRepo(db *gorm.DB) *PostgresPermissionRepo {
	return &PostgresPermissionRepo{db: db}
}

func (p *PostgresPermissionRepo) CreatePermission(ctx context.Context, perm model.Permission) (model.Permission, error) {
	e := permissionToEntity(perm)
	if err := p.db.WithContext(ctx).Create(&e).Error; err != nil {
		return model.Permission{}, translate(err, "CreatePermission")
	}
	return permissionFromEntity(e), nil
}

func (p *PostgresPermissionRepo) GetPermissionByID(ctx context.Context, id uuid.UUID) (model.Permission, error) {
	var e PermissionEntity
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return model.Permission{}, translate(err, "GetPermissionByID")
	}
	return permissionFromEntity(e), nil
}

func (p *PostgresPermissionRepo) GetPermissionByName(ctx context.Context, name string) (model.Permission, error) {
	var e PermissionEntity
	if err := p.db.WithContext(ctx).Where("name = ?", name).First(&e).Error; err != nil {
		return model.Permission{}, translate(err, "GetPermissionByName")
	}
	return permissionFromEntity(e), nil
}

func (p *PostgresPermissionRepo) GetPermissionsByNames(ctx context.Context, names []string) ([]model.Permission, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var es []PermissionEntity
	if err := p.db.WithContext(ctx).Where("name IN ?", names).Order("name ASC").Find(&es).Error; err != nil {
		return nil, translate(err, "GetPermissionsByNames")
	}
	return permissionsFromEntities(es), nil
}

func (p *PostgresPermissionRepo) ListPermissions(ctx context.Context) ([]model.Permission, error) {
	var es []PermissionEntity
	if err := p.db.WithContext(ctx).Order("name ASC").Find(&es).Error; err != nil {
		return nil, translate(err, "ListPermissions")
	}
	return permissionsFromEntities(es), nil
}

func (p *PostgresPermissionRepo) UpdatePermission(ctx context.Context, perm model.Permission) error {
	res := p.db.WithContext(ctx).
		Model(&PermissionEntity{ID: perm.ID}).
		Select("name", "description", "is_system", "updated_at").
		Updates(PermissionEntity{Name: perm.Name, Description: perm.Description, IsSystem: perm.IsSystem})
	if err := res.Error; err != nil {
		return translate(err, "UpdatePermission")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresPermissionRepo) DeletePermission(ctx context.Context, id uuid.UUID) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("permission_id = ?", id).Delete(&rolePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("permission_id = ?", id).Delete(&userPermission{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&PermissionEntity{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
	return translate(err, "DeletePermission")
}
