package postgres

import (
	"context"

	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepo struct {
	db *gorm.DB
}

func NewPostgresUserRepo(db *gorm.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

func (p *PostgresUserRepo) withAccess(ctx context.Context) *gorm.DB {
	return p.db.WithContext(ctx).
		Preload("Roles.Permissions").
		Preload("DirectPermissions")
}

func (p *PostgresUserRepo) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	e := UserEntity{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
	}
	if err := p.db.WithContext(ctx).Omit(clause.Associations).Create(&e).Error; err != nil {
		return uuid.Nil, translate(err, "CreateUser")
	}
	return e.ID, nil
}

func (p *PostgresUserRepo) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var e UserEntity
	if err := p.withAccess(ctx).Where("email = ?", email).First(&e).Error; err != nil {
		return model.User{}, translate(err, "GetUserByEmail")
	}
	return userFromEntity(e), nil
}

func (p *PostgresUserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	var e UserEntity
	if err := p.withAccess(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return model.User{}, translate(err, "GetUserByID")
	}
	return userFromEntity(e), nil
}

func (p *PostgresUserRepo) ListUsers(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	var total int64
	if err := p.db.WithContext(ctx).Model(&UserEntity{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "ListUsers")
	}

	var es []UserEntity
	err := p.withAccess(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&es).Error
	if err != nil {
		return nil, 0, translate(err, "ListUsers")
	}

	users := make([]model.User, 0, len(es))
	for _, e := range es {
		users = append(users, userFromEntity(e))
	}
	return users, total, nil
}

// UpdateUser persists the scalar columns only; roles and permissions are
// changed through the assignment methods.
func (p *PostgresUserRepo) UpdateUser(ctx context.Context, user model.User) error {
	res := p.db.WithContext(ctx).
		Model(&UserEntity{ID: user.ID}).
		Select("email", "password_hash", "first_name", "last_name", "updated_at").
		Updates(UserEntity{
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
		})
	if err := res.Error; err != nil {
		return translate(err, "UpdateUser")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresUserRepo) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&userRole{}).Error; err != nil {
			return translate(err, "DeleteUser")
		}
		if err := tx.Where("user_id = ?", id).Delete(&userPermission{}).Error; err != nil {
			return translate(err, "DeleteUser")
		}
		res := tx.Delete(&UserEntity{}, "id = ?", id)
		if err := res.Error; err != nil {
			return translate(err, "DeleteUser")
		}
		if res.RowsAffected == 0 {
			return customErrors.ErrNotFound
		}
		return nil
	})
}

func (p *PostgresUserRepo) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userRole{UserID: userID, RoleID: roleID}).Error
	return translate(err, "AssignRole")
}

func (p *PostgresUserRepo) RemoveRole(ctx context.Context, userID, roleID uuid.UUID) error {
	res := p.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&userRole{})
	if err := res.Error; err != nil {
		return translate(err, "RemoveRole")
	}
	if res.RowsAffected == 0 {
		return customErrors.ErrNotFound
	}
	return nil
}

func (p *PostgresUserRepo) AssignPermission(ctx context.Context, userID, permissionID uuid.UUID) error {
	err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&userPermission{UserID: userID, PermissionID: permissionID}).Error
	return translate(err, "AssignPermission")
}
