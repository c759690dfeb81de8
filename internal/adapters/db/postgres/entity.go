package postgres

import (
	"time"

	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PermissionEntity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:100;uniqueIndex;not null"`
	Description string    `gorm:"size:255"`
	IsSystem    bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PermissionEntity) TableName() string { return "permissions" }

type RoleEntity struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Name        string             `gorm:"size:50;uniqueIndex;not null"`
	Description string             `gorm:"size:255"`
	Permissions []PermissionEntity `gorm:"many2many:role_permissions;joinForeignKey:RoleID;joinReferences:PermissionID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (RoleEntity) TableName() string { return "roles" }

type UserEntity struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey"`
	Email             *string            `gorm:"size:255;uniqueIndex"`
	PasswordHash      string             `gorm:"not null"`
	FirstName         string             `gorm:"size:100"`
	LastName          string             `gorm:"size:100"`
	Roles             []RoleEntity       `gorm:"many2many:user_roles;joinForeignKey:UserID;joinReferences:RoleID"`
	DirectPermissions []PermissionEntity `gorm:"many2many:user_permissions;joinForeignKey:UserID;joinReferences:PermissionID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (UserEntity) TableName() string { return "users" }

// join rows, written directly so assignment never upserts the referenced rows

type userRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (userRole) TableName() string { return "user_roles" }

type userPermission struct {
	UserID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (userPermission) TableName() string { return "user_permissions" }

type rolePermission struct {
	RoleID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	PermissionID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (rolePermission) TableName() string { return "role_permissions" }

func (e *PermissionEntity) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *RoleEntity) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *UserEntity) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func permissionFromEntity(e PermissionEntity) model.Permission {
	return model.Permission{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		IsSystem:    e.IsSystem,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func permissionsFromEntities(es []PermissionEntity) []model.Permission {
	out := make([]model.Permission, 0, len(es))
	for _, e := range es {
		out = append(out, permissionFromEntity(e))
	}
	return out
}

func permissionToEntity(p model.Permission) PermissionEntity {
	return PermissionEntity{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		IsSystem:    p.IsSystem,
	}
}

func roleFromEntity(e RoleEntity) model.Role {
	return model.Role{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Permissions: permissionsFromEntities(e.Permissions),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func userFromEntity(e UserEntity) model.User {
	roles := make([]model.Role, 0, len(e.Roles))
	for _, r := range e.Roles {
		roles = append(roles, roleFromEntity(r))
	}
	return model.User{
		ID:                e.ID,
		Email:             e.Email,
		PasswordHash:      e.PasswordHash,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		Roles:             roles,
		DirectPermissions: permissionsFromEntities(e.DirectPermissions),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
