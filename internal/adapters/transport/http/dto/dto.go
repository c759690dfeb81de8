package dto

type RegisterDTO struct {
	Email     string `json:"email"     validate:"required,email,max=255"`
	Password  string `json:"password"  validate:"required,strongpwd"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName"  validate:"max=100"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshDTO may arrive empty in the body when the token travels in a cookie.
type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type UpdateUserDTO struct {
	Email     *string `json:"email"     validate:"omitempty,email,max=255"`
	Password  *string `json:"password"  validate:"omitempty,strongpwd"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName"  validate:"omitempty,max=100"`
}

type PageDTO struct {
	Page int `form:"page" validate:"omitempty,min=1"`
	Take int `form:"take" validate:"omitempty,min=1,max=100"`
}

type CreateRoleDTO struct {
	Name        string   `json:"name"        validate:"required,min=2,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,permission"`
}

type UpdateRoleDTO struct {
	Name        *string   `json:"name"        validate:"omitempty,min=2,max=50"`
	Description *string   `json:"description" validate:"omitempty,max=255"`
	Permissions *[]string `json:"permissions" validate:"omitempty,dive,permission"`
}

type CreatePermissionDTO struct {
	Name        string `json:"name"        validate:"required,permission,max=100"`
	Description string `json:"description" validate:"max=255"`
	IsSystem    bool   `json:"isSystem"`
}

type AssignRoleDTO struct {
	Role string `json:"role" validate:"required"`
}

type AssignPermissionDTO struct {
	Permission string `json:"permission" validate:"required,permission"`
}

type NotificationDTO struct {
	To      []string `json:"to"      validate:"required,min=1,max=50,dive,email"`
	Subject string   `json:"subject" validate:"required,max=255"`
	Text    string   `json:"text"    validate:"required"`
}

type JobsQueryDTO struct {
	Status string `form:"status"`
	Start  int64  `form:"start"`
	End    *int64 `form:"end"`
}
