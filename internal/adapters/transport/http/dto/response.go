package dto

import (
	"time"

	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/email"
)

type UserResponse struct {
	ID                   string    `json:"id"`
	Email                *string   `json:"email"`
	FirstName            string    `json:"firstName"`
	LastName             string    `json:"lastName"`
	Roles                []string  `json:"roles"`
	EffectivePermissions []string  `json:"effectivePermissions"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func NewUserResponse(u model.User) UserResponse {
	return UserResponse{
		ID:                   u.ID.String(),
		Email:                u.Email,
		FirstName:            u.FirstName,
		LastName:             u.LastName,
		Roles:                u.RoleNames(),
		EffectivePermissions: u.EffectivePermissions(),
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

func NewTokenResponse(p model.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		ExpiresIn:    int(p.AccessTTL.Round(time.Second).Seconds()),
	}
}

type LoginResponse struct {
	User  UserResponse  `json:"user"`
	Token TokenResponse `json:"token"`
}

type PermissionResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `json:"isSystem"`
}

func NewPermissionResponse(p model.Permission) PermissionResponse {
	return PermissionResponse{ID: p.ID.String(), Name: p.Name, Description: p.Description, IsSystem: p.IsSystem}
}

func NewPermissionResponses(ps []model.Permission) []PermissionResponse {
	out := make([]PermissionResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPermissionResponse(p))
	}
	return out
}

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Permissions []PermissionResponse `json:"permissions"`
}

func NewRoleResponse(r model.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		Permissions: NewPermissionResponses(r.Permissions),
	}
}

type PageMeta struct {
	Page            int   `json:"page"`
	Take            int   `json:"take"`
	ItemCount       int64 `json:"itemCount"`
	PageCount       int64 `json:"pageCount"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	HasNextPage     bool  `json:"hasNextPage"`
}

func NewPageMeta(p model.Page) PageMeta {
	var pages int64
	if p.Take > 0 {
		pages = (p.Total + int64(p.Take) - 1) / int64(p.Take)
	}
	return PageMeta{
		Page:            p.Page,
		Take:            p.Take,
		ItemCount:       p.Total,
		PageCount:       pages,
		HasPreviousPage: p.Page > 1,
		HasNextPage:     int64(p.Page) < pages,
	}
}

type UserPage struct {
	Data []UserResponse `json:"data"`
	Meta PageMeta       `json:"meta"`
}

type EmailJobResponse struct {
	email.Job
	Status email.JobStatus `json:"status"`
}
