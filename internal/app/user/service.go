// Package user implements the administrative user operations.
package user

import (
	"context"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/password"
	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPage = 1
	defaultTake = 10
)

type Evicter interface {
	Evict(ctx context.Context, id uuid.UUID)
}

type Service struct {
	users  repo.UserRepo
	hasher *password.Hasher
	cache  Evicter
	v      *validator.Validate
	log    *zap.Logger
}

func NewService(users repo.UserRepo, hasher *password.Hasher, cache Evicter, v *validator.Validate, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, hasher: hasher, cache: cache, v: v, log: log}
}

func (s *Service) List(ctx context.Context, in dto.PageDTO) ([]model.User, model.Page, error) {
	if err := s.v.Struct(in); err != nil {
		return nil, model.Page{}, customErrors.NewInvalidArgument(err.Error())
	}
	if in.Page == 0 {
		in.Page = defaultPage
	}
	if in.Take == 0 {
		in.Take = defaultTake
	}

	users, total, err := s.users.ListUsers(ctx, (in.Page-1)*in.Take, in.Take)
	if err != nil {
		return nil, model.Page{}, err
	}
	return users, model.Page{Page: in.Page, Take: in.Take, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if customErrors.IsNotFound(err) {
		return model.User{}, customErrors.NewNotFound("user not found")
	}
	return u, err
}

// Update applies the non-nil fields. The password is re-hashed only when it
// differs from the stored one.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in dto.UpdateUserDTO) (model.User, error) {
	if err := s.v.Struct(in); err != nil {
		return model.User{}, customErrors.NewInvalidArgument(err.Error())
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	if in.Email != nil {
		addr := *in.Email
		u.Email = &addr
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.Password != nil && s.hasher.Changed(*in.Password, u.PasswordHash) {
		h, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return model.User{}, customErrors.WrapInternal(err, "Update")
		}
		u.PasswordHash = h
	}

	switch err := s.users.UpdateUser(ctx, u); {
	case customErrors.IsAlreadyExists(err):
		return model.User{}, customErrors.NewAlreadyExists("email already in use")
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.NewNotFound("user not found")
	case err != nil:
		return model.User{}, err
	}
	s.cache.Evict(ctx, id)

	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		if customErrors.IsNotFound(err) {
			return customErrors.NewNotFound("user not found")
		}
		return err
	}
	s.cache.Evict(ctx, id)
	s.log.Info("user deleted", zap.String("user_id", id.String()))
	return nil
}
