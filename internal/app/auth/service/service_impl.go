package service

import (
	"context"

	"github.com/Miraines/rbac-auth-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/password"
	"github.com/Miraines/rbac-auth-service/internal/app/auth/token"
	customErrors "github.com/Miraines/rbac-auth-service/internal/domain/auth/errors"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/model"
	"github.com/Miraines/rbac-auth-service/internal/domain/auth/permission"
	repo "github.com/Miraines/rbac-auth-service/internal/domain/auth/repo"
	"github.com/Miraines/rbac-auth-service/internal/infra/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Register(context.Context, dto.RegisterDTO) (model.User, model.TokenPair, error)
	Login(context.Context, dto.LoginDTO) (model.User, model.TokenPair, error)
	Refresh(context.Context, dto.RefreshDTO) (model.TokenPair, error)
	// Logout revokes rawRefresh if it belongs to userID. An unusable token is not an error.
	Logout(ctx context.Context, userID uuid.UUID, rawRefresh string) error
}

// Mailer is the part of the email service registration needs.
type Mailer interface {
	SendWelcome(ctx context.Context, to, firstName string) error
}

type authService struct {
	userRepo repo.UserRepo
	roleRepo repo.RoleRepo
	tokens   *token.Service
	hasher   *password.Hasher
	mail     Mailer
	v        *validator.Validate
	log      *zap.Logger
}

func New(
	ur repo.UserRepo,
	rr repo.RoleRepo,
	tokens *token.Service,
	hasher *password.Hasher,
	mail Mailer,
	v *validator.Validate,
	log *zap.Logger,
) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		userRepo: ur, roleRepo: rr, tokens: tokens, hasher: hasher, mail: mail, v: v, log: log,
	}
}

func (a *authService) Register(ctx context.Context, in dto.RegisterDTO) (model.User, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	passwordHash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	addr := in.Email
	id, err := a.userRepo.CreateUser(ctx, model.User{
		ID:           uuid.New(),
		Email:        &addr,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	})
	switch {
	case customErrors.IsAlreadyExists(err):
		return model.User{}, model.TokenPair{}, customErrors.NewAlreadyExists("email already registered")
	case err != nil:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	role, err := a.roleRepo.GetRoleByName(ctx, permission.DefaultRole)
	switch {
	case err == nil:
		if err := a.userRepo.AssignRole(ctx, id, role.ID); err != nil {
			return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "assign default role")
		}
	case customErrors.IsNotFound(err):
		a.log.Warn("default role is not seeded", zap.String("role", permission.DefaultRole))
	default:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	user, err := a.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Register")
	}

	a.enqueueWelcome(ctx, user)

	pair, err := a.tokens.IssueTokens(ctx, user.ID, user.RoleNames())
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return user, pair, nil
}

// enqueueWelcome is best effort: registration succeeds even if the queue is down.
func (a *authService) enqueueWelcome(ctx context.Context, u model.User) {
	if a.mail == nil || u.Email == nil {
		return
	}
	err := a.mail.SendWelcome(ctx, *u.Email, u.FirstName)
	if err != nil {
		a.log.Warn("welcome email not queued", zap.String("user_id", u.ID.String()), zap.Error(err))
	}
}

func (a *authService) Login(ctx context.Context, in dto.LoginDTO) (model.User, model.TokenPair, error) {
	user, pair, err := a.login(ctx, in)
	switch {
	case err == nil:
		metrics.LoginTotal.WithLabelValues("ok").Inc()
	case customErrors.IsInvalidCredentials(err):
		metrics.LoginTotal.WithLabelValues("invalid_credentials").Inc()
	default:
		metrics.LoginTotal.WithLabelValues("error").Inc()
	}
	return user, pair, err
}

func (a *authService) login(ctx context.Context, in dto.LoginDTO) (model.User, model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.User{}, model.TokenPair{}, customErrors.NewInvalidArgument(err.Error())
	}

	user, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	case err != nil:
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}

	ok, err := a.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return model.User{}, model.TokenPair{}, customErrors.WrapInternal(err, "Login")
	}
	if !ok {
		return model.User{}, model.TokenPair{}, customErrors.ErrInvalidCredentials
	}

	pair, err := a.tokens.IssueTokens(ctx, user.ID, user.RoleNames())
	if err != nil {
		return model.User{}, model.TokenPair{}, err
	}
	return user, pair, nil
}

func (a *authService) Refresh(ctx context.Context, in dto.RefreshDTO) (model.TokenPair, error) {
	if err := a.v.Struct(in); err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken
	}
	return a.tokens.Refresh(ctx, in.RefreshToken)
}

func (a *authService) Logout(ctx context.Context, userID uuid.UUID, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}
	owner, tokenID, err := a.tokens.Inspect(rawRefresh)
	if err != nil || owner != userID {
		// expired or foreign token: nothing of ours to revoke
		return nil
	}
	return a.tokens.Logout(ctx, owner, tokenID)
}
