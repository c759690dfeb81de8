package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")

	// ErrInvalidRefreshToken is the only error a refresh caller ever sees.
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrInvalidToken)
)

// PermissionDeniedError carries the permissions a caller lacked.
type PermissionDeniedError struct {
	Missing []string
}

func (e *PermissionDeniedError) Error() string {
	return "missing required permissions: " + strings.Join(e.Missing, ", ")
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrForbidden
}

func NewPermissionDenied(missing []string) error {
	return &PermissionDeniedError{Missing: missing}
}

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

func NewNotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, msg)
}

func NewAlreadyExists(msg string) error {
	return fmt.Errorf("%w: %s", ErrAlreadyExists, msg)
}

func NewConflict(msg string) error {
	return fmt.Errorf("%w: %s", ErrConflict, msg)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// MissingPermissions returns the permissions listed by a PermissionDeniedError in err's chain.
func MissingPermissions(err error) []string {
	var pd *PermissionDeniedError
	if errors.As(err, &pd) {
		return pd.Missing
	}
	return nil
}
