package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shelf-inventory/shelf/internal/shared"
)

// ErrPasswordMismatch indicates a confirmation that differs from the password.
var ErrPasswordMismatch = errors.New("auth: password confirmation mismatch")

// PasswordMismatchMessage is shown when a confirmation does not match.
const PasswordMismatchMessage = "Password and confirm password must be same!"

// Service wraps authentication business rules.
type Service struct {
	authn Authenticator
	now   func() time.Time
}

// NewService constructs a new Service.
func NewService(authn Authenticator) *Service {
	return &Service{authn: authn, now: time.Now}
}

// Login validates email/password credentials.
func (s *Service) Login(ctx context.Context, in LoginInput) (shared.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	return s.authn.Login(ctx, in)
}

// Register creates an account and signs it in. The password must be
// confirmed.
func (s *Service) Register(ctx context.Context, in RegisterInput, confirm string) (shared.Identity, error) {
	if in.Password != confirm {
		return shared.Identity{}, ErrPasswordMismatch
	}
	in.Email = strings.TrimSpace(in.Email)
	return s.authn.Register(ctx, in)
}

// ChangePassword replaces the password of the signed-in user.
func (s *Service) ChangePassword(ctx context.Context, id *shared.Identity, in ChangePasswordInput, confirm string) error {
	if id == nil || id.Expired(s.now()) {
		return shared.ErrUnauthenticated
	}
	if in.NewPassword != confirm {
		return ErrPasswordMismatch
	}
	return s.authn.ChangePassword(ctx, *id, in)
}

// Valid reports whether a stored identity may still be used.
func (s *Service) Valid(id *shared.Identity) bool {
	return id != nil && !id.Expired(s.now())
}
