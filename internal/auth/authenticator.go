package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/provider"
	"github.com/shelf-inventory/shelf/internal/shared"
)

// LoginInput carries sign-in credentials.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordInput carries a password change of the signed-in user.
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Authenticator signs users in and manages their credentials.
type Authenticator interface {
	Login(ctx context.Context, in LoginInput) (shared.Identity, error)
	Register(ctx context.Context, in RegisterInput) (shared.Identity, error)
	ChangePassword(ctx context.Context, id shared.Identity, in ChangePasswordInput) error
}

// Sender performs JSON round trips against the upstream API.
type Sender interface {
	Send(ctx context.Context, method, path, token string, body, out any) error
}

// RemoteAuthenticator delegates to the upstream inventory API and decodes the
// token it returns.
type RemoteAuthenticator struct {
	upstream Sender
	tokens   *Tokens
}

// NewRemoteAuthenticator constructs a RemoteAuthenticator.
func NewRemoteAuthenticator(upstream Sender, tokens *Tokens) *RemoteAuthenticator {
	return &RemoteAuthenticator{upstream: upstream, tokens: tokens}
}

// Login implements Authenticator.
func (a *RemoteAuthenticator) Login(ctx context.Context, in LoginInput) (shared.Identity, error) {
	return a.exchange(ctx, "/auth/login", in)
}

// Register implements Authenticator.
func (a *RemoteAuthenticator) Register(ctx context.Context, in RegisterInput) (shared.Identity, error) {
	return a.exchange(ctx, "/auth/register", in)
}

// ChangePassword implements Authenticator.
func (a *RemoteAuthenticator) ChangePassword(ctx context.Context, id shared.Identity, in ChangePasswordInput) error {
	if err := a.upstream.Send(ctx, http.MethodPost, "/auth/change-password", id.Token, in, nil); err != nil {
		return mapUpstream(err)
	}
	return nil
}

func (a *RemoteAuthenticator) exchange(ctx context.Context, path string, body any) (shared.Identity, error) {
	var out any
	if err := a.upstream.Send(ctx, http.MethodPost, path, "", body, &out); err != nil {
		return shared.Identity{}, mapUpstream(err)
	}
	token := dashboard.Object(out).String("token", "accessToken")
	if token == "" {
		return shared.Identity{}, fmt.Errorf("%w: missing from response", ErrInvalidToken)
	}
	return a.tokens.Decode(token)
}

// Rejection is a credential error that carries the upstream message.
type Rejection struct {
	Err     error
	Message string
}

func (r *Rejection) Error() string { return r.Err.Error() + ": " + r.Message }
func (r *Rejection) Unwrap() error { return r.Err }

func mapUpstream(err error) error {
	var upstream *provider.UpstreamError
	if !errors.As(err, &upstream) {
		return fmt.Errorf("auth: upstream: %w", err)
	}
	switch upstream.Status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return &Rejection{Err: shared.ErrInvalidCredentials, Message: upstream.Message}
	case http.StatusConflict:
		return &Rejection{Err: shared.ErrEmailTaken, Message: upstream.Message}
	default:
		return fmt.Errorf("auth: upstream: %w", err)
	}
}

// RejectionMessage returns the upstream explanation of a rejection, or
// fallback.
func RejectionMessage(err error, fallback string) string {
	var rejection *Rejection
	if errors.As(err, &rejection) && rejection.Message != "" {
		return rejection.Message
	}
	return fallback
}
