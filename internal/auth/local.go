package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/shelf-inventory/shelf/internal/shared"
)

// User is an account managed by the local authenticator.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	Status       string
	PasswordHash string
	CreatedAt    time.Time
}

// Active reports whether the account may sign in.
func (u *User) Active() bool {
	return u != nil && (u.Status == "" || u.Status == "active")
}

// UserStore persists local accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// LocalAuthenticator keeps accounts in the reporting database and signs its
// own tokens.
type LocalAuthenticator struct {
	users    UserStore
	tokens   *Tokens
	tokenTTL time.Duration
	cost     int
}

// NewLocalAuthenticator constructs a LocalAuthenticator.
func NewLocalAuthenticator(users UserStore, tokens *Tokens, tokenTTL time.Duration) *LocalAuthenticator {
	return &LocalAuthenticator{users: users, tokens: tokens, tokenTTL: tokenTTL, cost: bcrypt.DefaultCost}
}

// Login implements Authenticator.
func (a *LocalAuthenticator) Login(ctx context.Context, in LoginInput) (shared.Identity, error) {
	user, err := a.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if err != nil || !user.Active() {
		return shared.Identity{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return shared.Identity{}, shared.ErrInvalidCredentials
	}
	return a.issue(user)
}

// Register implements Authenticator.
func (a *LocalAuthenticator) Register(ctx context.Context, in RegisterInput) (shared.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.cost)
	if err != nil {
		return shared.Identity{}, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := a.users.Create(ctx, User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Role:         "user",
		Status:       "active",
		PasswordHash: string(hash),
	})
	if err != nil {
		return shared.Identity{}, err
	}
	return a.issue(user)
}

// ChangePassword implements Authenticator.
func (a *LocalAuthenticator) ChangePassword(ctx context.Context, id shared.Identity, in ChangePasswordInput) error {
	user, err := a.users.FindByID(ctx, id.UserID)
	if err != nil {
		return shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
		return shared.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), a.cost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return a.users.UpdatePassword(ctx, user.ID, string(hash))
}

func (a *LocalAuthenticator) issue(user *User) (shared.Identity, error) {
	id := shared.Identity{UserID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
	token, err := a.tokens.Issue(id, a.tokenTTL)
	if err != nil {
		return shared.Identity{}, err
	}
	return a.tokens.Decode(token)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DB is the subset of pgxpool.Pool used by PGUserStore.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGUserStore implements UserStore on PostgreSQL.
type PGUserStore struct {
	db DB
}

// NewPGUserStore constructs a PGUserStore.
func NewPGUserStore(db DB) *PGUserStore {
	return &PGUserStore{db: db}
}

const userColumns = `id::text, name, email, role, status, password_hash, created_at`

// FindByEmail implements UserStore.
func (s *PGUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.scan(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = $1`, email))
}

// FindByID implements UserStore.
func (s *PGUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.scan(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id))
}

// Create implements UserStore.
func (s *PGUserStore) Create(ctx context.Context, user User) (*User, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO users (name, email, role, status, password_hash)
VALUES ($1, $2, $3, $4, $5) RETURNING `+userColumns,
		user.Name, user.Email, user.Role, user.Status, user.PasswordHash)
	created, err := s.scan(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// UpdatePassword implements UserStore.
func (s *PGUserStore) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := s.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id::text = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("auth: update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (s *PGUserStore) scan(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
