package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	sql      string
	args     []any
	queryErr error
	tag      pgconn.CommandTag
	execErr  error
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.sql, f.args = sql, args
	return nil, f.queryErr
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql, f.args = sql, args
	return f.tag, f.execErr
}

func TestPGSourceRejectsUnknownQueryAndAnonymousCaller(t *testing.T) {
	src := NewPGSource(&fakeQuerier{})

	_, err := src.Fetch(context.Background(), Request{Key: "nope", UserID: "u-1"})
	require.ErrorIs(t, err, ErrUnknownQuery)

	_, err = src.Fetch(context.Background(), Request{Key: Products})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPGSourceDescribesDatabaseErrors(t *testing.T) {
	db := &fakeQuerier{queryErr: &pgconn.PgError{Code: "42P01", Message: `relation "sales" does not exist`}}
	src := NewPGSource(db)

	_, err := src.Fetch(context.Background(), Request{Key: SalesWeekly, UserID: "u-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `relation "sales" does not exist (42P01)`)
	assert.Equal(t, []any{"u-1"}, db.args)
}

func TestPGSourceUpdateProfile(t *testing.T) {
	db := &fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 1")}
	src := NewPGSource(db)

	err := src.UpdateProfile(context.Background(), Caller{UserID: "u-1"}, map[string]string{
		"name": "Ada", "email": "ada@shelf.test", "city": "London",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(db.sql, "UPDATE users SET name = $2, email = $3, title = NULLIF($4, '')"))
	require.Len(t, db.args, len(profileColumns)+1)
	assert.Equal(t, "u-1", db.args[0])
	assert.Equal(t, "London", db.args[7])
}

func TestPGSourceUpdateProfileErrors(t *testing.T) {
	src := NewPGSource(&fakeQuerier{})
	require.ErrorIs(t, src.UpdateProfile(context.Background(), Caller{}, nil), ErrUnauthorized)

	missing := NewPGSource(&fakeQuerier{tag: pgconn.NewCommandTag("UPDATE 0")})
	require.ErrorIs(t, missing.UpdateProfile(context.Background(), Caller{UserID: "u-1"}, nil), ErrUnauthorized)

	taken := NewPGSource(&fakeQuerier{execErr: &pgconn.PgError{Code: "23505"}})
	err := taken.UpdateProfile(context.Background(), Caller{UserID: "u-1"}, map[string]string{"email": "x@y.test"})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Equal(t, "Email already in use", upstream.Notice())
}

func TestPGSourceActiveUserIDsError(t *testing.T) {
	src := NewPGSource(&fakeQuerier{queryErr: errors.New("connection reset")})
	_, err := src.ActiveUserIDs(context.Background())
	require.ErrorContains(t, err, "provider: list users")
}
