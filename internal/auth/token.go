package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cast"

	"github.com/shelf-inventory/shelf/internal/shared"
)

// ErrInvalidToken indicates a token that cannot be decoded or has expired.
var ErrInvalidToken = errors.New("auth: invalid token")

// Tokens decodes authentication tokens into identities and issues tokens for
// locally managed accounts.
//
// Without a secret tokens are decoded without signature verification: the
// upstream API that issued them stays the authority and rejects forged tokens
// on the next request.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens constructs a codec. An empty secret disables verification.
func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret), now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (t *Tokens) WithNow(now func() time.Time) *Tokens {
	if now != nil {
		t.now = now
	}
	return t
}

// Verifying reports whether signatures are checked.
func (t *Tokens) Verifying() bool {
	return len(t.secret) > 0
}

// Decode extracts the identity carried by raw.
func (t *Tokens) Decode(raw string) (shared.Identity, error) {
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "Bearer "))
	if token == "" {
		return shared.Identity{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	var err error
	if t.Verifying() {
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
		_, err = parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		})
	} else {
		_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	}
	if err != nil {
		return shared.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id := shared.Identity{
		UserID: firstClaim(claims, "userId", "_id", "id", "sub"),
		Email:  firstClaim(claims, "email"),
		Name:   firstClaim(claims, "name"),
		Role:   firstClaim(claims, "role"),
		Token:  token,
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if id.UserID == "" && id.Email == "" {
		return shared.Identity{}, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	if id.Expired(t.now()) {
		return shared.Identity{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return id, nil
}

// Issue signs a token for id that expires after ttl.
func (t *Tokens) Issue(id shared.Identity, ttl time.Duration) (string, error) {
	if !t.Verifying() {
		return "", errors.New("auth: token secret not configured")
	}
	now := t.now()
	claims := jwt.MapClaims{
		"userId": id.UserID,
		"email":  id.Email,
		"role":   id.Role,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	if id.Name != "" {
		claims["name"] = id.Name
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func firstClaim(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if value, ok := claims[key]; ok && value != nil {
			if s := strings.TrimSpace(cast.ToString(value)); s != "" {
				return s
			}
		}
	}
	return ""
}
