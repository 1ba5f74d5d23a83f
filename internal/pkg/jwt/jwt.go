package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the lifetime of an issued session token.
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrMissingSecret is returned by NewCodec when no signing secret is supplied.
	ErrMissingSecret = errors.New("jwt: signing secret is required")
	// ErrInvalidToken covers malformed, badly signed and expired tokens alike.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Identity is the user data carried inside a session token.
type Identity struct {
	ID       string
	Username string
	Role     string
}

// Claims is the JWT payload.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwtlib.RegisteredClaims
}

// Identity returns the user fields of the claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Username: c.Username, Role: c.Role}
}

// Codec signs and verifies HS256 session tokens with a fixed secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithTTL overrides the token lifetime. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a Codec. A blank secret is a configuration error.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for id that expires TTL after now.
func (c *Codec) Issue(id Identity) (string, error) {
	now := c.now()
	claims := Claims{
		UserID:   id.ID,
		Username: id.Username,
		Role:     id.Role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry. Every failure is reported as
// ErrInvalidToken wrapping the underlying cause.
func (c *Codec) Verify(tokenStr string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, fmt.Errorf("%w: %v", ErrInvalidToken, r)
		}
	}()

	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithStrictDecoding(),
		jwtlib.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	out, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || out.UserID == "" {
		return nil, ErrInvalidToken
	}
	return out, nil
}
