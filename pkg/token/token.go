package token

import (
	"fmt"
	"time"

	"anoa.com/communityforum/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims embeds the user's role in the token so authorization does not
// re-fetch the user record. A role change takes effect at next login.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the result of resolving a token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Manager signs and verifies access tokens with a process-wide secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// NewManagerWithTTL is used by tests to mint already-expired tokens.
func NewManagerWithTTL(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the user id and role.
func (m *Manager) Issue(userID uuid.UUID, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.ttl)

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Resolve verifies signature and expiry. No store access happens here;
// the returned identity is exactly what the token was issued with.
func (m *Manager) Resolve(raw string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, apperror.ErrUnauthenticated
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.ErrUnauthenticated
	}

	return &Identity{UserID: userID, Role: claims.Role}, nil
}
