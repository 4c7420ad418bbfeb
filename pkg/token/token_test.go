package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndResolve(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := uuid.New()

	signed, expiresAt, err := m.Issue(userID, "moderator")
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	id, err := m.Resolve(signed)
	require.NoError(t, err)
	assert.Equal(t, userID, id.UserID)
	assert.Equal(t, "moderator", id.Role)
}

func TestResolveExpiredToken(t *testing.T) {
	m := NewManagerWithTTL("test-secret", -time.Minute)

	signed, _, err := m.Issue(uuid.New(), "admin")
	require.NoError(t, err)

	_, err = m.Resolve(signed)
	assert.Error(t, err)
}

func TestResolveWrongSecret(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	signed, _, err := m.Issue(uuid.New(), "admin")
	require.NoError(t, err)

	other := NewManager("other-secret", time.Hour)
	_, err = other.Resolve(signed)
	assert.Error(t, err)
}

func TestResolveGarbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	_, err := m.Resolve("not-a-token")
	assert.Error(t, err)
}
