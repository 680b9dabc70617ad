package token

import (
	"testing"
	"time"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:       "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		Username: "alice",
		Email:    "a@x.com",
		Role:     models.RoleOwner,
	}
}

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		SecretKey:       []byte("test-secret"),
		AccessLifetime:  time.Hour,
		RefreshLifetime: 24 * time.Hour,
	})
}

func TestIssueAndParse(t *testing.T) {
	m := testManager()
	user := testUser()

	pair, err := m.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	assert.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := m.Parse(pair.Access, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleOwner, claims.Role)
	assert.Equal(t, TypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)

	refreshClaims, err := m.Parse(pair.Refresh, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, TypeRefresh, refreshClaims.TokenType)
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestParseRejectsWrongType(t *testing.T) {
	m := testManager()

	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	_, err = m.Parse(pair.Refresh, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.Parse(pair.Access, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := testManager()
	issued := time.Now()
	m.now = func() time.Time { return issued }

	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// The refresh token outlives the access token.
	_, err = m.Parse(pair.Refresh, TypeRefresh)
	assert.NoError(t, err)
}

func TestParseRejectsWrongKey(t *testing.T) {
	m := testManager()
	pair, err := m.Issue(testUser())
	require.NoError(t, err)

	other := NewJWTManager(JWTConfig{
		SecretKey:       []byte("different-secret"),
		AccessLifetime:  time.Hour,
		RefreshLifetime: 24 * time.Hour,
	})
	_, err = other.Parse(pair.Access, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := testManager()
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := m.Parse(raw, TypeAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
