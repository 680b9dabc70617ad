package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/models"
	"backend/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *token.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := token.NewJWTManager(token.JWTConfig{
		SecretKey:       []byte("test-secret"),
		AccessLifetime:  time.Hour,
		RefreshLifetime: 24 * time.Hour,
	})

	r := gin.New()
	r.GET("/protected", AuthMiddleware(m, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.MustGet("user_id"),
			"username": c.MustGet("username"),
			"role":     c.MustGet("role"),
		})
	})
	return r, m
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r, m := newAuthTestRouter(t)

	pair, err := m.Issue(&models.User{ID: "user-1", Username: "alice", Role: models.RoleOwner})
	require.NoError(t, err)

	w := get(r, "Bearer "+pair.Access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	r, m := newAuthTestRouter(t)

	pair, err := m.Issue(&models.User{ID: "user-1", Username: "alice", Role: models.RoleOwner})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"no token", "Bearer"},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token used as access", "Bearer " + pair.Refresh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
