package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newHostsRouter(hosts []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", AllowedHosts(hosts), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	return r
}

func getWithHost(r *gin.Engine, host string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Host = host
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAllowedHosts(t *testing.T) {
	r := newHostsRouter([]string{"api.example.com", "localhost"})

	assert.Equal(t, http.StatusOK, getWithHost(r, "api.example.com").Code)
	assert.Equal(t, http.StatusOK, getWithHost(r, "API.Example.COM").Code)
	assert.Equal(t, http.StatusOK, getWithHost(r, "localhost:8080").Code)
	assert.Equal(t, http.StatusBadRequest, getWithHost(r, "evil.example.com").Code)
}

func TestAllowedHostsWildcard(t *testing.T) {
	assert.Equal(t, http.StatusOK, getWithHost(newHostsRouter([]string{"*"}), "anything.example.com").Code)
	assert.Equal(t, http.StatusOK, getWithHost(newHostsRouter(nil), "anything.example.com").Code)
}
