package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fruitsight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProtectedRouter(tokens service.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(tokens, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"accountID": c.MustGet("accountID"),
			"email":     c.MustGet("email"),
		})
	})
	return router
}

func get(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tokens := service.NewTokenService([]byte("test-secret"), time.Hour)
	router := newProtectedRouter(tokens)

	tok, _, err := tokens.Issue("acct-1", "a@x.com")
	require.NoError(t, err)

	rec := get(router, "Bearer "+tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"accountID":"acct-1","email":"a@x.com"}`, rec.Body.String())
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	tokens := service.NewTokenService([]byte("test-secret"), time.Hour)
	router := newProtectedRouter(tokens)

	rec := get(router, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Authentication required"}`, rec.Body.String())
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	tokens := service.NewTokenService([]byte("test-secret"), time.Hour)
	router := newProtectedRouter(tokens)

	rec := get(router, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	expired := service.NewTokenService([]byte("test-secret"), -1*time.Minute)
	tok, _, err := expired.Issue("acct-1", "a@x.com")
	require.NoError(t, err)

	router := newProtectedRouter(service.NewTokenService([]byte("test-secret"), time.Hour))
	rec := get(router, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Token expired"}`, rec.Body.String())
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	other := service.NewTokenService([]byte("other-secret"), time.Hour)
	tok, _, err := other.Issue("acct-1", "a@x.com")
	require.NoError(t, err)

	router := newProtectedRouter(service.NewTokenService([]byte("test-secret"), time.Hour))
	rec := get(router, "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, rec.Body.String())
}
