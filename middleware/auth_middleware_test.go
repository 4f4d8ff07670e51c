package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/utils"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	g.GET("/me", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ContextUserID), "isAdmin": c.GetBool(ContextIsAdmin)})
	})
	g.GET("/admin", AuthMiddleware(testSecret), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return g
}

func do(g *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, do(authedEngine(), "/me", "").Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	require.Equal(t, http.StatusUnauthorized, do(authedEngine(), "/me", "Token abc").Code)
	require.Equal(t, http.StatusUnauthorized, do(authedEngine(), "/me", "Bearer not-a-jwt").Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	tok, err := utils.GenerateAccessToken("u1", false, testSecret, time.Hour)
	require.NoError(t, err)

	w := do(authedEngine(), "/me", "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"userId":"u1","isAdmin":false}`, w.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	user, err := utils.GenerateAccessToken("u1", false, testSecret, time.Hour)
	require.NoError(t, err)
	admin, err := utils.GenerateAccessToken("u2", true, testSecret, time.Hour)
	require.NoError(t, err)

	require.Equal(t, http.StatusForbidden, do(authedEngine(), "/admin", "Bearer "+user).Code)
	require.Equal(t, http.StatusOK, do(authedEngine(), "/admin", "Bearer "+admin).Code)
}
