// internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qooqz/auction-backend/internal/utils"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/optional", OptionalAuth(), func(c *gin.Context) {
		userID := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"anonymous": userID == uuid.Nil})
	})
	return r
}

func requestWithToken(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("rejects missing header", func(t *testing.T) {
		w := requestWithToken(r, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		w := requestWithToken(r, "/protected", "garbage")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts valid token", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "bidder", "customer", uuid.New(), 1)
		require.NoError(t, err)
		w := requestWithToken(r, "/protected", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("rejects non-admin", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "bidder", "customer", uuid.New(), 1)
		require.NoError(t, err)
		w := requestWithToken(r, "/admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("accepts admin", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "boss", "admin", uuid.New(), 1)
		require.NoError(t, err)
		w := requestWithToken(r, "/admin", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("passes anonymous through", func(t *testing.T) {
		w := requestWithToken(r, "/optional", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymous":true`)
	})

	t.Run("attaches identity when token valid", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "bidder", "customer", uuid.New(), 1)
		require.NoError(t, err)
		w := requestWithToken(r, "/optional", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymous":false`)
	})

	t.Run("ignores invalid token", func(t *testing.T) {
		w := requestWithToken(r, "/optional", "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"anonymous":true`)
	})
}
