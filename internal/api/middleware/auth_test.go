package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func authRouter(required bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", Auth(testSecret, required), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUserID(c))
	})
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", time.Hour)
	require.NoError(t, err)

	w := doGet(authRouter(true), token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	w := doGet(authRouter(true), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthOptionalAllowsAnonymous(t *testing.T) {
	w := doGet(authRouter(false), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAuthRejectsBadToken(t *testing.T) {
	w := doGet(authRouter(true), "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 错误密钥签发的 token 一样拒绝
	forged, err := GenerateToken("other-secret", "user-42", time.Hour)
	require.NoError(t, err)
	w = doGet(authRouter(true), forged)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token, err := GenerateToken(testSecret, "user-42", -time.Minute)
	require.NoError(t, err)

	w := doGet(authRouter(true), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
