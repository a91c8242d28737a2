package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/tweetline/pkg/response"
)

const ctxUserID = "auth_user_id"

// GenerateToken 签发用户 token，subject 为用户 ID
func GenerateToken(secret, userID string, expire time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Auth 解析 Bearer token 并把用户 ID 写入上下文；
// required 为 false 时允许匿名通过（只读接口）
func Auth(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				response.Unauthorized(c, "missing authorization header")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		claims := token.Claims.(*jwt.RegisteredClaims)
		c.Set(ctxUserID, claims.Subject)
		c.Next()
	}
}

// CurrentUserID 取当前登录用户 ID；匿名返回空串
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}
