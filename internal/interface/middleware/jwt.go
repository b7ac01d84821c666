package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/clean-auth/pkg/helpers"
	"github.com/oksasatya/clean-auth/pkg/response"
)

// TokenVerifier validates an access token and returns its identity claims.
type TokenVerifier interface {
	VerifyAndExtractIdentity(token string) (*helpers.Claims, error)
}

// JWTAuth reads the bearer token, validates it, and injects user ID, username
// and the raw token into context.
func JWTAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Fail(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := v.VerifyAndExtractIdentity(token)
		if err != nil {
			response.Fail(c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUsernameKey, claims.Username)
		c.Set(CtxAccessTokenKey, token)
		c.Next()
	}
}
