package middleware

import (
	"strings"

	apperrors "storefront-service/errors"

	"github.com/gin-gonic/gin"
)

const (
	UserContextKey = "userID"
	TokenCookie    = "token"
)

// TokenValidator resolves an access token to the user id it was issued for.
type TokenValidator interface {
	ValidateToken(tokenStr string) (string, error)
}

// Auth requires a valid access token from the Authorization header
// ("Bearer <jwt>" or the bare token) or the token cookie.
func Auth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Error(apperrors.Unauthorized("Access denied"))
			c.Abort()
			return
		}

		userID, err := tokens.ValidateToken(token)
		if err != nil {
			c.Error(apperrors.InvalidToken("Token not valid", err))
			c.Abort()
			return
		}

		c.Set(UserContextKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(rest)
		}
		return header
	}
	if v, err := c.Cookie(TokenCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}
