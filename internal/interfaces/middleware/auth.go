package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/jroneil/MI-Tool/pkg/constants"
)

// Authenticator resolves a bearer token to the caller's session
type Authenticator interface {
	Authenticate(token string) (*auth.UserSession, error)
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"detail":                message,
		constants.ResponseError: "Unauthorized",
		constants.FieldMessage:  message,
		"code":                  "UNAUTHORIZED",
	})
}

// RequireAuth is a middleware that validates JWT tokens
func RequireAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			unauthorized(c, "Not authenticated")
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(parts[1])

		session, err := authn.Authenticate(token)
		if err != nil {
			unauthorized(c, err.Error())
			return
		}

		c.Set(constants.ContextKeyUser, *session)
		c.Set(constants.ContextKeyToken, token)
		c.Next()
	}
}

// CurrentUser returns the session stored by RequireAuth
func CurrentUser(c *gin.Context) (auth.UserSession, bool) {
	v, ok := c.Get(constants.ContextKeyUser)
	if !ok {
		return auth.UserSession{}, false
	}
	session, ok := v.(auth.UserSession)
	return session, ok
}
