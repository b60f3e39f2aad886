package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/rs/zerolog/log"
)

const sessionKey = "session"

// Authenticate resolves the session for every request. Anonymous requests pass
// through; an invalid token is rejected.
func Authenticate(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := resolver.Resolve(c.Request)
		if errors.Is(err, auth.ErrInvalidToken) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if err != nil {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("❌ session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve session"})
			return
		}
		if sess != nil {
			c.Set(sessionKey, sess)
		}
		c.Next()
	}
}

// Session returns the request's session or nil.
func Session(c *gin.Context) *auth.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*auth.Session)
	return sess
}

func RequireSession(c *gin.Context) {
	if Session(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrAuthenticationRequired.Error()})
		return
	}
	c.Next()
}

func RequireAdmin(c *gin.Context) {
	sess := Session(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrAuthenticationRequired.Error()})
		return
	}
	if !sess.IsAdmin() {
		log.Warn().Str("user_id", sess.UserID).Str("path", c.FullPath()).Msg("non-admin hit admin route")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": auth.ErrForbidden.Error()})
		return
	}
	c.Next()
}
