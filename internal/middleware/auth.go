// Package middleware provides the gin middleware chain for link-tracker.
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blix057/afdver-Bot/internal/domain"
	"github.com/blix057/afdver-Bot/internal/identity"
)

// IdentityKey is the gin context key holding the authenticated bot identity.
const IdentityKey = "identity"

const bearerPrefix = "Bearer "

// bearerToken pulls the token out of the Authorization header. ok is false
// when the header is absent or not a bearer credential.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	token, found := strings.CutPrefix(header, bearerPrefix)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// BotAuth authenticates submissions against the configured token set and
// stores the derived identity in the request context. Identity derivation
// only happens for credentials that passed validation.
func BotAuth(registry *identity.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				domain.NewErrorResponse(domain.ErrCodeUnauthenticated, "missing bearer token"))
			return
		}

		id, known := registry.Lookup(token)
		if !known {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				domain.NewErrorResponse(domain.ErrCodeInvalidCredential, "unknown token"))
			return
		}

		c.Set(IdentityKey, id)
		c.Next()
	}
}

// AdminAuth guards operator endpoints with the shared admin secret.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				domain.NewErrorResponse(domain.ErrCodeUnauthenticated, "missing bearer token"))
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				domain.NewErrorResponse(domain.ErrCodeInvalidCredential, "invalid admin credential"))
			return
		}

		c.Next()
	}
}
