package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/niches-hunter-api/internal/ierr"
	"go.uber.org/zap"
)

const userIDContextKey = "userID"

// TokenParser turns a session token into the id of the user it was issued for.
type TokenParser interface {
	ParseToken(token string) (uuid.UUID, error)
}

// SessionMiddleware requires a valid session cookie.
func SessionMiddleware(parser TokenParser, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("SessionMiddleware")
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			log.Debug("Session cookie is missing")
			_ = c.Error(fmt.Errorf("%w: session required", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		userID, err := parser.ParseToken(token)
		if err != nil {
			log.Debug("Session token rejected", zap.Error(err))
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// OptionalSessionMiddleware resolves the session when present and never rejects.
func OptionalSessionMiddleware(parser TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			if userID, err := parser.ParseToken(token); err == nil {
				c.Set(userIDContextKey, userID)
			}
		}
		c.Next()
	}
}

// GetUserID returns the session user, or uuid.Nil for anonymous requests.
func GetUserID(c *gin.Context) uuid.UUID {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		return uuid.Nil
	}
	id, ok := value.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
