package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AdminRequired gates the admin surface with a bearer token. The hashed
// form is preferred; the plaintext form is only honored outside production.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if s.cfg.AdminTokenHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminTokenHash), []byte(token)); err != nil {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			c.Next()
			return
		}

		if s.cfg.AdminToken != "" && !s.cfg.IsProduction() {
			if subtle.ConstantTimeCompare([]byte(s.cfg.AdminToken), []byte(token)) != 1 {
				AbortWithError(c, ErrUnauthorized)
				return
			}
			c.Next()
			return
		}

		AbortWithError(c, ErrUnauthorized)
	}
}
