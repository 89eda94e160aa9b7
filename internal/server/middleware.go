package server

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sableworks/guildgate/internal/observability/obscontext"
	"github.com/sableworks/guildgate/internal/verification/domain"
)

const sessionIdentityKey = "session_identity"

// RequireSession gates API routes behind a verified web session.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := s.sessions.Get(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(sessionIdentityKey, identity)
		ctx := obscontext.WithUserID(c.Request.Context(), strconv.FormatInt(identity.UserID, 10))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SessionIdentity returns the identity stored by RequireSession.
func SessionIdentity(c *gin.Context) (domain.Identity, bool) {
	value, exists := c.Get(sessionIdentityKey)
	if !exists {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

// RateLimitCallback throttles the OAuth callback per client address.
func (s *Server) RateLimitCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.callbackLimiter.Allow(c.Request.Context(), c.ClientIP()) {
			AbortWithError(c, ErrTooManyRequest)
			return
		}
		c.Next()
	}
}
