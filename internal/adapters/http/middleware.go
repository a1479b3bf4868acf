package http

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const clientTokenKey = "client_token"

// ClientToken gives every browser a stable opaque token in its session
// cookie. It identifies a client across page reloads, unlike the
// ConnectionID which dies with the socket.
func ClientToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if token, ok := session.Get(clientTokenKey).(string); ok && token != "" {
			c.Set(clientTokenKey, token)
			c.Next()
			return
		}
		token := uuid.NewString()
		session.Set(clientTokenKey, token)
		if err := session.Save(); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("session save")
		}
		c.Set(clientTokenKey, token)
		c.Next()
	}
}
