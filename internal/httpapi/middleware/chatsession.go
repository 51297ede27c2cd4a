package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ChatCookie     = "diy_chat"
	ChatSessionKey = "chat_session_id"
)

// ChatSession makes sure every chat request carries an anonymous chat session
// id, issuing a cookie when the client has none.
func ChatSession(maxAge time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ChatCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ChatCookie, id, int(maxAge/time.Second), "/", "", secure, true)
		}
		c.Set(ChatSessionKey, id)
		c.Next()
	}
}

func ChatSessionID(c *gin.Context) string {
	return c.GetString(ChatSessionKey)
}
