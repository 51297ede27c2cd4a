package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/auth"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
	"github.com/suPer8Hu/diy-assistant/internal/session"
)

const (
	UserIDKey     = "user_id"
	SessionCookie = "diy_session"
)

// AuthRequired accepts either a "Bearer" JWT or the login session cookie.
func AuthRequired(sessions session.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h := c.GetHeader("Authorization"); h != "" {
			token, ok := strings.CutPrefix(h, "Bearer ")
			if !ok {
				common.Fail(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			uid, err := auth.ParseJWT(strings.TrimSpace(token), jwtSecret)
			if err != nil {
				common.Fail(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			c.Set(UserIDKey, uid)
			c.Next()
			return
		}

		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			common.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		uid, ok, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("session lookup failed", "err", err)
			common.InternalError(c)
			return
		}
		if !ok {
			common.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

func UserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
