package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

// Recovery turns a handler panic into a 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.FromContext(c.Request.Context()).Error("panic recovered",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				common.InternalError(c)
			}
		}()
		c.Next()
	}
}
