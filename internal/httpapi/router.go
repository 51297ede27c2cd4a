package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/handlers"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/middleware"
	"github.com/suPer8Hu/diy-assistant/internal/web"
)

func NewRouter(h *handlers.Handler) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/ping", h.Ping)

	// anonymous chat, keyed by the chat cookie
	chatGroup := r.Group("/")
	chatGroup.Use(middleware.ChatSession(h.Cfg.TranscriptTTL, h.Cfg.CookieSecure))
	chatGroup.GET("/", h.Index)
	chatGroup.POST("/get_response", h.GetResponse)
	chatGroup.POST("/clear_history", h.ClearHistory)
	chatGroup.GET("/get_chat_history", h.GetChatHistory)

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	authGroup := api.Group("/")
	authGroup.Use(middleware.AuthRequired(h.Sessions, h.Cfg.JWTSecret))
	authGroup.GET("/me", h.Me)
	authGroup.POST("/projects", h.CreateProject)
	authGroup.GET("/projects", h.ListProjects)
	authGroup.GET("/projects/:id", h.GetProject)
	authGroup.PUT("/projects/:id", h.UpdateProject)
	authGroup.DELETE("/projects/:id", h.DeleteProject)
	authGroup.PUT("/projects/:id/steps/:stepId", h.UpdateStep)
	authGroup.PUT("/projects/:id/materials/:materialId", h.UpdateMaterial)
	return r, nil
}
