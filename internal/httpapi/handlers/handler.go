package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/chat"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/config"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
	"github.com/suPer8Hu/diy-assistant/internal/project"
	"github.com/suPer8Hu/diy-assistant/internal/session"
	"github.com/suPer8Hu/diy-assistant/internal/users"
)

type Handler struct {
	Cfg      config.Config
	Users    *users.Service
	Projects *project.Service
	Chat     *chat.Manager
	Sessions session.Store
}

func NewHandler(cfg config.Config, u *users.Service, p *project.Service, m *chat.Manager, s session.Store) *Handler {
	return &Handler{Cfg: cfg, Users: u, Projects: p, Chat: m, Sessions: s}
}

func (h *Handler) Ping(c *gin.Context) {
	common.Message(c, http.StatusOK, "pong")
}

// writeError maps service errors onto HTTP statuses. Anything unknown is
// logged and reported as a bare 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		common.Fail(c, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, users.ErrDuplicateUsername):
		common.Fail(c, http.StatusBadRequest, "Username already exists")
	case errors.Is(err, users.ErrAuthFailure):
		common.Fail(c, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, project.ErrUnknownOwner):
		// the credential outlived its user
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, project.ErrNotFound), errors.Is(err, users.ErrNotFound):
		common.Fail(c, http.StatusNotFound, "not found")
	default:
		logging.FromContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(),
			"err", err,
		)
		common.InternalError(c)
	}
}

func validationMessage(err error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+common.ErrValidation.Error())
	if msg == "" || msg == err.Error() {
		return "invalid request"
	}
	return msg
}
