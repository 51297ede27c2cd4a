package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/auth"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/middleware"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Register(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.Users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	logging.FromContext(c.Request.Context()).Info("user registered", "user_id", id)
	common.JSON(c, http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": id,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	ctx := c.Request.Context()
	uid, err := h.Users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	sid, err := h.Sessions.New(ctx, uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	token, err := auth.SignJWT(uid, h.Cfg.JWTSecret, h.Cfg.JWTTTL)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, sid, int(h.Cfg.SessionTTL/time.Second), "/", "", h.Cfg.CookieSecure, true)
	common.JSON(c, http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
	})
}

// Logout drops the server-side session. Bearer tokens stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	if sid, err := c.Cookie(middleware.SessionCookie); err == nil && sid != "" {
		if err := h.Sessions.Delete(c.Request.Context(), sid); err != nil {
			h.writeError(c, err)
			return
		}
	}
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.Cfg.CookieSecure, true)
	common.Message(c, http.StatusOK, "Logged out")
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.Users.GetUser(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	common.JSON(c, http.StatusOK, gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"created_at": u.CreatedAt,
	})
}
