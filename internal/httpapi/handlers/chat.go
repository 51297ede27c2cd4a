package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/chat"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/middleware"
	"github.com/suPer8Hu/diy-assistant/internal/logging"
)

type sendMessageReq struct {
	Message string `json:"message"`
}

type turnResp struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// Index renders the chat page.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "DIY Home Improvement Assistant"})
}

// GetResponse always answers 200: completer failures are absorbed by the
// chat manager and a failed snapshot is only logged.
func (h *Handler) GetResponse(c *gin.Context) {
	var req sendMessageReq
	_ = c.ShouldBindJSON(&req) // an empty body is an empty message

	ctx := c.Request.Context()
	sid := middleware.ChatSessionID(c)
	reply, err := h.Chat.Converse(ctx, sid, req.Message)
	if err != nil {
		logging.FromContext(ctx).Error("chat persistence failed", "session_id", sid, "err", err)
		if reply == "" {
			reply = h.Chat.FallbackReply(req.Message)
		}
	}
	common.JSON(c, http.StatusOK, gin.H{"response": reply})
}

func (h *Handler) ClearHistory(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.ChatSessionID(c)
	if err := h.Chat.Clear(ctx, sid); err != nil {
		logging.FromContext(ctx).Error("chat clear failed", "session_id", sid, "err", err)
	}
	common.JSON(c, http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetChatHistory(c *gin.Context) {
	ctx := c.Request.Context()
	sid := middleware.ChatSessionID(c)
	turns, err := h.Chat.History(ctx, sid)
	if err != nil {
		logging.FromContext(ctx).Error("chat history failed", "session_id", sid, "err", err)
		turns = nil
	}
	common.JSON(c, http.StatusOK, toTurnResp(turns))
}

func toTurnResp(turns []chat.Turn) []turnResp {
	out := make([]turnResp, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResp{
			Role:      t.Role,
			Content:   t.Content,
			Timestamp: t.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}
