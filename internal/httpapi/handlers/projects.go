package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/diy-assistant/internal/common"
	"github.com/suPer8Hu/diy-assistant/internal/httpapi/middleware"
	"github.com/suPer8Hu/diy-assistant/internal/project"
)

type createProjectReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type statusReq struct {
	Status string `json:"status"`
}

type materialReq struct {
	Status   string  `json:"status"`
	Quantity *string `json:"quantity"`
}

type projectListItem struct {
	ID             uint64 `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
	Progress       string `json:"progress"`
	CompletedSteps int    `json:"completed_steps"`
	TotalSteps     int    `json:"total_steps"`
}

const timeLayout = "2006-01-02 15:04:05"

// idParam parses a positive integer path parameter. Anything else names no
// resource and is answered like a missing one.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		common.Fail(c, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) currentUser(c *gin.Context) (uint64, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
	}
	return uid, ok
}

func (h *Handler) CreateProject(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req createProjectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	id, err := h.Projects.CreateProject(c.Request.Context(), uid, req.Title, req.Description)
	if err != nil {
		h.writeError(c, err)
		return
	}
	common.JSON(c, http.StatusCreated, gin.H{
		"message":    "Project created successfully",
		"project_id": id,
	})
}

func (h *Handler) ListProjects(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	list, err := h.Projects.ListProjects(c.Request.Context(), uid)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]projectListItem, 0, len(list))
	for _, p := range list {
		out = append(out, projectListItem{
			ID:             p.ID,
			Title:          p.Title,
			Description:    p.Description,
			Status:         string(p.Status),
			CreatedAt:      p.CreatedAt.Format(timeLayout),
			Progress:       p.Progress(),
			CompletedSteps: p.CompletedSteps,
			TotalSteps:     p.TotalSteps,
		})
	}
	common.JSON(c, http.StatusOK, out)
}

func (h *Handler) GetProject(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}

	d, err := h.Projects.GetProjectDetail(c.Request.Context(), uid, pid)
	if err != nil {
		h.writeError(c, err)
		return
	}
	common.JSON(c, http.StatusOK, gin.H{
		"id":          d.ID,
		"title":       d.Title,
		"description": d.Description,
		"status":      d.Status,
		"created_at":  d.CreatedAt.Format(timeLayout),
		"updated_at":  d.UpdatedAt.Format(timeLayout),
		"steps":       d.Steps,
		"materials":   d.Materials,
	})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.Projects.UpdateProjectStatus(c.Request.Context(), uid, pid, project.Status(req.Status)); err != nil {
		h.writeError(c, err)
		return
	}
	common.Message(c, http.StatusOK, "Project updated successfully")
}

func (h *Handler) DeleteProject(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Projects.DeleteProject(c.Request.Context(), uid, pid); err != nil {
		h.writeError(c, err)
		return
	}
	common.Message(c, http.StatusOK, "Project deleted successfully")
}

func (h *Handler) UpdateStep(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	sid, ok := idParam(c, "stepId")
	if !ok {
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.Projects.UpdateStepStatus(c.Request.Context(), uid, pid, sid, project.StepStatus(req.Status)); err != nil {
		h.writeError(c, err)
		return
	}
	common.Message(c, http.StatusOK, "Step updated successfully")
}

func (h *Handler) UpdateMaterial(c *gin.Context) {
	uid, ok := h.currentUser(c)
	if !ok {
		return
	}
	pid, ok := idParam(c, "id")
	if !ok {
		return
	}
	mid, ok := idParam(c, "materialId")
	if !ok {
		return
	}
	var req materialReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	err := h.Projects.UpdateMaterialStatus(c.Request.Context(), uid, pid, mid, project.MaterialStatus(req.Status), req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}
	common.Message(c, http.StatusOK, "Material updated successfully")
}
