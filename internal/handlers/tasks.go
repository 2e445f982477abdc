package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
	"compliancehub/internal/realtime"
)

// CreateTaskRequest is the payload for creating a compliance task.
type CreateTaskRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	DueDate     time.Time             `json:"due_date" binding:"required"`
	Priority    string                `json:"priority" binding:"required,oneof=low medium high"`
	Category    string                `json:"category"`
	AssignedTo  string                `json:"assigned_to" binding:"required"`
	PolicyID    *string               `json:"policy_id"`
	Documents   []compliance.Document `json:"documents"`
}

// ToggleDocumentRequest is the payload for a checklist toggle.
type ToggleDocumentRequest struct {
	Name     string `json:"name" binding:"required"`
	Uploaded *bool  `json:"uploaded" binding:"required"`
}

// ListTasks returns the caller's tasks; admins see every task.
func (h *Handler) ListTasks(c *gin.Context) {
	session := auth.SessionFrom(c)

	var (
		tasks []compliance.ComplianceTask
		err   error
	)
	if session.Role == compliance.RoleAdmin {
		tasks, err = h.tasks.List(c.Request.Context())
	} else {
		tasks, err = h.tasks.ListByAssignee(c.Request.Context(), session.UserID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": tasks,
		"total": len(tasks),
	})
}

// GetTask returns one task.
func (h *Handler) GetTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a compliance task with its document checklist.
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := compliance.ValidateDocuments(req.Documents); err != nil {
		h.respondError(c, err)
		return
	}

	task := compliance.ComplianceTask{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      compliance.TaskStatusPending,
		Priority:    req.Priority,
		Category:    req.Category,
		AssignedTo:  req.AssignedTo,
		PolicyID:    req.PolicyID,
		Documents:   req.Documents,
	}
	if err := h.tasks.Create(c.Request.Context(), &task); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// ToggleDocument flips one checklist entry and persists the recomputed
// snapshot. The update is all-or-nothing: a failed save leaves the stored
// task untouched.
func (h *Handler) ToggleDocument(c *gin.Context) {
	var req ToggleDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := compliance.ToggleDocument(*task, req.Name, *req.Uploaded)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.tasks.Save(c.Request.Context(), &updated); err != nil {
		h.respondError(c, err)
		return
	}

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventDocumentToggled, session.UserID,
		updated.ID, "task", "toggle_document", c.ClientIP(),
		map[string]interface{}{
			"document": req.Name,
			"uploaded": *req.Uploaded,
			"progress": updated.Progress,
		})

	c.JSON(http.StatusOK, updated)
}

// SubmitTask finalizes a task at 100% progress. Below that the submission
// is rejected and the stored status stays untouched.
func (h *Handler) SubmitTask(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	submitted, err := compliance.SubmitTask(*task)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.tasks.Save(c.Request.Context(), &submitted); err != nil {
		h.respondError(c, err)
		return
	}

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventTaskSubmitted, session.UserID,
		submitted.ID, "task", "submit", c.ClientIP(), nil)
	h.hub.Publish(c.Request.Context(), realtime.ActivityEvent{
		ID:         realtime.NewEventID(),
		Type:       audit.EventTaskSubmitted,
		Actor:      session.UserID,
		EntityID:   submitted.ID,
		EntityType: "task",
		Title:      submitted.Title,
	})

	c.JSON(http.StatusOK, submitted)
}
