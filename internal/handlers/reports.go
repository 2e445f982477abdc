package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
	"compliancehub/internal/query"
	"compliancehub/internal/realtime"
)

const initialReportMessage = "Your report has been received and is pending review by our compliance team."

// SubmitReportRequest is the anonymous submission payload. No identifying
// fields are accepted.
type SubmitReportRequest struct {
	Title        string   `json:"title" binding:"required"`
	Category     string   `json:"category" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Priority     string   `json:"priority" binding:"omitempty,oneof=low medium high"`
	EvidenceURLs []string `json:"evidence_urls"`
}

// TrackRequest is the anonymous status lookup payload.
type TrackRequest struct {
	TrackingID string `json:"tracking_id"`
}

// UpdateReportStatusRequest is the payload for moving a report through its
// lifecycle.
type UpdateReportStatusRequest struct {
	Status        string `json:"status" binding:"required,oneof=pending investigating resolved"`
	StatusMessage string `json:"status_message" binding:"required"`
	AssignedTo    string `json:"assigned_to"`
}

// SubmitReport accepts an anonymous whistleblowing report and returns the
// tracking ID, the only handle the reporter ever gets.
func (h *Handler) SubmitReport(c *gin.Context) {
	var req SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trackingID, err := h.newTrackingID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = compliance.PriorityMedium
	}

	report := compliance.Report{
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		Status:        compliance.ReportStatusPending,
		StatusMessage: initialReportMessage,
		Priority:      priority,
		TrackingID:    trackingID,
		EvidenceURLs:  req.EvidenceURLs,
		DateSubmitted: time.Now(),
	}
	if err := h.reports.Create(c.Request.Context(), &report); err != nil {
		h.respondError(c, err)
		return
	}

	// Audit with no actor: the submission is anonymous and the client IP
	// is deliberately not recorded.
	h.audit.LogEvent(c.Request.Context(), audit.EventReportSubmitted, "",
		report.ID, "report", "submit", "", map[string]interface{}{
			"category": report.Category,
		})
	h.hub.Publish(c.Request.Context(), realtime.ActivityEvent{
		ID:         realtime.NewEventID(),
		Type:       audit.EventReportSubmitted,
		EntityID:   report.ID,
		EntityType: "report",
		Title:      report.Title,
	})

	c.JSON(http.StatusCreated, gin.H{
		"tracking_id": report.TrackingID,
		"message":     "Report submitted. Save your tracking ID; it cannot be recovered.",
	})
}

// newTrackingID generates a fresh WB-prefixed tracking ID, retrying on the
// unlikely collision with an existing one.
func (h *Handler) newTrackingID(c *gin.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return "", &compliance.CollaboratorError{Op: "generate tracking id", Err: err}
		}
		raw := strings.ToUpper(hex.EncodeToString(buf))
		id := fmt.Sprintf("WB-%s-%s", raw[:4], raw[4:])

		exists, err := h.reports.TrackingIDExists(c.Request.Context(), id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", &compliance.CollaboratorError{
		Op:  "generate tracking id",
		Err: fmt.Errorf("exhausted attempts"),
	}
}

// TrackReport resolves a tracking ID to the public status record. The
// endpoint is anonymous and reveals nothing beyond the record itself.
func (h *Handler) TrackReport(c *gin.Context) {
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.tracker.Lookup(c.Request.Context(), req.TrackingID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListReports returns the report collection filtered and sorted by the
// request's query spec.
func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	spec := querySpec(c)
	result := query.Apply(reports, spec, compliance.ReportFields())

	c.JSON(http.StatusOK, gin.H{
		"reports": result,
		"total":   len(result),
	})
}

// GetReport returns one report.
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReportStatus moves a report through its lifecycle and records the
// message shown to the anonymous reporter on their next lookup.
func (h *Handler) UpdateReportStatus(c *gin.Context) {
	var req UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	report.Status = req.Status
	report.StatusMessage = req.StatusMessage
	if req.AssignedTo != "" {
		report.AssignedTo = req.AssignedTo
	}
	if err := h.reports.Save(c.Request.Context(), report); err != nil {
		h.respondError(c, err)
		return
	}

	// Drop the cached tracker record so the reporter's next lookup sees
	// this update, not a stale entry waiting out its TTL.
	h.tracker.Invalidate(c.Request.Context(), report.TrackingID)

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventReportUpdated, session.UserID,
		report.ID, "report", "update_status", c.ClientIP(),
		map[string]interface{}{"status": report.Status})
	h.hub.Publish(c.Request.Context(), realtime.ActivityEvent{
		ID:         realtime.NewEventID(),
		Type:       audit.EventReportUpdated,
		Actor:      session.UserID,
		EntityID:   report.ID,
		EntityType: "report",
		Title:      report.Title,
	})

	c.JSON(http.StatusOK, report)
}

// Overview returns the status breakdowns behind the admin dashboard cards.
func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()

	taskCounts, err := h.tasks.CountByStatus(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	policyCounts, err := h.policies.CountByStatus(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	reportCounts, err := h.reports.CountByStatus(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":    taskCounts,
		"policies": policyCounts,
		"reports":  reportCounts,
	})
}

// RecentActivities returns the latest audit entries for the activity panel.
func (h *Handler) RecentActivities(c *gin.Context) {
	entries, err := h.audit.Recent(c.Request.Context(), 50)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}
