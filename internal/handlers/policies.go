package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"compliancehub/internal/audit"
	"compliancehub/internal/auth"
	"compliancehub/internal/compliance"
	"compliancehub/internal/query"
	"compliancehub/internal/realtime"
)

// PolicyRequest is the payload for creating or updating a policy.
type PolicyRequest struct {
	Title                   string    `json:"title" binding:"required"`
	Category                string    `json:"category" binding:"required"`
	Description             string    `json:"description"`
	Content                 string    `json:"content"`
	Status                  string    `json:"status" binding:"required,oneof=active pending expired"`
	EffectiveDate           time.Time `json:"effective_date" binding:"required"`
	AcknowledgementRequired bool      `json:"acknowledgement_required"`
}

// ListPolicies returns the policy collection filtered and sorted by the
// request's query spec.
func (h *Handler) ListPolicies(c *gin.Context) {
	policies, err := h.policies.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	spec := querySpec(c)
	result := query.Apply(policies, spec, compliance.PolicyFields())

	c.JSON(http.StatusOK, gin.H{
		"policies": result,
		"total":    len(result),
	})
}

// GetPolicy returns one policy.
func (h *Handler) GetPolicy(c *gin.Context) {
	policy, err := h.policies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

// CreatePolicy creates a policy.
func (h *Handler) CreatePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := auth.SessionFrom(c)
	ack := compliance.AckNotRequired
	if req.AcknowledgementRequired {
		ack = compliance.AckPending
	}

	policy := compliance.Policy{
		Title:           req.Title,
		Category:        req.Category,
		Description:     req.Description,
		Content:         req.Content,
		Status:          req.Status,
		EffectiveDate:   req.EffectiveDate,
		Acknowledgement: ack,
		CreatedBy:       session.UserID,
	}
	if err := h.policies.Create(c.Request.Context(), &policy); err != nil {
		h.respondError(c, err)
		return
	}

	h.audit.LogEvent(c.Request.Context(), audit.EventPolicyCreated, session.UserID,
		policy.ID, "policy", "create", c.ClientIP(),
		map[string]interface{}{"title": policy.Title})

	c.JSON(http.StatusCreated, policy)
}

// UpdatePolicy replaces a policy's editable fields.
func (h *Handler) UpdatePolicy(c *gin.Context) {
	var req PolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.policies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	policy.Title = req.Title
	policy.Category = req.Category
	policy.Description = req.Description
	policy.Content = req.Content
	policy.Status = req.Status
	policy.EffectiveDate = req.EffectiveDate
	if req.AcknowledgementRequired && policy.Acknowledgement == compliance.AckNotRequired {
		policy.Acknowledgement = compliance.AckPending
	} else if !req.AcknowledgementRequired {
		policy.Acknowledgement = compliance.AckNotRequired
	}

	if err := h.policies.Save(c.Request.Context(), policy); err != nil {
		h.respondError(c, err)
		return
	}

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventPolicyUpdated, session.UserID,
		policy.ID, "policy", "update", c.ClientIP(),
		map[string]interface{}{"title": policy.Title})

	c.JSON(http.StatusOK, policy)
}

// DeletePolicy removes a policy.
func (h *Handler) DeletePolicy(c *gin.Context) {
	id := c.Param("id")
	if err := h.policies.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventPolicyDeleted, session.UserID,
		id, "policy", "delete", c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "policy deleted"})
}

// AcknowledgePolicy records the caller's acknowledgement of an active
// policy that requires one.
func (h *Handler) AcknowledgePolicy(c *gin.Context) {
	policy, err := h.policies.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if policy.Acknowledgement == compliance.AckNotRequired {
		h.respondError(c, &compliance.ValidationError{
			Field:   "policy",
			Message: "policy does not require acknowledgement",
		})
		return
	}
	if policy.Acknowledgement == compliance.AckAcknowledged {
		c.JSON(http.StatusOK, policy)
		return
	}

	policy.Acknowledgement = compliance.AckAcknowledged
	if err := h.policies.Save(c.Request.Context(), policy); err != nil {
		h.respondError(c, err)
		return
	}

	session := auth.SessionFrom(c)
	h.audit.LogEvent(c.Request.Context(), audit.EventPolicyAcknowledged, session.UserID,
		policy.ID, "policy", "acknowledge", c.ClientIP(), nil)
	h.hub.Publish(c.Request.Context(), realtime.ActivityEvent{
		ID:         realtime.NewEventID(),
		Type:       audit.EventPolicyAcknowledged,
		Actor:      session.UserID,
		EntityID:   policy.ID,
		EntityType: "policy",
		Title:      policy.Title,
	})

	c.JSON(http.StatusOK, policy)
}
