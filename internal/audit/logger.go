// Package audit records who did what on the dashboard. Entries feed the
// admin activity views and are kept even when the triggering request fails
// later, so a write failure here is logged but never fails the request.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compliancehub/internal/compliance"
)

// Entry is one audit trail row.
type Entry struct {
	ID         string                 `json:"id" gorm:"primaryKey"`
	EventType  string                 `json:"event_type" gorm:"index;not null"`
	UserID     string                 `json:"user_id" gorm:"index"`
	EntityID   string                 `json:"entity_id"`
	EntityType string                 `json:"entity_type"`
	Action     string                 `json:"action" gorm:"not null"`
	Details    map[string]interface{} `json:"details" gorm:"serializer:json"`
	IPAddress  string                 `json:"ip_address"`
	CreatedAt  time.Time              `json:"created_at" gorm:"index"`
}

// Event types recorded by the dashboard.
const (
	EventLogin              = "login"
	EventRegistration       = "registration"
	EventPolicyCreated      = "policy_created"
	EventPolicyUpdated      = "policy_updated"
	EventPolicyDeleted      = "policy_deleted"
	EventPolicyAcknowledged = "policy_acknowledged"
	EventDocumentToggled    = "document_toggled"
	EventTaskSubmitted      = "task_submitted"
	EventReportSubmitted    = "report_submitted"
	EventReportUpdated      = "report_updated"
)

// Logger persists audit entries and mirrors them to the structured log.
type Logger struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewLogger creates an audit logger.
func NewLogger(db *gorm.DB, logger *zap.Logger) *Logger {
	return &Logger{db: db, logger: logger}
}

// LogEvent records an audit event. Persistence failures are reported to the
// structured log only.
func (l *Logger) LogEvent(ctx context.Context, eventType, userID, entityID, entityType, action, ipAddress string, details map[string]interface{}) {
	entry := Entry{
		ID:         uuid.NewString(),
		EventType:  eventType,
		UserID:     userID,
		EntityID:   entityID,
		EntityType: entityType,
		Action:     action,
		Details:    details,
		IPAddress:  ipAddress,
		CreatedAt:  time.Now(),
	}

	if err := l.db.WithContext(ctx).Create(&entry).Error; err != nil {
		l.logger.Error("Failed to persist audit entry",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	l.logger.Info("Audit event",
		zap.String("event_type", eventType),
		zap.String("user_id", userID),
		zap.String("entity_id", entityID),
		zap.String("action", action))
}

// Recent returns the newest entries for the dashboard activity feed.
func (l *Logger) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := l.db.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: "list audit entries", Err: err}
	}
	return entries, nil
}
