package compliance

import (
	"time"
)

// Role identifies the dashboard a profile is allowed into.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// Task statuses
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"
	TaskStatusOverdue    = "overdue"
)

// Priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Policy statuses
const (
	PolicyStatusActive  = "active"
	PolicyStatusPending = "pending"
	PolicyStatusExpired = "expired"
)

// Acknowledgement is the three-state acknowledgement of a policy. A policy
// that never required acknowledgement stays AckNotRequired; one that does
// starts at AckPending and moves to AckAcknowledged exactly once.
type Acknowledgement string

const (
	AckNotRequired  Acknowledgement = "not_required"
	AckPending      Acknowledgement = "pending"
	AckAcknowledged Acknowledgement = "acknowledged"
)

// Report statuses
const (
	ReportStatusPending       = "pending"
	ReportStatusInvestigating = "investigating"
	ReportStatusResolved      = "resolved"
)

// Profile represents a registered dashboard user.
type Profile struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"full_name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null;default:'employee'"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Document is one entry in a task's checklist. It has no identity outside
// its parent task; Name is unique within the task.
type Document struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Uploaded bool   `json:"uploaded"`
}

// ComplianceTask represents a unit of required employee action tied to a due
// date and a checklist of supporting documents. Progress is always derived
// from the checklist, never set directly.
type ComplianceTask struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     time.Time  `json:"due_date"`
	Status      string     `json:"status" gorm:"not null;default:'pending'"`
	Priority    string     `json:"priority" gorm:"not null;default:'medium'"`
	Category    string     `json:"category"`
	Progress    int        `json:"progress"`
	AssignedTo  string     `json:"assigned_to" gorm:"index"`
	PolicyID    *string    `json:"policy_id"`
	Documents   []Document `json:"documents" gorm:"serializer:json"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Policy represents a distributed company policy.
type Policy struct {
	ID              string          `json:"id" gorm:"primaryKey"`
	Title           string          `json:"title" gorm:"not null"`
	Category        string          `json:"category" gorm:"index"`
	Description     string          `json:"description"`
	Content         string          `json:"content"`
	Status          string          `json:"status" gorm:"not null;default:'pending'"`
	EffectiveDate   time.Time       `json:"effective_date"`
	Acknowledgement Acknowledgement `json:"acknowledgement" gorm:"not null;default:'not_required'"`
	CreatedBy       string          `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ActionRequired reports whether the policy needs an acknowledgement badge:
// active and required but not yet acknowledged.
func (p Policy) ActionRequired() bool {
	return p.Status == PolicyStatusActive && p.Acknowledgement == AckPending
}

// Report represents an anonymous whistleblowing report. TrackingID is the
// only reference ever shown outside; it is generated independently of ID so
// neither can be derived from the other.
type Report struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"not null"`
	Category      string    `json:"category" gorm:"index"`
	Description   string    `json:"description"`
	Status        string    `json:"status" gorm:"not null;default:'pending'"`
	StatusMessage string    `json:"status_message"`
	Priority      string    `json:"priority" gorm:"not null;default:'medium'"`
	AssignedTo    string    `json:"assigned_to"`
	TrackingID    string    `json:"tracking_id" gorm:"uniqueIndex;not null"`
	EvidenceURLs  []string  `json:"evidence_urls" gorm:"serializer:json"`
	DateSubmitted time.Time `json:"date_submitted"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
