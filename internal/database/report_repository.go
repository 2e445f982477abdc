package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compliancehub/internal/compliance"
	"compliancehub/internal/tracking"
)

// ReportRepository handles whistleblowing report rows. It also implements
// tracking.Directory for the anonymous tracker.
type ReportRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReportRepository creates a report repository.
func NewReportRepository(db *gorm.DB, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, logger: logger}
}

// Create inserts a new report, generating its internal id. The tracking ID
// must already be set by the caller; it is never derived from the row id.
func (r *ReportRepository) Create(ctx context.Context, report *compliance.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		r.logger.Error("Failed to create report", zap.String("tracking_id", report.TrackingID), zap.Error(err))
		return &compliance.CollaboratorError{Op: "create report", Err: err}
	}
	r.logger.Info("Report created", zap.String("report_id", report.ID))
	return nil
}

// GetByID retrieves a report by its internal id.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*compliance.Report, error) {
	var report compliance.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "report", Key: id}
		}
		return nil, &compliance.CollaboratorError{Op: "get report", Err: err}
	}
	return &report, nil
}

// List retrieves all reports, newest first.
func (r *ReportRepository) List(ctx context.Context) ([]compliance.Report, error) {
	var reports []compliance.Report
	err := r.db.WithContext(ctx).Order("date_submitted desc").Find(&reports).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: "list reports", Err: err}
	}
	return reports, nil
}

// Save persists a full report snapshot.
func (r *ReportRepository) Save(ctx context.Context, report *compliance.Report) error {
	if err := r.db.WithContext(ctx).Save(report).Error; err != nil {
		r.logger.Error("Failed to save report", zap.String("report_id", report.ID), zap.Error(err))
		return &compliance.CollaboratorError{Op: "save report", Err: err}
	}
	return nil
}

// TrackingIDExists reports whether a tracking ID is already taken.
func (r *ReportRepository) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&compliance.Report{}).
		Where("tracking_id = ?", trackingID).Count(&count).Error
	if err != nil {
		return false, &compliance.CollaboratorError{Op: "check tracking id", Err: err}
	}
	return count > 0, nil
}

// FindByTrackingID resolves a tracking ID to its anonymity-safe status
// record. Matching is case-sensitive exact equality on the tracking ID
// column, never the internal id.
func (r *ReportRepository) FindByTrackingID(ctx context.Context, trackingID string) (*tracking.StatusRecord, error) {
	var report compliance.Report
	err := r.db.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "report", Key: trackingID}
		}
		return nil, &compliance.CollaboratorError{Op: "find report by tracking id", Err: err}
	}

	return &tracking.StatusRecord{
		TrackingID:    report.TrackingID,
		Title:         report.Title,
		Status:        report.Status,
		DateSubmitted: report.DateSubmitted,
		LastUpdated:   report.UpdatedAt,
		Message:       report.StatusMessage,
	}, nil
}

// CountByStatus returns report counts grouped by status.
func (r *ReportRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.db, &compliance.Report{}, "count reports")
}
