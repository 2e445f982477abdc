package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compliancehub/internal/compliance"
)

// ProfileRepository handles profile rows.
type ProfileRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewProfileRepository creates a profile repository.
func NewProfileRepository(db *gorm.DB, logger *zap.Logger) *ProfileRepository {
	return &ProfileRepository{db: db, logger: logger}
}

// Create inserts a new profile, generating its id.
func (r *ProfileRepository) Create(ctx context.Context, profile *compliance.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		r.logger.Error("Failed to create profile", zap.String("email", profile.Email), zap.Error(err))
		return &compliance.CollaboratorError{Op: "create profile", Err: err}
	}
	return nil
}

// GetByEmail retrieves a profile by email.
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*compliance.Profile, error) {
	var profile compliance.Profile
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "profile", Key: email}
		}
		return nil, &compliance.CollaboratorError{Op: "get profile by email", Err: err}
	}
	return &profile, nil
}

// GetByID retrieves a profile by id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*compliance.Profile, error) {
	var profile compliance.Profile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "profile", Key: id}
		}
		return nil, &compliance.CollaboratorError{Op: "get profile by id", Err: err}
	}
	return &profile, nil
}

// EmailExists reports whether an email is already registered.
func (r *ProfileRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&compliance.Profile{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, &compliance.CollaboratorError{Op: "check profile email", Err: err}
	}
	return count > 0, nil
}
