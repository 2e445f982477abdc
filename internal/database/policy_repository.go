package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compliancehub/internal/compliance"
)

// PolicyRepository handles policy rows.
type PolicyRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPolicyRepository creates a policy repository.
func NewPolicyRepository(db *gorm.DB, logger *zap.Logger) *PolicyRepository {
	return &PolicyRepository{db: db, logger: logger}
}

// Create inserts a new policy, generating its id.
func (r *PolicyRepository) Create(ctx context.Context, policy *compliance.Policy) error {
	if policy.ID == "" {
		policy.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(policy).Error; err != nil {
		r.logger.Error("Failed to create policy", zap.String("title", policy.Title), zap.Error(err))
		return &compliance.CollaboratorError{Op: "create policy", Err: err}
	}
	r.logger.Info("Policy created", zap.String("policy_id", policy.ID))
	return nil
}

// GetByID retrieves a policy by id.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*compliance.Policy, error) {
	var policy compliance.Policy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "policy", Key: id}
		}
		return nil, &compliance.CollaboratorError{Op: "get policy", Err: err}
	}
	return &policy, nil
}

// List retrieves all policies in insertion order.
func (r *PolicyRepository) List(ctx context.Context) ([]compliance.Policy, error) {
	var policies []compliance.Policy
	err := r.db.WithContext(ctx).Order("created_at").Find(&policies).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: "list policies", Err: err}
	}
	return policies, nil
}

// Save persists a full policy snapshot.
func (r *PolicyRepository) Save(ctx context.Context, policy *compliance.Policy) error {
	if err := r.db.WithContext(ctx).Save(policy).Error; err != nil {
		r.logger.Error("Failed to save policy", zap.String("policy_id", policy.ID), zap.Error(err))
		return &compliance.CollaboratorError{Op: "save policy", Err: err}
	}
	return nil
}

// Delete removes a policy.
func (r *PolicyRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&compliance.Policy{}, "id = ?", id)
	if result.Error != nil {
		return &compliance.CollaboratorError{Op: "delete policy", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &compliance.NotFoundError{Resource: "policy", Key: id}
	}
	r.logger.Info("Policy deleted", zap.String("policy_id", id))
	return nil
}

// CountByStatus returns policy counts grouped by status.
func (r *PolicyRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.db, &compliance.Policy{}, "count policies")
}
