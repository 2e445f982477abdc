package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"compliancehub/internal/compliance"
)

// TaskRepository handles compliance task rows.
type TaskRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewTaskRepository creates a task repository.
func NewTaskRepository(db *gorm.DB, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// Create inserts a new task, generating its id and deriving initial
// progress from the checklist.
func (r *TaskRepository) Create(ctx context.Context, task *compliance.ComplianceTask) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Progress = compliance.RequiredProgress(task.Documents)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.logger.Error("Failed to create task", zap.String("title", task.Title), zap.Error(err))
		return &compliance.CollaboratorError{Op: "create task", Err: err}
	}
	r.logger.Info("Task created", zap.String("task_id", task.ID))
	return nil
}

// GetByID retrieves a task by id.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*compliance.ComplianceTask, error) {
	var task compliance.ComplianceTask
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &compliance.NotFoundError{Resource: "task", Key: id}
		}
		return nil, &compliance.CollaboratorError{Op: "get task", Err: err}
	}
	return &task, nil
}

// ListByAssignee retrieves the tasks assigned to a user, soonest due first.
func (r *TaskRepository) ListByAssignee(ctx context.Context, userID string) ([]compliance.ComplianceTask, error) {
	var tasks []compliance.ComplianceTask
	err := r.db.WithContext(ctx).Where("assigned_to = ?", userID).Order("due_date").Find(&tasks).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// List retrieves all tasks, soonest due first.
func (r *TaskRepository) List(ctx context.Context) ([]compliance.ComplianceTask, error) {
	var tasks []compliance.ComplianceTask
	err := r.db.WithContext(ctx).Order("due_date").Find(&tasks).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: "list tasks", Err: err}
	}
	return tasks, nil
}

// Save persists a full task snapshot. The snapshot replaces the stored row
// wholesale so a failed write leaves the stored state untouched.
func (r *TaskRepository) Save(ctx context.Context, task *compliance.ComplianceTask) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		r.logger.Error("Failed to save task", zap.String("task_id", task.ID), zap.Error(err))
		return &compliance.CollaboratorError{Op: "save task", Err: err}
	}
	return nil
}

// CountByStatus returns task counts grouped by status.
func (r *TaskRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countByStatus(ctx, r.db, &compliance.ComplianceTask{}, "count tasks")
}

type statusCount struct {
	Status string
	Count  int64
}

func countByStatus(ctx context.Context, db *gorm.DB, model interface{}, op string) (map[string]int64, error) {
	var rows []statusCount
	err := db.WithContext(ctx).Model(model).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, &compliance.CollaboratorError{Op: op, Err: err}
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
