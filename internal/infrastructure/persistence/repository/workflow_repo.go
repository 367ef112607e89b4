package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"go.uber.org/zap"
)

// WorkflowRepository implements port.WorkflowRepository over SQLite
type WorkflowRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkflowRepository creates a new workflow repository
func NewWorkflowRepository(db *sql.DB, logger *zap.Logger) port.WorkflowRepository {
	return &WorkflowRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists the instance and all of its steps. The unique constraint
// on request_id backs the one-workflow-per-request invariant even when two
// builders race past the service-level pre-check.
func (r *WorkflowRepository) Create(ctx context.Context, instance *entity.WorkflowInstance, steps []*entity.WorkflowStep) error {
	exec := getExecutor(ctx, r.db)

	query := `
		INSERT INTO workflow_instances (request_id, overall_status, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := exec.ExecContext(ctx, query,
		instance.RequestID,
		instance.OverallStatus,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: request %d", port.ErrDuplicateWorkflow, instance.RequestID)
		}
		r.logger.Error("Failed to create instance", zap.Error(err))
		return fmt.Errorf("failed to create instance: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	instance.ID = id

	stepQuery := `
		INSERT INTO workflow_steps (
			instance_id, step_index, approver_role_id, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, step := range steps {
		step.InstanceID = id

		result, err := exec.ExecContext(ctx, stepQuery,
			step.InstanceID,
			step.StepIndex,
			step.ApproverRoleID,
			step.Status,
			step.CreatedAt,
			step.UpdatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to create step",
				zap.Int64("instance_id", id),
				zap.Int("step_index", step.StepIndex),
				zap.Error(err))
			return fmt.Errorf("failed to create step %d: %w", step.StepIndex, err)
		}

		stepID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get step insert id: %w", err)
		}
		step.ID = stepID
	}

	return nil
}

// GetByID retrieves the instance and its steps ordered by step_index
func (r *WorkflowRepository) GetByID(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error) {
	exec := getExecutor(ctx, r.db)

	query := `
		SELECT id, request_id, overall_status, created_at, updated_at
		FROM workflow_instances
		WHERE id = ?
	`

	var instance entity.WorkflowInstance
	err := exec.QueryRowContext(ctx, query, instanceID).Scan(
		&instance.ID,
		&instance.RequestID,
		&instance.OverallStatus,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, fmt.Errorf("%w: instance %d", port.ErrNotFound, instanceID)
	}
	if err != nil {
		r.logger.Error("Failed to get instance", zap.Int64("id", instanceID), zap.Error(err))
		return nil, nil, fmt.Errorf("failed to get instance: %w", err)
	}

	steps, err := r.listSteps(ctx, exec, instanceID)
	if err != nil {
		return nil, nil, err
	}

	return &instance, steps, nil
}

// GetByRequestID retrieves the instance built for a request
func (r *WorkflowRepository) GetByRequestID(ctx context.Context, requestID int64) (*entity.WorkflowInstance, error) {
	query := `
		SELECT id, request_id, overall_status, created_at, updated_at
		FROM workflow_instances
		WHERE request_id = ?
	`

	var instance entity.WorkflowInstance
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, requestID).Scan(
		&instance.ID,
		&instance.RequestID,
		&instance.OverallStatus,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no instance for request %d", port.ErrNotFound, requestID)
	}
	if err != nil {
		r.logger.Error("Failed to get instance by request",
			zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to get instance by request: %w", err)
	}

	return &instance, nil
}

// UpdateStep persists a step mutation conditioned on the previously
// observed status. Zero affected rows means another writer got there first.
func (r *WorkflowRepository) UpdateStep(ctx context.Context, step *entity.WorkflowStep, expectedStatus string) error {
	query := `
		UPDATE workflow_steps
		SET status = ?, started_at = ?, finished_at = ?,
			approver_id = ?, comments = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		step.Status,
		step.StartedAt,
		step.FinishedAt,
		step.ApproverID,
		step.Comments,
		step.UpdatedAt,
		step.ID,
		expectedStatus,
	)
	if err != nil {
		r.logger.Error("Failed to update step", zap.Int64("id", step.ID), zap.Error(err))
		return fmt.Errorf("failed to update step: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: step %d no longer %s", port.ErrConcurrentModification, step.ID, expectedStatus)
	}

	return nil
}

// UpdateInstanceStatus sets the derived overall status
func (r *WorkflowRepository) UpdateInstanceStatus(ctx context.Context, instanceID int64, status string) error {
	query := `UPDATE workflow_instances SET overall_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query, status, instanceID)
	if err != nil {
		r.logger.Error("Failed to update instance status",
			zap.Int64("id", instanceID),
			zap.String("status", status),
			zap.Error(err))
		return fmt.Errorf("failed to update instance status: %w", err)
	}

	return nil
}

// listSteps loads an instance's steps ordered by step_index
func (r *WorkflowRepository) listSteps(ctx context.Context, exec executor, instanceID int64) ([]*entity.WorkflowStep, error) {
	query := `
		SELECT id, instance_id, step_index, approver_role_id, status,
			started_at, finished_at, approver_id, comments, created_at, updated_at
		FROM workflow_steps
		WHERE instance_id = ?
		ORDER BY step_index ASC
	`

	rows, err := exec.QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to list steps", zap.Int64("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*entity.WorkflowStep
	for rows.Next() {
		var step entity.WorkflowStep
		var startedAt, finishedAt sql.NullTime
		var approverID sql.NullInt64
		var comments sql.NullString

		err := rows.Scan(
			&step.ID,
			&step.InstanceID,
			&step.StepIndex,
			&step.ApproverRoleID,
			&step.Status,
			&startedAt,
			&finishedAt,
			&approverID,
			&comments,
			&step.CreatedAt,
			&step.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}

		if startedAt.Valid {
			step.StartedAt = &startedAt.Time
		}
		if finishedAt.Valid {
			step.FinishedAt = &finishedAt.Time
		}
		if approverID.Valid {
			step.ApproverID = approverID.Int64
		}
		if comments.Valid {
			step.Comments = comments.String
		}

		steps = append(steps, &step)
	}

	return steps, rows.Err()
}

// isUniqueViolation reports whether a sqlite error is a unique constraint hit
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Verify interface compliance
var _ port.WorkflowRepository = (*WorkflowRepository)(nil)
