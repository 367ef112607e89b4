package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"go.uber.org/zap"
)

// AuditRepository implements port.AuditRepository over SQLite
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an immutable audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (
			instance_id, step_id, actor_id, actor_role_id, action,
			previous_status, new_status, comments, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entry.InstanceID,
		entry.StepID,
		entry.ActorID,
		entry.ActorRoleID,
		entry.Action,
		entry.PreviousStatus,
		entry.NewStatus,
		entry.Comments,
		entry.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create audit entry",
			zap.Int64("instance_id", entry.InstanceID), zap.Error(err))
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// ListByInstanceID returns an instance's audit trail in insertion order
func (r *AuditRepository) ListByInstanceID(ctx context.Context, instanceID int64) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, instance_id, step_id, actor_id, actor_role_id, action,
			previous_status, new_status, comments, timestamp
		FROM audit_entries
		WHERE instance_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, instanceID)
	if err != nil {
		r.logger.Error("Failed to list audit entries",
			zap.Int64("instance_id", instanceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.AuditEntry
	for rows.Next() {
		var entry entity.AuditEntry
		var stepID sql.NullInt64
		var comments sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.InstanceID,
			&stepID,
			&entry.ActorID,
			&entry.ActorRoleID,
			&entry.Action,
			&entry.PreviousStatus,
			&entry.NewStatus,
			&comments,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}

		if stepID.Valid {
			entry.StepID = &stepID.Int64
		}
		if comments.Valid {
			entry.Comments = comments.String
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
