package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"go.uber.org/zap"
)

// PolicyRepository implements port.PolicyStore over SQLite
type PolicyRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *sql.DB, logger *zap.Logger) port.PolicyStore {
	return &PolicyRepository{
		db:     db,
		logger: logger,
	}
}

// ListActiveRules returns the company's active rules ordered by min_amount
func (r *PolicyRepository) ListActiveRules(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error) {
	query := `
		SELECT id, company_id, min_amount_cents, max_amount_cents,
			approver_role_id, sequence_order, active, created_at, updated_at
		FROM workflow_rules
		WHERE company_id = ? AND active = 1
		ORDER BY min_amount_cents ASC, sequence_order ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list rules", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("%w: list rules: %v", port.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var rules []*entity.WorkflowRule
	for rows.Next() {
		var rule entity.WorkflowRule
		var maxAmount sql.NullInt64

		err := rows.Scan(
			&rule.ID,
			&rule.CompanyID,
			&rule.MinAmountCents,
			&maxAmount,
			&rule.ApproverRoleID,
			&rule.SequenceOrder,
			&rule.Active,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		if maxAmount.Valid {
			rule.MaxAmountCents = &maxAmount.Int64
		}

		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// Verify interface compliance
var _ port.PolicyStore = (*PolicyRepository)(nil)
