package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"go.uber.org/zap"
)

// RequestRepository implements port.RequestRepository over SQLite
type RequestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) port.RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a credit-limit request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.CreditLimitRequest, error) {
	query := `
		SELECT id, customer_id, company_id, amount_cents, created_at
		FROM credit_limit_requests
		WHERE id = ?
	`

	var request entity.CreditLimitRequest
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.CustomerID,
		&request.CompanyID,
		&request.AmountCents,
		&request.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: request %d", port.ErrNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return &request, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
