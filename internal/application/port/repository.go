package port

import (
	"context"

	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

// PolicyStore provides read-only access to a company's workflow rules.
type PolicyStore interface {
	// ListActiveRules returns the company's active rules ordered by
	// min_amount ascending. May fail with ErrStoreUnavailable.
	ListActiveRules(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error)
}

// RequestRepository provides read-only access to credit-limit requests.
type RequestRepository interface {
	// GetByID fails with ErrNotFound when the request does not exist.
	GetByID(ctx context.Context, id int64) (*entity.CreditLimitRequest, error)
}

// WorkflowRepository is the sole persistence boundary for workflow
// instances and their steps.
type WorkflowRepository interface {
	// Create persists the instance and all of its steps. Callers scope the
	// call in a transaction so creation is all-or-nothing. Fails with
	// ErrDuplicateWorkflow when an instance already exists for the request.
	Create(ctx context.Context, instance *entity.WorkflowInstance, steps []*entity.WorkflowStep) error

	// GetByID returns the instance and its steps ordered by step_index.
	// Fails with ErrNotFound when the instance does not exist.
	GetByID(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error)

	// GetByRequestID returns the instance built for a request, or ErrNotFound.
	GetByRequestID(ctx context.Context, requestID int64) (*entity.WorkflowInstance, error)

	// UpdateStep persists a step mutation conditioned on the status the
	// writer previously observed. Fails with ErrConcurrentModification when
	// the stored status no longer matches expectedStatus.
	UpdateStep(ctx context.Context, step *entity.WorkflowStep, expectedStatus string) error

	// UpdateInstanceStatus sets the derived overall status.
	UpdateInstanceStatus(ctx context.Context, instanceID int64, status string) error
}

// AuditRepository persists the immutable audit trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditEntry) error
	ListByInstanceID(ctx context.Context, instanceID int64) ([]*entity.AuditEntry, error)
}

// TransactionManager scopes a function to a single database transaction.
// The function receives a context carrying the transaction; repository
// methods called with it join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
