package service

import (
	"context"
	"fmt"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

// Mock collaborators shared by the service tests

type mockPolicyStore struct {
	listActiveRulesFunc func(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error)
}

func (m *mockPolicyStore) ListActiveRules(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error) {
	if m.listActiveRulesFunc != nil {
		return m.listActiveRulesFunc(ctx, companyID)
	}
	return nil, nil
}

type mockRequestRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.CreditLimitRequest, error)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, id int64) (*entity.CreditLimitRequest, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: request %d", port.ErrNotFound, id)
}

type mockWorkflowRepo struct {
	createFunc               func(ctx context.Context, instance *entity.WorkflowInstance, steps []*entity.WorkflowStep) error
	getByIDFunc              func(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error)
	getByRequestIDFunc       func(ctx context.Context, requestID int64) (*entity.WorkflowInstance, error)
	updateStepFunc           func(ctx context.Context, step *entity.WorkflowStep, expectedStatus string) error
	updateInstanceStatusFunc func(ctx context.Context, instanceID int64, status string) error
}

func (m *mockWorkflowRepo) Create(ctx context.Context, instance *entity.WorkflowInstance, steps []*entity.WorkflowStep) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, instance, steps)
	}
	instance.ID = 1
	for i, step := range steps {
		step.ID = int64(i + 1)
		step.InstanceID = instance.ID
	}
	return nil
}

func (m *mockWorkflowRepo) GetByID(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, instanceID)
	}
	return nil, nil, fmt.Errorf("%w: instance %d", port.ErrNotFound, instanceID)
}

func (m *mockWorkflowRepo) GetByRequestID(ctx context.Context, requestID int64) (*entity.WorkflowInstance, error) {
	if m.getByRequestIDFunc != nil {
		return m.getByRequestIDFunc(ctx, requestID)
	}
	return nil, fmt.Errorf("%w: no instance for request %d", port.ErrNotFound, requestID)
}

func (m *mockWorkflowRepo) UpdateStep(ctx context.Context, step *entity.WorkflowStep, expectedStatus string) error {
	if m.updateStepFunc != nil {
		return m.updateStepFunc(ctx, step, expectedStatus)
	}
	return nil
}

func (m *mockWorkflowRepo) UpdateInstanceStatus(ctx context.Context, instanceID int64, status string) error {
	if m.updateInstanceStatusFunc != nil {
		return m.updateInstanceStatusFunc(ctx, instanceID, status)
	}
	return nil
}

type mockAuditRepo struct {
	createFunc func(ctx context.Context, entry *entity.AuditEntry) error
	entries    []*entity.AuditEntry
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *entity.AuditEntry) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByInstanceID(ctx context.Context, instanceID int64) ([]*entity.AuditEntry, error) {
	return m.entries, nil
}

// mockTxManager runs the function inline, mirroring a committed transaction
type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Interface compliance for the mocks
var (
	_ port.PolicyStore        = (*mockPolicyStore)(nil)
	_ port.RequestRepository  = (*mockRequestRepo)(nil)
	_ port.WorkflowRepository = (*mockWorkflowRepo)(nil)
	_ port.AuditRepository    = (*mockAuditRepo)(nil)
	_ port.TransactionManager = (*mockTxManager)(nil)
	_ Logger                  = noopLogger{}
)
