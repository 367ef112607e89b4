package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

func newBuilder(rules []*entity.WorkflowRule, request *entity.CreditLimitRequest, workflowRepo *mockWorkflowRepo, auditRepo *mockAuditRepo) WorkflowBuilder {
	resolver := newResolver(rules)
	requestRepo := &mockRequestRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.CreditLimitRequest, error) {
			if request != nil && request.ID == id {
				return request, nil
			}
			return nil, fmt.Errorf("%w: request %d", port.ErrNotFound, id)
		},
	}
	return NewWorkflowBuilder(resolver, requestRepo, workflowRepo, auditRepo, &mockTxManager{}, noopLogger{})
}

func TestWorkflowBuilder_CreatesOneStepPerRole(t *testing.T) {
	request := &entity.CreditLimitRequest{ID: 42, CustomerID: 7, CompanyID: 10, AmountCents: 1500000}
	workflowRepo := &mockWorkflowRepo{}
	auditRepo := &mockAuditRepo{}
	builder := newBuilder(companyRules(), request, workflowRepo, auditRepo)

	instance, steps, err := builder.Build(context.Background(), 42)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if instance.RequestID != 42 {
		t.Errorf("instance.RequestID = %d, want 42", instance.RequestID)
	}
	if instance.OverallStatus != entity.OverallStatusPending {
		t.Errorf("instance.OverallStatus = %s, want PENDING", instance.OverallStatus)
	}

	if len(steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(steps))
	}
	for i, step := range steps {
		if step.StepIndex != i+1 {
			t.Errorf("step %d index = %d, want %d", i, step.StepIndex, i+1)
		}
		if step.Status != entity.StepStatusNotStarted {
			t.Errorf("step %d status = %s, want NOT_STARTED", i, step.Status)
		}
	}
	if steps[0].ApproverRoleID != 2 || steps[1].ApproverRoleID != 3 {
		t.Errorf("step roles = [%d, %d], want [2, 3]",
			steps[0].ApproverRoleID, steps[1].ApproverRoleID)
	}
}

func TestWorkflowBuilder_WritesCreationAuditEntry(t *testing.T) {
	request := &entity.CreditLimitRequest{ID: 42, CustomerID: 7, CompanyID: 10, AmountCents: 150000}
	auditRepo := &mockAuditRepo{}
	builder := newBuilder(companyRules(), request, &mockWorkflowRepo{}, auditRepo)

	if _, _, err := builder.Build(context.Background(), 42); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(auditRepo.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(auditRepo.entries))
	}
	entry := auditRepo.entries[0]
	if entry.Action != entity.AuditActionCreate {
		t.Errorf("audit action = %s, want CREATE", entry.Action)
	}
	if entry.NewStatus != entity.OverallStatusPending {
		t.Errorf("audit new status = %s, want PENDING", entry.NewStatus)
	}
}

func TestWorkflowBuilder_DuplicateWorkflow(t *testing.T) {
	request := &entity.CreditLimitRequest{ID: 42, CustomerID: 7, CompanyID: 10, AmountCents: 150000}
	workflowRepo := &mockWorkflowRepo{
		getByRequestIDFunc: func(ctx context.Context, requestID int64) (*entity.WorkflowInstance, error) {
			return &entity.WorkflowInstance{ID: 5, RequestID: requestID}, nil
		},
	}
	builder := newBuilder(companyRules(), request, workflowRepo, &mockAuditRepo{})

	_, _, err := builder.Build(context.Background(), 42)
	if !errors.Is(err, port.ErrDuplicateWorkflow) {
		t.Errorf("Build() error = %v, want ErrDuplicateWorkflow", err)
	}
}

func TestWorkflowBuilder_RequestNotFound(t *testing.T) {
	builder := newBuilder(companyRules(), nil, &mockWorkflowRepo{}, &mockAuditRepo{})

	_, _, err := builder.Build(context.Background(), 99)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("Build() error = %v, want ErrNotFound", err)
	}
}

func TestWorkflowBuilder_PropagatesResolutionErrors(t *testing.T) {
	// amount not covered by any rule range
	request := &entity.CreditLimitRequest{ID: 42, CustomerID: 7, CompanyID: 10, AmountCents: 500}
	rules := []*entity.WorkflowRule{
		{ID: 1, CompanyID: 10, MinAmountCents: 100000, MaxAmountCents: cents(200000), ApproverRoleID: 1, SequenceOrder: 1, Active: true},
	}
	builder := newBuilder(rules, request, &mockWorkflowRepo{}, &mockAuditRepo{})

	_, _, err := builder.Build(context.Background(), 42)
	if !errors.Is(err, ErrNoApplicableRule) {
		t.Errorf("Build() error = %v, want ErrNoApplicableRule", err)
	}
}

func TestWorkflowBuilder_AtomicCreation(t *testing.T) {
	request := &entity.CreditLimitRequest{ID: 42, CustomerID: 7, CompanyID: 10, AmountCents: 150000}
	auditErr := errors.New("audit insert failed")
	auditRepo := &mockAuditRepo{
		createFunc: func(ctx context.Context, entry *entity.AuditEntry) error {
			return auditErr
		},
	}

	var txFailed bool
	txManager := &mockTxManager{
		withTransactionFunc: func(ctx context.Context, fn func(ctx context.Context) error) error {
			// a failing fn means the real manager rolls everything back
			if err := fn(ctx); err != nil {
				txFailed = true
				return err
			}
			return nil
		},
	}

	resolver := newResolver(companyRules())
	requestRepo := &mockRequestRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.CreditLimitRequest, error) {
			return request, nil
		},
	}
	builder := NewWorkflowBuilder(resolver, requestRepo, &mockWorkflowRepo{}, auditRepo, txManager, noopLogger{})

	_, _, err := builder.Build(context.Background(), 42)
	if !errors.Is(err, auditErr) {
		t.Fatalf("Build() error = %v, want audit failure", err)
	}
	if !txFailed {
		t.Error("audit failure did not surface through the transaction")
	}
}
