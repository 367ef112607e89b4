package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

// WorkflowBuilder materializes the approval chain for a credit-limit
// request as a workflow instance with ordered steps.
type WorkflowBuilder interface {
	// Build creates the instance and its steps, or fails with
	// ErrDuplicateWorkflow / ErrNoApplicableRule / ErrAmbiguousRule.
	Build(ctx context.Context, requestID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error)
}

type workflowBuilderImpl struct {
	resolver     RuleResolver
	requestRepo  port.RequestRepository
	workflowRepo port.WorkflowRepository
	auditRepo    port.AuditRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewWorkflowBuilder creates a new WorkflowBuilder
func NewWorkflowBuilder(
	resolver RuleResolver,
	requestRepo port.RequestRepository,
	workflowRepo port.WorkflowRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) WorkflowBuilder {
	return &workflowBuilderImpl{
		resolver:     resolver,
		requestRepo:  requestRepo,
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Build fetches the request, resolves the role chain for its amount and
// creates the instance plus one NOT_STARTED step per role, indices 1..N.
// Instance, steps and the initial audit entry are created in a single
// transaction; a second build for the same request fails.
func (b *workflowBuilderImpl) Build(ctx context.Context, requestID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error) {
	request, err := b.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		b.logger.Error("Failed to load request", "error", err, "request_id", requestID)
		return nil, nil, fmt.Errorf("get request %d: %w", requestID, err)
	}

	if existing, err := b.workflowRepo.GetByRequestID(ctx, requestID); err == nil && existing != nil {
		b.logger.Info("Workflow already exists for request",
			"request_id", requestID, "instance_id", existing.ID)
		return nil, nil, fmt.Errorf("%w: request %d has instance %d",
			port.ErrDuplicateWorkflow, requestID, existing.ID)
	} else if err != nil && !errors.Is(err, port.ErrNotFound) {
		return nil, nil, fmt.Errorf("check existing workflow for request %d: %w", requestID, err)
	}

	chain, err := b.resolver.Resolve(ctx, request.CompanyID, request.AmountCents)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	instance := &entity.WorkflowInstance{
		RequestID:     request.ID,
		OverallStatus: entity.OverallStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	steps := make([]*entity.WorkflowStep, 0, len(chain))
	for i, rule := range chain {
		steps = append(steps, &entity.WorkflowStep{
			StepIndex:      i + 1,
			ApproverRoleID: rule.ApproverRoleID,
			Status:         entity.StepStatusNotStarted,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	err = b.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := b.workflowRepo.Create(txCtx, instance, steps); err != nil {
			return fmt.Errorf("create workflow: %w", err)
		}

		entry := &entity.AuditEntry{
			InstanceID:     instance.ID,
			ActorID:        request.CustomerID,
			Action:         entity.AuditActionCreate,
			PreviousStatus: "",
			NewStatus:      entity.OverallStatusPending,
			Timestamp:      now,
		}
		if err := b.auditRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit entry: %w", err)
		}

		return nil
	})

	if err != nil {
		b.logger.Error("Failed to build workflow", "error", err, "request_id", requestID)
		return nil, nil, err
	}

	b.logger.Info("Workflow built",
		"instance_id", instance.ID,
		"request_id", requestID,
		"steps", len(steps))
	return instance, steps, nil
}
