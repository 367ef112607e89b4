package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
	"github.com/ideen-revvo/credit-workflow/internal/domain/workflow"
)

// ApprovalCoordinator is the orchestration entry point for approver actions
// on a workflow instance. It is the only component that mutates steps and
// the derived overall status.
type ApprovalCoordinator interface {
	// Act applies an approve/reject decision to a step. A step that was
	// never explicitly started is started and decided as one action.
	Act(ctx context.Context, instanceID, stepID, actorID, actorRoleID int64, decision, comments string) (*entity.WorkflowInstance, error)

	// StartStep explicitly claims a step for review without deciding it.
	StartStep(ctx context.Context, instanceID, stepID, actorID, actorRoleID int64) (*entity.WorkflowStep, error)

	// GetInstance returns a snapshot of the instance and its ordered steps.
	GetInstance(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error)
}

type approvalCoordinatorImpl struct {
	workflowRepo port.WorkflowRepository
	auditRepo    port.AuditRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewApprovalCoordinator creates a new ApprovalCoordinator
func NewApprovalCoordinator(
	workflowRepo port.WorkflowRepository,
	auditRepo port.AuditRepository,
	txManager port.TransactionManager,
	logger Logger,
) ApprovalCoordinator {
	return &approvalCoordinatorImpl{
		workflowRepo: workflowRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// Act validates the actor and ordering, drives the step through its state
// machine and recomputes the overall status, all within one transaction.
// No partial mutation survives a failed precondition.
func (c *approvalCoordinatorImpl) Act(ctx context.Context, instanceID, stepID, actorID, actorRoleID int64, decision, comments string) (*entity.WorkflowInstance, error) {
	var trigger workflow.Trigger
	var action string
	switch decision {
	case entity.DecisionApprove:
		trigger = workflow.TriggerApprove
		action = entity.AuditActionApprove
	case entity.DecisionReject:
		trigger = workflow.TriggerReject
		action = entity.AuditActionReject
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	var instance *entity.WorkflowInstance

	err := c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		loaded, steps, err := c.workflowRepo.GetByID(txCtx, instanceID)
		if err != nil {
			return fmt.Errorf("get workflow %d: %w", instanceID, err)
		}

		step, err := c.validateAction(loaded, steps, stepID, actorRoleID)
		if err != nil {
			return err
		}

		observedStatus := step.Status
		now := time.Now()

		machine := workflow.BuildStepStateMachine(workflow.State(step.Status))
		if machine.State() == workflow.StateNotStarted {
			if err := machine.Fire(txCtx, workflow.TriggerStart); err != nil {
				return err
			}
			step.StartedAt = &now
		}
		if err := machine.Fire(txCtx, trigger); err != nil {
			return err
		}

		step.Status = machine.State().String()
		step.FinishedAt = &now
		step.ApproverID = actorID
		step.Comments = comments
		step.UpdatedAt = now

		if err := c.workflowRepo.UpdateStep(txCtx, step, observedStatus); err != nil {
			return fmt.Errorf("update step %d: %w", step.ID, err)
		}

		previousOverall := loaded.OverallStatus
		loaded.OverallStatus = workflow.DeriveOverallStatus(steps)
		loaded.UpdatedAt = now
		if loaded.OverallStatus != previousOverall {
			if err := c.workflowRepo.UpdateInstanceStatus(txCtx, loaded.ID, loaded.OverallStatus); err != nil {
				return fmt.Errorf("update instance status: %w", err)
			}
		}

		entry := &entity.AuditEntry{
			InstanceID:     loaded.ID,
			StepID:         &step.ID,
			ActorID:        actorID,
			ActorRoleID:    actorRoleID,
			Action:         action,
			PreviousStatus: observedStatus,
			NewStatus:      step.Status,
			Comments:       comments,
			Timestamp:      now,
		}
		if err := c.auditRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit entry: %w", err)
		}

		instance = loaded
		return nil
	})

	if err != nil {
		c.logger.Error("Decision failed",
			"error", err,
			"instance_id", instanceID,
			"step_id", stepID,
			"decision", decision)
		return nil, err
	}

	c.logger.Info("Decision applied",
		"instance_id", instance.ID,
		"step_id", stepID,
		"decision", decision,
		"overall_status", instance.OverallStatus)
	return instance, nil
}

// StartStep claims a step for review so callers can surface an "in review"
// state before the decision lands. The same authorization and ordering
// rules apply as for a decision.
func (c *approvalCoordinatorImpl) StartStep(ctx context.Context, instanceID, stepID, actorID, actorRoleID int64) (*entity.WorkflowStep, error) {
	var started *entity.WorkflowStep

	err := c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		loaded, steps, err := c.workflowRepo.GetByID(txCtx, instanceID)
		if err != nil {
			return fmt.Errorf("get workflow %d: %w", instanceID, err)
		}

		step, err := c.validateAction(loaded, steps, stepID, actorRoleID)
		if err != nil {
			return err
		}

		observedStatus := step.Status
		now := time.Now()

		machine := workflow.BuildStepStateMachine(workflow.State(step.Status))
		if err := machine.Fire(txCtx, workflow.TriggerStart); err != nil {
			return err
		}

		step.Status = machine.State().String()
		step.StartedAt = &now
		step.ApproverID = actorID
		step.UpdatedAt = now

		if err := c.workflowRepo.UpdateStep(txCtx, step, observedStatus); err != nil {
			return fmt.Errorf("update step %d: %w", step.ID, err)
		}

		entry := &entity.AuditEntry{
			InstanceID:     loaded.ID,
			StepID:         &step.ID,
			ActorID:        actorID,
			ActorRoleID:    actorRoleID,
			Action:         entity.AuditActionStart,
			PreviousStatus: observedStatus,
			NewStatus:      step.Status,
			Timestamp:      now,
		}
		if err := c.auditRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit entry: %w", err)
		}

		started = step
		return nil
	})

	if err != nil {
		c.logger.Error("Start step failed",
			"error", err,
			"instance_id", instanceID,
			"step_id", stepID)
		return nil, err
	}

	c.logger.Info("Step started",
		"instance_id", instanceID,
		"step_id", stepID,
		"approver_id", actorID)
	return started, nil
}

// GetInstance returns a snapshot read of the instance and its steps.
func (c *approvalCoordinatorImpl) GetInstance(ctx context.Context, instanceID int64) (*entity.WorkflowInstance, []*entity.WorkflowStep, error) {
	instance, steps, err := c.workflowRepo.GetByID(ctx, instanceID)
	if err != nil {
		c.logger.Error("Failed to get workflow", "error", err, "instance_id", instanceID)
		return nil, nil, err
	}
	return instance, steps, nil
}

// validateAction runs the shared preconditions for StartStep and Act:
// locate the step, authorize the role, refuse work on a finalized step or a
// resolved instance, and enforce sequential ordering. Check order matters:
// a terminal step reports ErrAlreadyFinalized even after the instance as a
// whole resolved, so retries on decided steps are distinguishable from
// actions blocked by another step's rejection.
func (c *approvalCoordinatorImpl) validateAction(instance *entity.WorkflowInstance, steps []*entity.WorkflowStep, stepID, actorRoleID int64) (*entity.WorkflowStep, error) {
	var target *entity.WorkflowStep
	for _, s := range steps {
		if s.ID == stepID {
			target = s
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: step %d in instance %d", ErrStepNotFound, stepID, instance.ID)
	}

	if target.ApproverRoleID != actorRoleID {
		return nil, fmt.Errorf("%w: step %d requires role %d, actor has role %d",
			ErrUnauthorized, target.ID, target.ApproverRoleID, actorRoleID)
	}

	if target.IsFinal() {
		return nil, fmt.Errorf("%w: step %d is %s", workflow.ErrAlreadyFinalized, target.ID, target.Status)
	}

	if overall := workflow.DeriveOverallStatus(steps); overall != entity.OverallStatusPending {
		return nil, fmt.Errorf("%w: instance %d is %s", ErrWorkflowAlreadyResolved, instance.ID, overall)
	}

	for _, s := range steps {
		if s.StepIndex < target.StepIndex && s.Status != entity.StepStatusApproved {
			return nil, fmt.Errorf("%w: step %d awaits step %d (%s)",
				ErrOutOfOrder, target.StepIndex, s.StepIndex, s.Status)
		}
	}

	return target, nil
}
