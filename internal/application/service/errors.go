package service

import "errors"

var (
	// ErrNoApplicableRule is returned when no rule's range covers the amount
	ErrNoApplicableRule = errors.New("no applicable workflow rule for amount")

	// ErrAmbiguousRule is returned when more than one rule claims the same
	// sequence position within the matching tier
	ErrAmbiguousRule = errors.New("ambiguous workflow rules for amount")

	// ErrStepNotFound is returned when a step does not exist or does not
	// belong to the targeted instance
	ErrStepNotFound = errors.New("step not found in workflow instance")

	// ErrUnauthorized is returned when the actor's role does not match the
	// step's required approver role
	ErrUnauthorized = errors.New("actor role not authorized for step")

	// ErrOutOfOrder is returned when a step is acted on before all
	// lower-indexed steps are approved
	ErrOutOfOrder = errors.New("step acted on out of order")

	// ErrWorkflowAlreadyResolved is returned when the instance already
	// reached an overall APPROVED or REJECTED status
	ErrWorkflowAlreadyResolved = errors.New("workflow already resolved")

	// ErrInvalidDecision is returned for a decision other than APPROVE/REJECT
	ErrInvalidDecision = errors.New("invalid decision")
)
