package workflow

import "github.com/ideen-revvo/credit-workflow/internal/domain/entity"

// DeriveOverallStatus computes an instance's overall status from its steps:
// REJECTED if any step is rejected, APPROVED if every step is approved,
// PENDING otherwise. An instance with no steps is never built, but the empty
// case degrades to PENDING rather than vacuously APPROVED.
func DeriveOverallStatus(steps []*entity.WorkflowStep) string {
	if len(steps) == 0 {
		return entity.OverallStatusPending
	}

	allApproved := true
	for _, step := range steps {
		switch step.Status {
		case entity.StepStatusRejected:
			return entity.OverallStatusRejected
		case entity.StepStatusApproved:
			// keep scanning
		default:
			allApproved = false
		}
	}

	if allApproved {
		return entity.OverallStatusApproved
	}
	return entity.OverallStatusPending
}
