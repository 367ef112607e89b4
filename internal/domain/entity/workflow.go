package entity

import "time"

// WorkflowInstance is the realized approval process for one credit-limit
// request, 1:1 with the request. OverallStatus is always derived from the
// step statuses and never set independently.
type WorkflowInstance struct {
	ID            int64     `json:"id"`
	RequestID     int64     `json:"request_id"`
	OverallStatus string    `json:"overall_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WorkflowStep is one role's approval slot within an instance. StepIndex is
// 1-based and contiguous within the instance.
type WorkflowStep struct {
	ID             int64      `json:"id"`
	InstanceID     int64      `json:"instance_id"`
	StepIndex      int        `json:"step_index"`
	ApproverRoleID int64      `json:"approver_role_id"`
	Status         string     `json:"status"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	ApproverID     int64      `json:"approver_id,omitempty"`
	Comments       string     `json:"comments,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsFinal reports whether the step reached a terminal status.
func (s *WorkflowStep) IsFinal() bool {
	return s.Status == StepStatusApproved || s.Status == StepStatusRejected
}
