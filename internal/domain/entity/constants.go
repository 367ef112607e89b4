package entity

// Overall status constants for WorkflowInstance
const (
	OverallStatusPending  = "PENDING"
	OverallStatusApproved = "APPROVED"
	OverallStatusRejected = "REJECTED"
)

// Status constants for WorkflowStep
const (
	StepStatusNotStarted = "NOT_STARTED"
	StepStatusStarted    = "STARTED"
	StepStatusApproved   = "APPROVED"
	StepStatusRejected   = "REJECTED"
)

// Audit action constants
const (
	AuditActionCreate  = "CREATE"
	AuditActionStart   = "START"
	AuditActionApprove = "APPROVE"
	AuditActionReject  = "REJECT"
)

// Decision constants accepted by the approval coordinator
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)
