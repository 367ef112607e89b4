package entity

import "time"

// AuditEntry is one immutable record in a workflow's audit trail: instance
// creation plus every step transition, with who acted and from/to statuses.
type AuditEntry struct {
	ID             int64     `json:"id"`
	InstanceID     int64     `json:"instance_id"`
	StepID         *int64    `json:"step_id,omitempty"`
	ActorID        int64     `json:"actor_id"`
	ActorRoleID    int64     `json:"actor_role_id"`
	Action         string    `json:"action"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Comments       string    `json:"comments,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}
