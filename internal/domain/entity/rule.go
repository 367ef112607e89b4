package entity

import "time"

// WorkflowRule maps a monetary range to a required approver role and its
// position in the approval chain. Rules are company-scoped and read-only to
// the workflow core; company administrators manage them elsewhere.
type WorkflowRule struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	MinAmountCents int64     `json:"min_amount_cents"`
	MaxAmountCents *int64    `json:"max_amount_cents,omitempty"` // nil = unbounded
	ApproverRoleID int64     `json:"approver_role_id"`
	SequenceOrder  int       `json:"sequence_order"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Contains reports whether the rule's half-open range [min, max) covers the
// amount. A nil max is treated as unbounded.
func (r *WorkflowRule) Contains(amountCents int64) bool {
	if amountCents < r.MinAmountCents {
		return false
	}
	if r.MaxAmountCents != nil && amountCents >= *r.MaxAmountCents {
		return false
	}
	return true
}
