package entity

import "time"

// CreditLimitRequest is a customer's ask for a credit limit. It is created
// by the ordering flow and immutable once a workflow has been built for it.
type CreditLimitRequest struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	CompanyID   int64     `json:"company_id"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}
