package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ideen-revvo/credit-workflow/internal/application/port"
	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// RuleResolver selects the approver-role chain required for an amount.
type RuleResolver interface {
	// Resolve returns the ordered chain of rules whose tier covers the
	// amount, or ErrNoApplicableRule / ErrAmbiguousRule.
	Resolve(ctx context.Context, companyID, amountCents int64) ([]*entity.WorkflowRule, error)
}

type ruleResolverImpl struct {
	policyStore port.PolicyStore
	logger      Logger
}

// NewRuleResolver creates a new RuleResolver
func NewRuleResolver(policyStore port.PolicyStore, logger Logger) RuleResolver {
	return &ruleResolverImpl{
		policyStore: policyStore,
		logger:      logger,
	}
}

// Resolve fetches the company's active rules, keeps those whose half-open
// range contains the amount, and orders the resulting tier by sequence
// order (role ID breaking ties for determinism). Two rules claiming the
// same sequence position is a policy defect and is never silently resolved.
func (r *ruleResolverImpl) Resolve(ctx context.Context, companyID, amountCents int64) ([]*entity.WorkflowRule, error) {
	rules, err := r.policyStore.ListActiveRules(ctx, companyID)
	if err != nil {
		r.logger.Error("Failed to load workflow rules", "error", err, "company_id", companyID)
		return nil, fmt.Errorf("list rules for company %d: %w", companyID, err)
	}

	var chain []*entity.WorkflowRule
	for _, rule := range rules {
		if rule.Contains(amountCents) {
			chain = append(chain, rule)
		}
	}

	if len(chain) == 0 {
		r.logger.Info("No applicable rule for amount",
			"company_id", companyID, "amount_cents", amountCents)
		return nil, fmt.Errorf("%w: company %d amount %d", ErrNoApplicableRule, companyID, amountCents)
	}

	sort.Slice(chain, func(i, j int) bool {
		if chain[i].SequenceOrder != chain[j].SequenceOrder {
			return chain[i].SequenceOrder < chain[j].SequenceOrder
		}
		return chain[i].ApproverRoleID < chain[j].ApproverRoleID
	})

	for i := 1; i < len(chain); i++ {
		if chain[i].SequenceOrder == chain[i-1].SequenceOrder {
			r.logger.Error("Duplicate sequence order in rule tier",
				"company_id", companyID,
				"sequence_order", chain[i].SequenceOrder,
				"rule_ids", []int64{chain[i-1].ID, chain[i].ID})
			return nil, fmt.Errorf("%w: sequence order %d claimed by rules %d and %d",
				ErrAmbiguousRule, chain[i].SequenceOrder, chain[i-1].ID, chain[i].ID)
		}
	}

	return chain, nil
}
