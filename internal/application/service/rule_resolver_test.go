package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ideen-revvo/credit-workflow/internal/domain/entity"
)

func cents(v int64) *int64 { return &v }

// companyRules models the tiered example policy: [0,2000) -> role 1,
// [2000,10000) -> role 2, [10000,inf) -> roles 2 then 3.
func companyRules() []*entity.WorkflowRule {
	return []*entity.WorkflowRule{
		{ID: 1, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: cents(200000), ApproverRoleID: 1, SequenceOrder: 1, Active: true},
		{ID: 2, CompanyID: 10, MinAmountCents: 200000, MaxAmountCents: cents(1000000), ApproverRoleID: 2, SequenceOrder: 1, Active: true},
		{ID: 3, CompanyID: 10, MinAmountCents: 1000000, MaxAmountCents: nil, ApproverRoleID: 2, SequenceOrder: 1, Active: true},
		{ID: 4, CompanyID: 10, MinAmountCents: 1000000, MaxAmountCents: nil, ApproverRoleID: 3, SequenceOrder: 2, Active: true},
	}
}

func newResolver(rules []*entity.WorkflowRule) RuleResolver {
	store := &mockPolicyStore{
		listActiveRulesFunc: func(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error) {
			return rules, nil
		},
	}
	return NewRuleResolver(store, noopLogger{})
}

func TestRuleResolver_SingleRuleTier(t *testing.T) {
	resolver := newResolver(companyRules())

	chain, err := resolver.Resolve(context.Background(), 10, 150000)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(chain) != 1 {
		t.Fatalf("chain length = %d, want 1", len(chain))
	}
	if chain[0].ApproverRoleID != 1 {
		t.Errorf("role = %d, want 1", chain[0].ApproverRoleID)
	}
}

func TestRuleResolver_MultiRoleChain(t *testing.T) {
	resolver := newResolver(companyRules())

	chain, err := resolver.Resolve(context.Background(), 10, 1500000)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	if chain[0].ApproverRoleID != 2 || chain[1].ApproverRoleID != 3 {
		t.Errorf("chain roles = [%d, %d], want [2, 3]",
			chain[0].ApproverRoleID, chain[1].ApproverRoleID)
	}
}

func TestRuleResolver_BoundariesAreHalfOpen(t *testing.T) {
	resolver := newResolver(companyRules())

	tests := []struct {
		name     string
		amount   int64
		wantRole int64
	}{
		{"lower bound inclusive", 0, 1},
		{"upper bound exclusive rolls to next tier", 200000, 2},
		{"just below upper bound", 199999, 1},
		{"unbounded tier start", 1000000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := resolver.Resolve(context.Background(), 10, tt.amount)
			if err != nil {
				t.Fatalf("Resolve(%d) error = %v", tt.amount, err)
			}
			if chain[0].ApproverRoleID != tt.wantRole {
				t.Errorf("Resolve(%d) first role = %d, want %d",
					tt.amount, chain[0].ApproverRoleID, tt.wantRole)
			}
		})
	}
}

func TestRuleResolver_NoApplicableRule(t *testing.T) {
	rules := []*entity.WorkflowRule{
		{ID: 1, CompanyID: 10, MinAmountCents: 100000, MaxAmountCents: cents(200000), ApproverRoleID: 1, SequenceOrder: 1, Active: true},
	}
	resolver := newResolver(rules)

	_, err := resolver.Resolve(context.Background(), 10, 50000)
	if !errors.Is(err, ErrNoApplicableRule) {
		t.Errorf("Resolve() error = %v, want ErrNoApplicableRule", err)
	}
}

func TestRuleResolver_NoRulesAtAll(t *testing.T) {
	resolver := newResolver(nil)

	_, err := resolver.Resolve(context.Background(), 10, 50000)
	if !errors.Is(err, ErrNoApplicableRule) {
		t.Errorf("Resolve() error = %v, want ErrNoApplicableRule", err)
	}
}

func TestRuleResolver_AmbiguousRule(t *testing.T) {
	rules := []*entity.WorkflowRule{
		{ID: 1, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: nil, ApproverRoleID: 1, SequenceOrder: 1, Active: true},
		{ID: 2, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: nil, ApproverRoleID: 2, SequenceOrder: 1, Active: true},
	}
	resolver := newResolver(rules)

	_, err := resolver.Resolve(context.Background(), 10, 50000)
	if !errors.Is(err, ErrAmbiguousRule) {
		t.Errorf("Resolve() error = %v, want ErrAmbiguousRule", err)
	}
}

func TestRuleResolver_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &mockPolicyStore{
		listActiveRulesFunc: func(ctx context.Context, companyID int64) ([]*entity.WorkflowRule, error) {
			return nil, storeErr
		},
	}
	resolver := NewRuleResolver(store, noopLogger{})

	_, err := resolver.Resolve(context.Background(), 10, 50000)
	if !errors.Is(err, storeErr) {
		t.Errorf("Resolve() error = %v, want wrapped store error", err)
	}
}

// Resolution must be deterministic regardless of the order the store
// returns rules in.
func TestRuleResolver_DeterministicOrdering(t *testing.T) {
	rules := []*entity.WorkflowRule{
		{ID: 4, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: nil, ApproverRoleID: 9, SequenceOrder: 3, Active: true},
		{ID: 2, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: nil, ApproverRoleID: 5, SequenceOrder: 1, Active: true},
		{ID: 3, CompanyID: 10, MinAmountCents: 0, MaxAmountCents: nil, ApproverRoleID: 7, SequenceOrder: 2, Active: true},
	}

	var first []int64
	for i := 0; i < 10; i++ {
		// rotate the input ordering
		rotated := append(append([]*entity.WorkflowRule{}, rules[i%3:]...), rules[:i%3]...)
		resolver := newResolver(rotated)

		chain, err := resolver.Resolve(context.Background(), 10, 100)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		var roles []int64
		for _, rule := range chain {
			roles = append(roles, rule.ApproverRoleID)
		}

		if first == nil {
			first = roles
			continue
		}
		for j := range roles {
			if roles[j] != first[j] {
				t.Fatalf("iteration %d chain = %v, want %v", i, roles, first)
			}
		}
	}

	if first[0] != 5 || first[1] != 7 || first[2] != 9 {
		t.Errorf("chain roles = %v, want [5 7 9]", first)
	}
}
