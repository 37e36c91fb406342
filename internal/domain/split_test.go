package domain

import "testing"

func TestValidateSplitSumMatches(t *testing.T) {
	l1, _ := NewSplitLine("tx-1", "env-1", usd("10.00"), 0)
	l2, _ := NewSplitLine("tx-1", "env-2", usd("15.00"), 1)
	if err := ValidateSplitSum(usd("25.00"), []*SplitLine{l1, l2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSplitSumMismatch(t *testing.T) {
	l1, _ := NewSplitLine("tx-1", "env-1", usd("10.00"), 0)
	l2, _ := NewSplitLine("tx-1", "env-2", usd("10.00"), 1)
	if err := ValidateSplitSum(usd("25.00"), []*SplitLine{l1, l2}); err == nil {
		t.Fatal("expected split mismatch error")
	}
}

func TestValidateSplitSumRejectsEmpty(t *testing.T) {
	if err := ValidateSplitSum(usd("25.00"), nil); err == nil {
		t.Fatal("expected empty split set to be rejected")
	}
}

func TestNewSplitLineRejectsNonPositiveAmount(t *testing.T) {
	if _, err := NewSplitLine("tx-1", "env-1", usd("0.00"), 0); err == nil {
		t.Fatal("expected zero split amount to be rejected")
	}
}
