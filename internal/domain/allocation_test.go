package domain

import "testing"

func TestAdjustAllocatedClampsAtZero(t *testing.T) {
	a, err := NewEnvelopeAllocation("env-1", "period-1", usd("10.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := a.AdjustAllocated(usd("-25.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Allocated.IsZero() {
		t.Fatalf("expected allocated to clamp at zero, got %s", a.Allocated)
	}
}

func TestAdjustAllocatedPositiveDelta(t *testing.T) {
	a, _ := NewEnvelopeAllocation("env-1", "period-1", usd("10.00"))
	if err := a.AdjustAllocated(usd("5.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Allocated.Equal(usd("15.00")) {
		t.Fatalf("expected 15.00, got %s", a.Allocated)
	}
}

func TestAvailableComputation(t *testing.T) {
	a, _ := NewEnvelopeAllocation("env-1", "period-1", usd("40.00"))
	a.SetSpent(usd("25.00"))
	available, err := a.Available()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(usd("15.00")) {
		t.Fatalf("expected available 15.00, got %s", available)
	}
}

func TestAvailableWithNegativeRollover(t *testing.T) {
	a, _ := NewEnvelopeAllocation("env-1", "period-1", usd("50.00"))
	a.SetRolloverFromPrevious(usd("-20.00"))
	a.SetSpent(usd("0.00"))
	available, err := a.Available()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !available.Equal(usd("30.00")) {
		t.Fatalf("expected 30.00, got %s", available)
	}
}

func TestNewEnvelopeAllocationRejectsNegative(t *testing.T) {
	if _, err := NewEnvelopeAllocation("env-1", "period-1", usd("-1.00")); err == nil {
		t.Fatal("expected negative allocation to be rejected")
	}
}
