package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewRoundsHalfAwayFromZero(t *testing.T) {
	m, err := New(dec("10.005"), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Currency() != "USD" {
		t.Fatalf("expected currency to be upper-cased, got %q", m.Currency())
	}
	if !m.Amount().Equal(dec("10.01")) {
		t.Fatalf("expected 10.01, got %s", m.Amount())
	}
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	a := MustNew(dec("5.00"), "USD")
	b := MustNew(dec("5.00"), "EUR")
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected currency mismatch error")
	}
}

func TestSubAndAbs(t *testing.T) {
	a := MustNew(dec("5.00"), "USD")
	b := MustNew(dec("8.00"), "USD")
	diff, err := a.Sub(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !diff.IsNegative() {
		t.Fatalf("expected negative diff, got %s", diff)
	}
	if !diff.Abs().Equal(MustNew(dec("3.00"), "USD")) {
		t.Fatalf("expected abs 3.00, got %s", diff.Abs())
	}
}

func TestDivByZero(t *testing.T) {
	a := MustNew(dec("10.00"), "USD")
	if _, err := a.Div(decimal.Zero); err == nil {
		t.Fatal("expected division by zero error")
	}
}

func TestCmpAcrossCurrenciesFails(t *testing.T) {
	a := MustNew(dec("1.00"), "USD")
	b := MustNew(dec("1.00"), "EUR")
	if _, err := a.Cmp(b); err == nil {
		t.Fatal("expected currency mismatch error")
	}
}

func TestStringFormatting(t *testing.T) {
	cases := map[string]string{
		"USD": "$10.00",
		"EUR": "€10.00",
		"GBP": "£10.00",
		"JPY": "10.00 JPY",
	}
	for currency, want := range cases {
		m := MustNew(dec("10.00"), currency)
		if got := m.String(); got != want {
			t.Errorf("%s: got %q, want %q", currency, got, want)
		}
	}
}

func TestNegateAndZero(t *testing.T) {
	z := Zero("USD")
	if !z.IsZero() {
		t.Fatal("expected zero")
	}
	pos := MustNew(dec("4.00"), "USD")
	neg := pos.Negate()
	if !neg.IsNegative() {
		t.Fatal("expected negate to produce a negative amount")
	}
	if !neg.Abs().Equal(pos) {
		t.Fatal("expected abs(negate(x)) == x")
	}
}
