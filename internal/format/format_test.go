package format

import (
	"testing"

	"github.com/marble-idols/storefront/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestINR(t *testing.T) {
	tests := map[float64]string{
		0:       "₹0",
		999:     "₹999",
		12500:   "₹12,500",
		1499.5:  "₹1,499.5",
		2500.25: "₹2,500.25",
	}
	for in, want := range tests {
		if got := INR(in); got != want {
			t.Fatalf("INR(%v): expected %q got %q", in, want, got)
		}
	}
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		price, actual float64
		want          int
		ok            bool
	}{
		{price: 7500, actual: 10000, want: 25, ok: true},
		{price: 2000, actual: 3000, want: 33, ok: true},
		{price: 10000, actual: 10000, ok: false},
		{price: 100, actual: 0, ok: false},
	}
	for _, tc := range tests {
		got, ok := DiscountPercent(tc.price, tc.actual)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("DiscountPercent(%v,%v): expected (%d,%v) got (%d,%v)", tc.price, tc.actual, tc.want, tc.ok, got, ok)
		}
	}
}

func TestDimensionsInches(t *testing.T) {
	unit := &domain.UnitRef{Title: "Inches", Symbol: "in"}
	d := domain.Dimensions{
		Height: domain.Dimension{Value: f(63), Unit: unit},
		Width:  domain.Dimension{Value: f(24), Unit: unit},
		Length: domain.Dimension{Value: f(9), Unit: unit},
	}

	want := `Height: 5'3" × Width: 2'0" × Depth: 9"`
	if got := Dimensions(d); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
}

func TestDimensionsMetricAndMissing(t *testing.T) {
	unit := &domain.UnitRef{Title: "Centimetre", Symbol: "cm"}
	d := domain.Dimensions{
		Height: domain.Dimension{Value: f(45.5), Unit: unit},
		Length: domain.Dimension{Value: f(20), Unit: unit},
	}

	want := "Height: 45.5cm × Depth: 20cm"
	if got := Dimensions(d); got != want {
		t.Fatalf("expected %q got %q", want, got)
	}
	if got := Dimensions(domain.Dimensions{}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestFeetInchesRoundsUp(t *testing.T) {
	if got := FeetInches(23.8); got != `2'0"` {
		t.Fatalf("expected 2'0\" got %q", got)
	}
}

func TestPrice(t *testing.T) {
	if got := Price("12500"); got != "₹12,500" {
		t.Fatalf("expected ₹12,500 got %q", got)
	}
	if got := Price("Rs.1500/-"); got != "₹1,500" {
		t.Fatalf("expected ₹1,500 got %q", got)
	}
	if got := Price(" on request "); got != "on request" {
		t.Fatalf("expected raw text, got %q", got)
	}
}
