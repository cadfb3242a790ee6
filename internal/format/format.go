package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/marble-idols/storefront/internal/catalog"
	"github.com/marble-idols/storefront/internal/domain"
)

var indianEnglish = language.MustParse("en-IN")

// INR formats an amount in rupees with Indian digit grouping.
// Example: INR(12500) => "₹12,500"
func INR(amount float64) string {
	p := message.NewPrinter(indianEnglish)
	return "₹" + p.Sprint(number.Decimal(amount, number.MaxFractionDigits(2)))
}

// Price renders a display price string as rupees, leaving unparseable text untouched.
func Price(raw string) string {
	if v, ok := catalog.ParsePrice(raw); ok {
		return INR(v)
	}
	return strings.TrimSpace(raw)
}

// DiscountPercent returns the rounded saving of price against actual. It reports false when
// there is no saving to show.
func DiscountPercent(price, actual float64) (int, bool) {
	if actual <= 0 || price >= actual || price < 0 {
		return 0, false
	}
	return int(math.Round((actual - price) / actual * 100)), true
}

// Number prints v without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Dimensions renders height, width and depth for a product card. Inches are shown as
// feet and inches; other units are appended to each value. Axes without a value are
// skipped and an empty string is returned when nothing is known.
// Example: Dimensions(63in x 24in x 18in) => `Height: 5'3" × Width: 2'0" × Depth: 1'6"`
func Dimensions(d domain.Dimensions) string {
	unit := dimensionUnit(d)
	axes := []struct {
		label string
		dim   domain.Dimension
	}{
		{"Height", d.Height},
		{"Width", d.Width},
		{"Depth", d.Length},
	}

	parts := make([]string, 0, len(axes))
	for _, axis := range axes {
		if axis.dim.Value == nil {
			continue
		}
		parts = append(parts, axis.label+": "+measure(*axis.dim.Value, unit))
	}
	return strings.Join(parts, " × ")
}

func dimensionUnit(d domain.Dimensions) string {
	for _, dim := range []domain.Dimension{d.Height, d.Width, d.Length} {
		if symbol := dim.Symbol(); symbol != "" {
			return symbol
		}
	}
	return ""
}

func measure(v float64, unit string) string {
	if strings.EqualFold(unit, "in") {
		return FeetInches(v)
	}
	return Number(v) + unit
}

// FeetInches converts a length in inches to the 5'3" form.
func FeetInches(inches float64) string {
	feet := int(math.Floor(inches / 12))
	rest := int(math.Round(math.Mod(inches, 12)))
	if rest == 12 {
		feet++
		rest = 0
	}
	if feet > 0 {
		return strconv.Itoa(feet) + "'" + strconv.Itoa(rest) + `"`
	}
	return strconv.Itoa(rest) + `"`
}
