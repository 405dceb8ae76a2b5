// Package format provides display formatting for currency and rate values.
package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a whole-dollar currency string with a dollar sign and
// thousands separators (e.g., "-$1,234,568"). ARR figures are reported at
// dollar granularity; cents are noise at this scale.
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234,568").
func NumericCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	formatted := formatPositiveCurrency(math.Abs(amount))
	return sign + formatted
}

// Percent renders a fractional rate as a percentage with one decimal
// (e.g., 0.925 -> "92.5%"). NaN renders as an empty string since it marks
// an undefined metric rather than a zero.
func Percent(fraction float64) string {
	if math.IsNaN(fraction) {
		return ""
	}
	return fmt.Sprintf("%.1f%%", fraction*100)
}

// WholePercent renders a fractional rate as a whole percentage
// (e.g., 0.6 -> "60%"). NaN renders as an empty string.
func WholePercent(fraction float64) string {
	if math.IsNaN(fraction) {
		return ""
	}
	return fmt.Sprintf("%.0f%%", fraction*100)
}

func formatPositiveCurrency(value float64) string {
	intPart := fmt.Sprintf("%.0f", value)

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart
}
