// Package validation provides assumption and output validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/arr-forecast/pkg/arr"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/mathutil"
)

// Severity classifies how a finding should be treated by callers.
type Severity string

const (
	// SeverityError marks findings that must block a forecast run.
	SeverityError Severity = "error"

	// SeverityWarning marks advisory findings that do not block a run.
	SeverityWarning Severity = "warning"
)

// Violation describes a single problem found in a set of assumptions.
type Violation struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// ValidateAssumptions checks the assumptions for range and consistency
// problems. Every check runs; nothing short-circuits, so callers can present
// the full list of findings at once. An empty result means the assumptions
// are ready for the engine.
func ValidateAssumptions(a arr.Assumptions) []Violation {
	var violations []Violation

	if a.CurrentARR <= 0 {
		violations = append(violations, Violation{
			Severity: SeverityError,
			Field:    "currentARR",
			Message:  "Current ARR must be greater than 0",
		})
	}

	for i, rate := range a.GrowthRates {
		year := i + 1
		if rate < 0 {
			violations = append(violations, Violation{
				Severity: SeverityError,
				Field:    "growthRates",
				Message:  fmt.Sprintf("Y%d growth rate cannot be negative", year),
			})
		} else if rate > constants.GrowthRateSanityCap {
			violations = append(violations, Violation{
				Severity: SeverityWarning,
				Field:    "growthRates",
				Message:  fmt.Sprintf("Y%d growth rate seems unreasonably high (>%.0f%%)", year, rate*constants.PercentageMultiplier),
			})
		}
	}

	if a.GrossRetention < 0 || a.GrossRetention > 1 {
		violations = append(violations, Violation{
			Severity: SeverityError,
			Field:    "grossRetention",
			Message:  "Gross retention rate must be between 0% and 100%",
		})
	}

	for i, split := range a.NewBusinessSplit {
		if split < 0 || split > 1 {
			violations = append(violations, Violation{
				Severity: SeverityError,
				Field:    "newBusinessSplit",
				Message:  fmt.Sprintf("Y%d new business split must be between 0%% and 100%%", i+1),
			})
		}
	}

	total := 0.0
	for i, weight := range a.Seasonality {
		if weight < 0 || weight > 1 {
			violations = append(violations, Violation{
				Severity: SeverityError,
				Field:    "seasonality",
				Message:  fmt.Sprintf("Q%d seasonality factor must be between 0%% and 100%%", i+1),
			})
		}
		total += weight
	}
	if !mathutil.SumsToOne(a.Seasonality[:]) {
		violations = append(violations, Violation{
			Severity: SeverityError,
			Field:    "seasonality",
			Message:  fmt.Sprintf("Seasonality factors must sum to 100%% (currently %.1f%%)", total*constants.PercentageMultiplier),
		})
	}

	return violations
}

// HasErrors reports whether any violation is blocking.
func HasErrors(violations []Violation) bool {
	for _, violation := range violations {
		if violation.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Messages flattens violations into their descriptive strings.
func Messages(violations []Violation) []string {
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.Message)
	}
	return messages
}

// ErrorMessages returns the messages of blocking violations only.
func ErrorMessages(violations []Violation) []string {
	var messages []string
	for _, violation := range violations {
		if violation.Severity == SeverityError {
			messages = append(messages, violation.Message)
		}
	}
	return messages
}

// WarningMessages returns the messages of advisory violations only.
func WarningMessages(violations []Violation) []string {
	var messages []string
	for _, violation := range violations {
		if violation.Severity == SeverityWarning {
			messages = append(messages, violation.Message)
		}
	}
	return messages
}
