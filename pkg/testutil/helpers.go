// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/arr-forecast/internal/forecast"
	"github.com/iwvelando/arr-forecast/pkg/arr"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/datetime"
)

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the forecast if found, nil otherwise.
func FindScenario(results []forecast.Forecast, name string) *forecast.Forecast {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// CannedAssumptions returns a fixed set of assumptions used across tests:
// $1M current ARR, growth tapering from 50% to 10%, 90% gross retention,
// a 60/40 new business split, and flat seasonality.
func CannedAssumptions() arr.Assumptions {
	return arr.Assumptions{
		CurrentARR:       1000000,
		ReferenceDate:    datetime.MustParseTime(datetime.DateTimeLayout, "2025-11-01"),
		GrowthRates:      [constants.ForecastYears]float64{0.5, 0.4, 0.3, 0.2, 0.1},
		GrossRetention:   0.9,
		NewBusinessSplit: [constants.ForecastYears]float64{0.6, 0.6, 0.6, 0.6, 0.6},
		Seasonality:      [constants.QuartersPerYear]float64{0.25, 0.25, 0.25, 0.25},
	}
}
