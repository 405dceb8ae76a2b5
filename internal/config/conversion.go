// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"
	"time"

	"github.com/iwvelando/arr-forecast/pkg/arr"
	"github.com/iwvelando/arr-forecast/pkg/constants"
)

// ResolvedScenario is an active scenario merged with the common assumptions
// and converted into engine inputs.
type ResolvedScenario struct {
	Name        string
	Assumptions arr.Assumptions
}

// ResolveScenarios merges each active scenario with the common assumptions
// and converts the result into engine inputs. Inactive scenarios are skipped.
func (c *Configuration) ResolveScenarios() ([]ResolvedScenario, error) {
	return c.ResolveScenariosWithFixedTime(time.Now())
}

// ResolveScenariosWithFixedTime resolves scenarios using a fixed time for any
// scenario that does not specify a reference date. The fixed time is
// injectable for testing.
func (c *Configuration) ResolveScenariosWithFixedTime(fixedTime time.Time) ([]ResolvedScenario, error) {
	var resolved []ResolvedScenario
	for _, scenario := range c.Scenarios {
		if !scenario.Active {
			continue
		}
		merged := scenario.merged(c.Common)
		assumptions, err := merged.toEngine(fixedTime)
		if err != nil {
			return nil, fmt.Errorf("scenario '%s': %w", scenario.Name, err)
		}
		resolved = append(resolved, ResolvedScenario{Name: scenario.Name, Assumptions: assumptions})
	}

	if len(resolved) == 0 {
		return nil, fmt.Errorf("configuration does not define any active scenarios")
	}
	return resolved, nil
}

// merged overlays the scenario's overrides onto the common assumptions.
func (s Scenario) merged(common Assumptions) Assumptions {
	out := common
	if s.CurrentARR != nil {
		out.CurrentARR = *s.CurrentARR
	}
	if s.ReferenceDate != "" {
		out.ReferenceDate = s.ReferenceDate
	}
	if len(s.GrowthRates) > 0 {
		out.GrowthRates = s.GrowthRates
	}
	if s.GrossRetention != nil {
		out.GrossRetention = *s.GrossRetention
	}
	if len(s.NewBusinessSplit) > 0 {
		out.NewBusinessSplit = s.NewBusinessSplit
	}
	if len(s.Seasonality) > 0 {
		out.Seasonality = s.Seasonality
	}
	return out
}

// toEngine converts file-level assumptions into engine inputs, enforcing the
// five-year, four-quarter shape and parsing the reference date. An empty
// reference date falls back to the given time.
func (a Assumptions) toEngine(fixedTime time.Time) (arr.Assumptions, error) {
	if len(a.GrowthRates) != constants.ForecastYears {
		return arr.Assumptions{}, fmt.Errorf("growthRates must hold exactly %d values, got %d",
			constants.ForecastYears, len(a.GrowthRates))
	}
	if len(a.NewBusinessSplit) != constants.ForecastYears {
		return arr.Assumptions{}, fmt.Errorf("newBusinessSplit must hold exactly %d values, got %d",
			constants.ForecastYears, len(a.NewBusinessSplit))
	}
	if len(a.Seasonality) != constants.QuartersPerYear {
		return arr.Assumptions{}, fmt.Errorf("seasonality must hold exactly %d values, got %d",
			constants.QuartersPerYear, len(a.Seasonality))
	}

	referenceDate := fixedTime
	if a.ReferenceDate != "" {
		parsed, err := time.Parse(DateTimeLayout, a.ReferenceDate)
		if err != nil {
			return arr.Assumptions{}, fmt.Errorf("failed to parse referenceDate %q: %w", a.ReferenceDate, err)
		}
		referenceDate = parsed
	}

	engine := arr.Assumptions{
		CurrentARR:     a.CurrentARR,
		ReferenceDate:  referenceDate,
		GrossRetention: a.GrossRetention,
	}
	copy(engine.GrowthRates[:], a.GrowthRates)
	copy(engine.NewBusinessSplit[:], a.NewBusinessSplit)
	copy(engine.Seasonality[:], a.Seasonality)
	return engine, nil
}
