// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iwvelando/arr-forecast/internal/config"
	"github.com/iwvelando/arr-forecast/pkg/arr"
)

// Forecast holds the computed tables and headline metrics for one scenario.
type Forecast struct {
	Name        string
	Assumptions arr.Assumptions
	Annual      []arr.AnnualRow
	Quarterly   []arr.QuarterRow
	Summary     Summary
}

// GetForecast computes the Forecasts for all active Scenarios.
func GetForecast(logger *zap.Logger, conf config.Configuration) ([]Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
		}
	}

	resolved, err := conf.ResolveScenarios()
	if err != nil {
		return nil, err
	}

	results := make([]Forecast, 0, len(resolved))
	for _, scenario := range resolved {
		results = append(results, Compute(logger, scenario.Name, scenario.Assumptions))
	}
	return results, nil
}

// Compute builds the annual waterfall, the quarterly disaggregation, and the
// summary metrics for a single assumptions snapshot.
func Compute(logger *zap.Logger, name string, assumptions arr.Assumptions) Forecast {
	if logger == nil {
		logger = zap.NewNop()
	}

	annual := arr.AnnualWaterfall(assumptions)
	quarterly := arr.DisaggregateQuarters(assumptions, annual)

	if problems := arr.VerifyIntegrity(annual, quarterly); len(problems) > 0 {
		for _, problem := range problems {
			logger.Warn(fmt.Sprintf("forecast integrity check failed: %s", problem),
				zap.String("op", "forecast.Compute"),
				zap.String("scenario", name),
			)
		}
	}

	logger.Debug(fmt.Sprintf("computed forecast for scenario %s", name),
		zap.String("op", "forecast.Compute"),
		zap.Float64("endingARR", annual[len(annual)-1].EndingARR),
	)

	return Forecast{
		Name:        name,
		Assumptions: assumptions,
		Annual:      annual,
		Quarterly:   quarterly,
		Summary:     Summarize(annual, quarterly),
	}
}
