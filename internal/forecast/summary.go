package forecast

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/iwvelando/arr-forecast/pkg/arr"
	"github.com/iwvelando/arr-forecast/pkg/constants"
)

// Summary holds the headline metrics derived from one scenario's tables.
type Summary struct {
	CurrentARR             float64
	FinalARR               float64
	ARRCAGR                float64 // percent
	BookingsCAGR           float64 // percent
	TotalNewLogoBookings   float64
	TotalExpansionBookings float64
	TotalBookings          float64
	TotalChurn             float64 // magnitude of ARR lost, non-negative
	AverageGrossRetention  float64
	AverageNetRetention    float64 // NaN when every quarter's base was non-positive
	TotalGrowth            float64
	GrowthMultiple         float64
}

// Summarize computes the headline metrics from the annual and quarterly
// tables.
func Summarize(annual []arr.AnnualRow, quarterly []arr.QuarterRow) Summary {
	newLogo := make([]float64, 0, len(annual))
	expansion := make([]float64, 0, len(annual))
	churn := make([]float64, 0, len(annual))
	for _, row := range annual {
		newLogo = append(newLogo, row.NewLogoBookings)
		expansion = append(expansion, row.ExpansionBookings)
		churn = append(churn, row.ChurnDownsell)
	}

	gross := make([]float64, 0, len(quarterly))
	net := make([]float64, 0, len(quarterly))
	for _, row := range quarterly {
		gross = append(gross, row.GrossRetention)
		if !math.IsNaN(row.NetRetention) {
			net = append(net, row.NetRetention)
		}
	}

	summary := Summary{
		TotalNewLogoBookings:   floats.Sum(newLogo),
		TotalExpansionBookings: floats.Sum(expansion),
		TotalChurn:             math.Abs(floats.Sum(churn)),
		AverageGrossRetention:  mean(gross),
		AverageNetRetention:    mean(net),
		BookingsCAGR:           arr.BookingsCAGR(annual),
	}
	summary.TotalBookings = summary.TotalNewLogoBookings + summary.TotalExpansionBookings

	if len(annual) > 0 {
		summary.CurrentARR = annual[0].EndingARR
		summary.FinalARR = annual[len(annual)-1].EndingARR
		summary.ARRCAGR = arr.CAGR(summary.CurrentARR, summary.FinalARR, constants.ForecastYears)
		summary.TotalGrowth = summary.FinalARR - summary.CurrentARR
		if summary.CurrentARR > 0 {
			summary.GrowthMultiple = summary.FinalARR / summary.CurrentARR
		}
	}
	return summary
}

// mean wraps stat.Mean with an empty-slice guard; the net retention series
// can be empty after NaN filtering.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}
