package arr

import (
	"math"

	"github.com/iwvelando/arr-forecast/pkg/constants"
)

// CAGR returns the compound annual growth rate between two values, expressed
// as a percentage (100.0 means the value doubled over one year). Non-positive
// endpoints or a non-positive period yield 0 since the rate is undefined
// there.
func CAGR(startValue, endValue, years float64) float64 {
	if startValue <= 0 || endValue <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(endValue/startValue, 1/years) - 1) * constants.PercentageMultiplier
}

// BookingsCAGR returns the compound growth rate of total bookings from the
// first forecast year to the last, expressed as a percentage. Four compounding
// periods separate year 1 from year 5.
func BookingsCAGR(annual []AnnualRow) float64 {
	if len(annual) < 2 {
		return 0
	}
	first := annual[1].TotalBookings()
	last := annual[len(annual)-1].TotalBookings()
	return CAGR(first, last, constants.BookingsCAGRPeriods)
}

// QuarterlyYoYGrowth returns the year-over-year growth of ending ARR for each
// quarter, expressed as a percentage. The first four quarters have no
// prior-year comparison and report NaN, as does any quarter whose prior-year
// ending ARR is zero.
func QuarterlyYoYGrowth(quarterly []QuarterRow) []float64 {
	growth := make([]float64, len(quarterly))
	for i := range quarterly {
		if i < constants.QuartersPerYear {
			growth[i] = math.NaN()
			continue
		}
		prior := quarterly[i-constants.QuartersPerYear].EndingARR
		if prior == 0 {
			growth[i] = math.NaN()
			continue
		}
		growth[i] = (quarterly[i].EndingARR/prior - 1) * constants.PercentageMultiplier
	}
	return growth
}
