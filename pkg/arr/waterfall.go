package arr

import (
	"math"

	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/mathutil"
)

// AnnualRow is one year of the ARR waterfall. Year 0 is the seed row holding
// the starting position with no flows; years 1 through 5 carry the modeled
// flows.
type AnnualRow struct {
	Year              int
	BeginningARR      float64
	NewLogoBookings   float64
	ExpansionBookings float64
	ChurnDownsell     float64 // stored negative or zero
	EndingARR         float64
	GrossRetention    float64
	NetRetention      float64 // NaN when beginning ARR is not positive
	Check             float64 // conservation residual
}

// TotalBookings returns the combined new logo and expansion bookings.
func (r AnnualRow) TotalBookings() float64 {
	return r.NewLogoBookings + r.ExpansionBookings
}

// AnnualWaterfall builds the annual table from the assumptions. Each year
// targets an ending ARR of beginning * (1 + growth); churn removes
// (1 - gross retention) of beginning ARR, and bookings are the residual
// required to still reach the target. Bookings split between new logo and
// expansion per the configured ratio.
func AnnualWaterfall(a Assumptions) []AnnualRow {
	rows := make([]AnnualRow, constants.ForecastYears+1)
	rows[0] = AnnualRow{
		Year:           0,
		BeginningARR:   a.CurrentARR,
		EndingARR:      a.CurrentARR,
		GrossRetention: a.GrossRetention,
		NetRetention:   NetRetention(a.CurrentARR, 0, 0),
	}

	for year := 1; year <= constants.ForecastYears; year++ {
		beginning := rows[year-1].EndingARR
		targetEnding := beginning * (1 + a.GrowthRates[year-1])
		churnMagnitude := beginning * (1 - a.GrossRetention)
		bookingsRequired := targetEnding - beginning + churnMagnitude
		newLogo := bookingsRequired * a.NewBusinessSplit[year-1]
		expansion := bookingsRequired * (1 - a.NewBusinessSplit[year-1])
		churn := -churnMagnitude
		ending := beginning + newLogo + expansion + churn

		rows[year] = AnnualRow{
			Year:              year,
			BeginningARR:      beginning,
			NewLogoBookings:   newLogo,
			ExpansionBookings: expansion,
			ChurnDownsell:     churn,
			EndingARR:         ending,
			GrossRetention:    a.GrossRetention,
			NetRetention:      NetRetention(beginning, expansion, churn),
			Check:             mathutil.Round(beginning + newLogo + expansion + churn - ending),
		}
	}
	return rows
}

// NetRetention computes (beginning + expansion + churn) / beginning, the
// fraction of the base that would remain after a year with no new logo sales.
// Churn is passed as a negative flow. The ratio is undefined on a
// non-positive base and comes back NaN.
func NetRetention(beginning, expansion, churn float64) float64 {
	if beginning <= 0 {
		return math.NaN()
	}
	return (beginning + expansion + churn) / beginning
}
