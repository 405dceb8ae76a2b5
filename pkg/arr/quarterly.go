package arr

import (
	"time"

	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/datetime"
	"github.com/iwvelando/arr-forecast/pkg/mathutil"
)

// QuarterRow is one quarter of the disaggregated forecast. Date is the
// quarter-end date; Year and Quarter are its calendar coordinates.
type QuarterRow struct {
	Date              time.Time
	Year              int
	Quarter           int
	BeginningARR      float64
	NewLogoBookings   float64
	ExpansionBookings float64
	ChurnDownsell     float64 // stored negative or zero
	EndingARR         float64
	GrossRetention    float64
	NetRetention      float64
	Check             float64
}

// TotalBookings returns the combined new logo and expansion bookings.
func (r QuarterRow) TotalBookings() float64 {
	return r.NewLogoBookings + r.ExpansionBookings
}

// DisaggregateQuarters splits the annual flows across the quarterly calendar.
// Bookings follow the seasonality weights; churn spreads evenly across the
// four quarters. The chain starts from the year 0 ending position and each
// year's four quarters sum back to that year's annual flows.
func DisaggregateQuarters(a Assumptions, annual []AnnualRow) []QuarterRow {
	calendar := datetime.ForecastQuarterEnds(a.ReferenceDate, constants.ForecastYears)
	rows := make([]QuarterRow, 0, constants.ForecastQuarters)
	previousEnding := annual[0].EndingARR

	for year := 1; year <= constants.ForecastYears; year++ {
		annualRow := annual[year]
		quarterlyChurn := annualRow.ChurnDownsell / constants.QuartersPerYear

		for quarter := 0; quarter < constants.QuartersPerYear; quarter++ {
			date := calendar[(year-1)*constants.QuartersPerYear+quarter]
			newLogo := annualRow.NewLogoBookings * a.Seasonality[quarter]
			expansion := annualRow.ExpansionBookings * a.Seasonality[quarter]
			beginning := previousEnding
			ending := beginning + newLogo + expansion + quarterlyChurn

			rows = append(rows, QuarterRow{
				Date:              date,
				Year:              date.Year(),
				Quarter:           datetime.QuarterOf(date),
				BeginningARR:      beginning,
				NewLogoBookings:   newLogo,
				ExpansionBookings: expansion,
				ChurnDownsell:     quarterlyChurn,
				EndingARR:         ending,
				GrossRetention:    a.GrossRetention,
				NetRetention:      NetRetention(beginning, expansion, quarterlyChurn),
				Check:             mathutil.Round(beginning + newLogo + expansion + quarterlyChurn - ending),
			})
			previousEnding = ending
		}
	}
	return rows
}
