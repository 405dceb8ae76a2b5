package arr

import (
	"math"
	"testing"

	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/datetime"
)

func TestDisaggregateQuartersShape(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	if len(quarterly) != constants.ForecastQuarters {
		t.Fatalf("DisaggregateQuarters() returned %d rows, expected %d", len(quarterly), constants.ForecastQuarters)
	}

	// Reference date in 2025 puts the first quarter end at 2026-03-31
	if quarterly[0].Date.Format(datetime.DateTimeLayout) != "2026-03-31" {
		t.Errorf("first quarter date = %s, expected 2026-03-31", quarterly[0].Date.Format(datetime.DateTimeLayout))
	}
	if quarterly[len(quarterly)-1].Date.Format(datetime.DateTimeLayout) != "2030-12-31" {
		t.Errorf("last quarter date = %s, expected 2030-12-31",
			quarterly[len(quarterly)-1].Date.Format(datetime.DateTimeLayout))
	}

	for i, row := range quarterly {
		if row.Quarter != i%4+1 {
			t.Errorf("row %d quarter = %d, expected %d", i, row.Quarter, i%4+1)
		}
		if row.Year != 2026+i/4 {
			t.Errorf("row %d year = %d, expected %d", i, row.Year, 2026+i/4)
		}
	}
}

func TestDisaggregateQuartersKnownScenario(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	// Year 1 with even seasonality: 360k new logo and 240k expansion split
	// evenly, 100k churn spread evenly
	for q := 0; q < 4; q++ {
		row := quarterly[q]
		if math.Abs(row.NewLogoBookings-90000) > constants.CurrencyTolerance {
			t.Errorf("Q%d new logo = %v, expected 90000", q+1, row.NewLogoBookings)
		}
		if math.Abs(row.ExpansionBookings-60000) > constants.CurrencyTolerance {
			t.Errorf("Q%d expansion = %v, expected 60000", q+1, row.ExpansionBookings)
		}
		if math.Abs(row.ChurnDownsell-(-25000)) > constants.CurrencyTolerance {
			t.Errorf("Q%d churn = %v, expected -25000", q+1, row.ChurnDownsell)
		}
	}

	expectedEndings := []float64{1125000, 1250000, 1375000, 1500000}
	for q, expected := range expectedEndings {
		if math.Abs(quarterly[q].EndingARR-expected) > constants.CurrencyTolerance {
			t.Errorf("Q%d ending ARR = %v, expected %v", q+1, quarterly[q].EndingARR, expected)
		}
	}
}

func TestDisaggregateQuartersRollUp(t *testing.T) {
	a := testAssumptions()
	a.Seasonality = [constants.QuartersPerYear]float64{0.2, 0.25, 0.25, 0.3}
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	for year := 1; year <= constants.ForecastYears; year++ {
		var newLogo, expansion, churn float64
		for q := 0; q < constants.QuartersPerYear; q++ {
			row := quarterly[(year-1)*constants.QuartersPerYear+q]
			newLogo += row.NewLogoBookings
			expansion += row.ExpansionBookings
			churn += row.ChurnDownsell
		}

		annualRow := annual[year]
		if math.Abs(newLogo-annualRow.NewLogoBookings) > constants.CurrencyTolerance {
			t.Errorf("year %d quarterly new logo sums to %v, annual has %v", year, newLogo, annualRow.NewLogoBookings)
		}
		if math.Abs(expansion-annualRow.ExpansionBookings) > constants.CurrencyTolerance {
			t.Errorf("year %d quarterly expansion sums to %v, annual has %v", year, expansion, annualRow.ExpansionBookings)
		}
		if math.Abs(churn-annualRow.ChurnDownsell) > constants.CurrencyTolerance {
			t.Errorf("year %d quarterly churn sums to %v, annual has %v", year, churn, annualRow.ChurnDownsell)
		}

		q4 := quarterly[(year-1)*constants.QuartersPerYear+3]
		if math.Abs(q4.EndingARR-annualRow.EndingARR) > constants.CurrencyTolerance {
			t.Errorf("year %d Q4 ending ARR = %v, annual ending is %v", year, q4.EndingARR, annualRow.EndingARR)
		}
	}
}

func TestDisaggregateQuartersChaining(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	if quarterly[0].BeginningARR != annual[0].EndingARR {
		t.Errorf("first quarter beginning ARR = %v, expected starting position %v",
			quarterly[0].BeginningARR, annual[0].EndingARR)
	}

	for i := 1; i < len(quarterly); i++ {
		if quarterly[i].BeginningARR != quarterly[i-1].EndingARR {
			t.Errorf("quarter %d beginning ARR %v does not chain from prior ending %v",
				i+1, quarterly[i].BeginningARR, quarterly[i-1].EndingARR)
		}
	}

	for i, row := range quarterly {
		if math.Abs(row.Check) > constants.CurrencyTolerance {
			t.Errorf("quarter %d check column = %v, expected ~0", i+1, row.Check)
		}
	}
}

func TestDisaggregateQuartersSeasonalWeights(t *testing.T) {
	a := testAssumptions()
	a.Seasonality = [constants.QuartersPerYear]float64{0.1, 0.2, 0.3, 0.4}
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	for year := 1; year <= constants.ForecastYears; year++ {
		annualRow := annual[year]
		for q := 0; q < constants.QuartersPerYear; q++ {
			row := quarterly[(year-1)*constants.QuartersPerYear+q]
			expectedNewLogo := annualRow.NewLogoBookings * a.Seasonality[q]
			if math.Abs(row.NewLogoBookings-expectedNewLogo) > constants.CurrencyTolerance {
				t.Errorf("year %d Q%d new logo = %v, expected %v", year, q+1, row.NewLogoBookings, expectedNewLogo)
			}

			// Churn ignores seasonality and always splits evenly
			if row.ChurnDownsell != annualRow.ChurnDownsell/constants.QuartersPerYear {
				t.Errorf("year %d Q%d churn = %v, expected even share %v",
					year, q+1, row.ChurnDownsell, annualRow.ChurnDownsell/constants.QuartersPerYear)
			}
		}
	}
}

func TestDisaggregateQuartersNetRetention(t *testing.T) {
	a := testAssumptions()
	annual := AnnualWaterfall(a)
	quarterly := DisaggregateQuarters(a, annual)

	// Year 1 Q1: (1000000 + 60000 - 25000) / 1000000
	if math.Abs(quarterly[0].NetRetention-1.035) > 0.0001 {
		t.Errorf("Q1 net retention = %v, expected 1.035", quarterly[0].NetRetention)
	}

	for i, row := range quarterly {
		if row.GrossRetention != a.GrossRetention {
			t.Errorf("quarter %d gross retention = %v, expected %v", i+1, row.GrossRetention, a.GrossRetention)
		}
	}
}
