// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/arr-forecast/internal/forecast"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(results []forecast.Forecast) {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		fmt.Printf("--- Results for scenario %s ---\n", result.Name)
		summary := result.Summary
		_, _ = p.Printf("Current ARR:     $%.0f\n", summary.CurrentARR)
		_, _ = p.Printf("Year %d ARR:      $%.0f\n", constants.ForecastYears, summary.FinalARR)
		_, _ = p.Printf("ARR CAGR:        %.1f%%\n", summary.ARRCAGR)
		_, _ = p.Printf("Bookings CAGR:   %.1f%%\n", summary.BookingsCAGR)
		_, _ = p.Printf("Total Bookings:  $%.0f\n", summary.TotalBookings)
		_, _ = p.Printf("Total Churn:     $%.0f\n", summary.TotalChurn)
		_, _ = p.Printf("Growth Multiple: %.2fx\n", summary.GrowthMultiple)

		fmt.Printf("\nAnnual Forecast\n")
		fmt.Printf("Year | Beginning ARR | New Logo Bookings | Expansion Bookings | Churn & Downsell | Ending ARR | Gross Ret | Net Ret\n")
		fmt.Printf("____ | _____________ | _________________ | __________________ | ________________ | __________ | _________ | _______\n")
		for _, row := range result.Annual {
			_, _ = p.Printf("%4d | $%.0f | $%.0f | $%.0f | $%.0f | $%.0f | %s | %s\n",
				row.Year, row.BeginningARR, row.NewLogoBookings, row.ExpansionBookings,
				row.ChurnDownsell, row.EndingARR,
				format.Percent(row.GrossRetention), format.Percent(row.NetRetention))
		}

		fmt.Printf("\nQuarterly Forecast\n")
		fmt.Printf("Date       | Qtr | Beginning ARR | New Logo Bookings | Expansion Bookings | Churn & Downsell | Ending ARR | Net Ret\n")
		fmt.Printf("__________ | ___ | _____________ | _________________ | __________________ | ________________ | __________ | _______\n")
		for _, row := range result.Quarterly {
			_, _ = p.Printf("%s | Q%d  | $%.0f | $%.0f | $%.0f | $%.0f | $%.0f | %s\n",
				row.Date.Format(constants.DateTimeLayout), row.Quarter,
				row.BeginningARR, row.NewLogoBookings, row.ExpansionBookings,
				row.ChurnDownsell, row.EndingARR, format.Percent(row.NetRetention))
		}
		if len(results) > 1 {
			fmt.Printf("\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(results []forecast.Forecast) {
	fmt.Print(CsvString(results))
}

// CsvString renders the forecast as a comma-separated value document with the
// same layout as the spreadsheet export: a header, then per scenario the
// assumptions block followed by the annual and quarterly tables. Every cell is
// quoted so currency separators survive the delimiter.
func CsvString(results []forecast.Forecast) string {
	return csvDocument(results, time.Now())
}

func csvDocument(results []forecast.Forecast, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("\"ARR Forecast - Export\"\n")
	fmt.Fprintf(&b, "\"Generated on\",\"%s\"\n", generatedAt.Format("2006-01-02 15:04:05"))
	for _, result := range results {
		b.WriteString("\n")
		writeScenarioCsv(&b, result)
	}
	return b.String()
}

func writeScenarioCsv(b *strings.Builder, result forecast.Forecast) {
	a := result.Assumptions
	fmt.Fprintf(b, "\"SCENARIO\",\"%s\"\n\n", result.Name)

	b.WriteString("\"ASSUMPTIONS\"\n")
	fmt.Fprintf(b, "\"Current ARR\",\"%s\"\n", format.Currency(a.CurrentARR))
	fmt.Fprintf(b, "\"Reference Date\",\"%s\"\n", a.ReferenceDate.Format(constants.DateTimeLayout))
	fmt.Fprintf(b, "\"Gross Retention Rate\",\"%s\"\n", format.WholePercent(a.GrossRetention))
	b.WriteString("\n\"Growth Rates\"\n")
	for i, rate := range a.GrowthRates {
		fmt.Fprintf(b, "\"Y%d\",\"%s\"\n", i+1, format.WholePercent(rate))
	}
	b.WriteString("\n\"New Business Split by Year\"\n")
	for i, split := range a.NewBusinessSplit {
		fmt.Fprintf(b, "\"Y%d\",\"%s\"\n", i+1, format.WholePercent(split))
	}
	b.WriteString("\n\"Seasonality Factors\"\n")
	for i, weight := range a.Seasonality {
		fmt.Fprintf(b, "\"Q%d\",\"%s\"\n", i+1, format.WholePercent(weight))
	}

	b.WriteString("\n\"ANNUAL FORECAST\"\n")
	b.WriteString("\"Year\",\"Beginning ARR\",\"New Logo Bookings\",\"Expansion Bookings\",\"Churn & Downsell\",\"Ending ARR\",\"Check\",\"Gross Retention\",\"Net Retention\"\n")
	for _, row := range result.Annual {
		fmt.Fprintf(b, "\"%d\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%.2f\",\"%s\",\"%s\"\n",
			row.Year,
			format.NumericCurrency(row.BeginningARR),
			format.NumericCurrency(row.NewLogoBookings),
			format.NumericCurrency(row.ExpansionBookings),
			format.NumericCurrency(row.ChurnDownsell),
			format.NumericCurrency(row.EndingARR),
			row.Check,
			format.Percent(row.GrossRetention),
			format.Percent(row.NetRetention))
	}

	b.WriteString("\n\"QUARTERLY FORECAST\"\n")
	b.WriteString("\"Date\",\"Year\",\"Quarter\",\"Beginning ARR\",\"New Logo Bookings\",\"Expansion Bookings\",\"Churn & Downsell\",\"Ending ARR\",\"Net Retention\"\n")
	for _, row := range result.Quarterly {
		fmt.Fprintf(b, "\"%s\",\"%d\",\"Q%d\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\",\"%s\"\n",
			row.Date.Format(constants.DateTimeLayout),
			row.Year,
			row.Quarter,
			format.NumericCurrency(row.BeginningARR),
			format.NumericCurrency(row.NewLogoBookings),
			format.NumericCurrency(row.ExpansionBookings),
			format.NumericCurrency(row.ChurnDownsell),
			format.NumericCurrency(row.EndingARR),
			format.Percent(row.NetRetention))
	}
}

// SummaryFormat outputs the executive summary for each scenario.
func SummaryFormat(results []forecast.Forecast) {
	fmt.Print(SummaryString(results))
}

// SummaryString renders the executive summary as a comma-separated value
// document: headline metrics as Metric/Value rows followed by an echo of the
// driving assumptions, without the full tables.
func SummaryString(results []forecast.Forecast) string {
	var b strings.Builder
	for i, result := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		writeScenarioSummary(&b, result)
	}
	return b.String()
}

func writeScenarioSummary(b *strings.Builder, result forecast.Forecast) {
	a := result.Assumptions
	summary := result.Summary
	fmt.Fprintf(b, "\"SCENARIO\",\"%s\"\n\n", result.Name)

	b.WriteString("\"Metric\",\"Value\"\n")
	fmt.Fprintf(b, "\"Current ARR\",\"%s\"\n", format.Currency(summary.CurrentARR))
	fmt.Fprintf(b, "\"Year %d ARR\",\"%s\"\n", constants.ForecastYears, format.Currency(summary.FinalARR))
	fmt.Fprintf(b, "\"%d-Year ARR CAGR\",\"%.1f%%\"\n", constants.ForecastYears, summary.ARRCAGR)
	fmt.Fprintf(b, "\"%d-Year Bookings CAGR\",\"%.1f%%\"\n", constants.ForecastYears, summary.BookingsCAGR)
	b.WriteString("\"\",\"\"\n")
	b.WriteString("\"Assumptions\",\"\"\n")
	fmt.Fprintf(b, "\"Gross Retention Rate\",\"%s\"\n", format.WholePercent(a.GrossRetention))
	b.WriteString("\"\",\"\"\n")
	b.WriteString("\"New Business Split by Year\",\"\"\n")
	for i, split := range a.NewBusinessSplit {
		fmt.Fprintf(b, "\"Y%d New Business Split\",\"%s\"\n", i+1, format.WholePercent(split))
	}
	b.WriteString("\"\",\"\"\n")
	b.WriteString("\"Seasonality Factors\",\"\"\n")
	for i, weight := range a.Seasonality {
		fmt.Fprintf(b, "\"Q%d Seasonality\",\"%s\"\n", i+1, format.WholePercent(weight))
	}
}
