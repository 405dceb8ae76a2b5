// Package datetime provides date utilities for the forecast calendar.
package datetime

import (
	"time"

	"github.com/iwvelando/arr-forecast/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// MustParseTime parses a date string using the given layout and panics on error.
// This is intended for use in tests where the date string is known to be valid.
func MustParseTime(layout, dateStr string) time.Time {
	t, err := time.Parse(layout, dateStr)
	if err != nil {
		panic(err)
	}
	return t
}

// QuarterOf returns the calendar quarter (1-4) containing the given date.
func QuarterOf(date time.Time) int {
	return (int(date.Month())-1)/3 + 1
}

// QuarterEnd returns the last day of the given calendar quarter.
func QuarterEnd(year, quarter int) time.Time {
	month := time.Month(quarter * 3)
	day := 31
	if month == time.June || month == time.September {
		day = 30
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ForecastQuarterEnds returns the quarter-end dates covering the given number
// of forecast years. The forecast calendar starts with the first full calendar
// year after the reference date, so a five-year forecast referenced anywhere
// in 2025 yields quarters ending 2026-03-31 through 2030-12-31.
func ForecastQuarterEnds(referenceDate time.Time, years int) []time.Time {
	startYear := referenceDate.Year() + 1
	dates := make([]time.Time, 0, years*constants.QuartersPerYear)
	for year := 0; year < years; year++ {
		for quarter := 1; quarter <= constants.QuartersPerYear; quarter++ {
			dates = append(dates, QuarterEnd(startYear+year, quarter))
		}
	}
	return dates
}
