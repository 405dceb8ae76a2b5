// Package arr implements the ARR waterfall model: annual bookings targeting,
// quarterly disaggregation, and the derived retention and growth metrics.
package arr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iwvelando/arr-forecast/pkg/constants"
)

// Assumptions holds the complete set of inputs for one forecast run. Rates
// are fractions rather than percentages: 0.5 means 50% growth and 0.9 means
// 90% gross retention.
type Assumptions struct {
	// CurrentARR is the annual recurring revenue at the reference date.
	CurrentARR float64

	// ReferenceDate anchors the forecast calendar; year 1 is the first full
	// calendar year after it.
	ReferenceDate time.Time

	// GrowthRates holds the target ending-ARR growth rate per forecast year.
	GrowthRates [constants.ForecastYears]float64

	// GrossRetention is the fraction of beginning ARR retained each year.
	GrossRetention float64

	// NewBusinessSplit is the fraction of each year's required bookings
	// attributed to new logos; the remainder is expansion.
	NewBusinessSplit [constants.ForecastYears]float64

	// Seasonality weights bookings across the four quarters of each year.
	Seasonality [constants.QuartersPerYear]float64
}

// Fingerprint returns a stable identifier for the assumptions, suitable for
// cache keys. The reference date contributes only its calendar date since the
// model ignores time of day.
func (a Assumptions) Fingerprint() string {
	canonical := struct {
		CurrentARR       float64   `yaml:"currentARR"`
		ReferenceDate    string    `yaml:"referenceDate"`
		GrowthRates      []float64 `yaml:"growthRates"`
		GrossRetention   float64   `yaml:"grossRetention"`
		NewBusinessSplit []float64 `yaml:"newBusinessSplit"`
		Seasonality      []float64 `yaml:"seasonality"`
	}{
		CurrentARR:       a.CurrentARR,
		ReferenceDate:    a.ReferenceDate.Format(constants.DateTimeLayout),
		GrowthRates:      a.GrowthRates[:],
		GrossRetention:   a.GrossRetention,
		NewBusinessSplit: a.NewBusinessSplit[:],
		Seasonality:      a.Seasonality[:],
	}
	data, err := yaml.Marshal(canonical)
	if err != nil {
		// Cannot happen for a flat struct of scalars, but never let the
		// fingerprint silently collapse to one value.
		data = []byte(fmt.Sprintf("%+v", a))
	}
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
