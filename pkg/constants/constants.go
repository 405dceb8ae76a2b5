// Package constants provides shared constants for the arr-forecast application.
package constants

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = "2006-01-02"

// Forecast shape constants
const (
	// ForecastYears is the number of forecast years beyond the seed year
	ForecastYears = 5

	// QuartersPerYear is the number of quarters each forecast year splits into
	QuartersPerYear = 4

	// ForecastQuarters is the total quarter count across the forecast horizon
	ForecastQuarters = ForecastYears * QuartersPerYear
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// BookingsCAGRPeriods is the number of compounding periods between the
	// first and last forecast year's bookings
	BookingsCAGRPeriods = ForecastYears - 1

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatSummary is the executive-summary output format
	OutputFormatSummary = "summary"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API server
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultCacheCapacity is the default number of computed forecasts kept in memory
	DefaultCacheCapacity = 64
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// SeasonalityTolerance is how far the four seasonality weights may drift
	// from summing to exactly 1.0
	SeasonalityTolerance = 0.001

	// GrowthRateSanityCap is the growth-rate fraction above which a rate is
	// flagged as unreasonably high (10.0 = 1000%)
	GrowthRateSanityCap = 10.0
)
