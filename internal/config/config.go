// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/arr-forecast/pkg/constants"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for arr-forecast.
type Configuration struct {
	Common    Assumptions   `yaml:"common,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios,omitempty"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, summary
}

// Assumptions holds the forecast inputs shared by all scenarios. Rates are
// fractions: 0.5 means 50%.
type Assumptions struct {
	CurrentARR       float64   `yaml:"currentARR,omitempty"`
	ReferenceDate    string    `yaml:"referenceDate,omitempty"`
	GrowthRates      []float64 `yaml:"growthRates,omitempty"`
	GrossRetention   float64   `yaml:"grossRetention,omitempty"`
	NewBusinessSplit []float64 `yaml:"newBusinessSplit,omitempty"`
	Seasonality      []float64 `yaml:"seasonality,omitempty"`
}

// Scenario holds a named set of assumption overrides applied on top of the
// common assumptions. Scalar overrides are pointers so an omitted field can
// be told apart from an explicit zero.
type Scenario struct {
	Name             string    `yaml:"name,omitempty"`
	Active           bool      `yaml:"active,omitempty"`
	CurrentARR       *float64  `yaml:"currentARR,omitempty"`
	ReferenceDate    string    `yaml:"referenceDate,omitempty"`
	GrowthRates      []float64 `yaml:"growthRates,omitempty"`
	GrossRetention   *float64  `yaml:"grossRetention,omitempty"`
	NewBusinessSplit []float64 `yaml:"newBusinessSplit,omitempty"`
	Seasonality      []float64 `yaml:"seasonality,omitempty"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	// Fold a local .env file into the environment if one exists
	_ = godotenv.Load()

	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory source such as an HTTP upload.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := yaml.Unmarshal(data, &configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Problems that must block a run surface as errors from
// ResolveScenarios instead.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	seen := make(map[string]bool)
	active := 0
	for _, scenario := range c.Scenarios {
		if seen[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is defined more than once", scenario.Name))
		}
		seen[scenario.Name] = true

		if scenario.Active {
			active++
		}
	}
	if active == 0 {
		warnings = append(warnings, "No active scenarios are defined; nothing will be computed")
	}

	return warnings
}
