package main

import (
	"flag"
	"fmt"

	"github.com/iwvelando/arr-forecast/internal/config"
	"github.com/iwvelando/arr-forecast/internal/forecast"
	"github.com/iwvelando/arr-forecast/internal/logging"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/output"
	"github.com/iwvelando/arr-forecast/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, summary")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.NewLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Resolve scenarios and check the assumptions before computing anything
	resolved, err := conf.ResolveScenarios()
	if err != nil {
		logger.Fatal("failed to resolve scenarios",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	blocked := false
	for _, scenario := range resolved {
		violations := validation.ValidateAssumptions(scenario.Assumptions)
		for _, warning := range validation.WarningMessages(violations) {
			logger.Warn(fmt.Sprintf("Scenario '%s': %s", scenario.Name, warning),
				zap.String("op", "main"),
			)
		}
		for _, problem := range validation.ErrorMessages(violations) {
			logger.Error(fmt.Sprintf("Scenario '%s': %s", scenario.Name, problem),
				zap.String("op", "main"),
			)
			blocked = true
		}
	}
	if blocked {
		logger.Fatal("configuration failed validation",
			zap.String("op", "main"),
		)
	}

	// Run the engine to get the Forecast for each scenario.
	results, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		logger.Fatal("failed to compute forecast",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(results)
	case constants.OutputFormatCSV:
		output.CsvFormat(results)
	case constants.OutputFormatSummary:
		output.SummaryFormat(results)
	}
}
