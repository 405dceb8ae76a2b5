// Package server exposes the forecast pipeline over an HTTP JSON API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iwvelando/arr-forecast/internal/cache"
	"github.com/iwvelando/arr-forecast/internal/config"
	"github.com/iwvelando/arr-forecast/internal/forecast"
	"github.com/iwvelando/arr-forecast/pkg/arr"
	"github.com/iwvelando/arr-forecast/pkg/constants"
	"github.com/iwvelando/arr-forecast/pkg/output"
	"github.com/iwvelando/arr-forecast/pkg/validation"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         *cache.Cache
}

// NewHandler constructs the HTTP handler that serves the forecast API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, cacheCapacity int, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	if cacheCapacity <= 0 {
		cacheCapacity = constants.DefaultCacheCapacity
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		cache:         cache.New(logger, cacheCapacity),
	}

	mux := http.NewServeMux()

	// Forecast API endpoint (file upload)
	mux.HandleFunc("/api/forecast", h.handleForecast)

	// Forecast API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/forecast", h.handleForecastEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type forecastResponse struct {
	RunID      string                 `json:"runId"`
	Scenarios  []string               `json:"scenarios"`
	Results    []scenarioResult       `json:"results"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type scenarioResult struct {
	Name      string       `json:"name"`
	Cached    bool         `json:"cached"`
	Annual    []annualRow  `json:"annual"`
	Quarterly []quarterRow `json:"quarterly"`
	Summary   summaryBody  `json:"summary"`
	YoYGrowth []*float64   `json:"yoyGrowth"`
}

// NaN percentages map to null pointers so the JSON stays parseable.
type annualRow struct {
	Year              int      `json:"year"`
	BeginningARR      float64  `json:"beginningARR"`
	NewLogoBookings   float64  `json:"newLogoBookings"`
	ExpansionBookings float64  `json:"expansionBookings"`
	ChurnDownsell     float64  `json:"churnDownsell"`
	EndingARR         float64  `json:"endingARR"`
	GrossRetention    float64  `json:"grossRetention"`
	NetRetention      *float64 `json:"netRetention"`
	Check             float64  `json:"check"`
}

type quarterRow struct {
	Date              string   `json:"date"`
	Year              int      `json:"year"`
	Quarter           int      `json:"quarter"`
	BeginningARR      float64  `json:"beginningARR"`
	NewLogoBookings   float64  `json:"newLogoBookings"`
	ExpansionBookings float64  `json:"expansionBookings"`
	ChurnDownsell     float64  `json:"churnDownsell"`
	EndingARR         float64  `json:"endingARR"`
	NetRetention      *float64 `json:"netRetention"`
}

type summaryBody struct {
	CurrentARR             float64  `json:"currentARR"`
	FinalARR               float64  `json:"finalARR"`
	ARRCAGR                float64  `json:"arrCAGR"`
	BookingsCAGR           float64  `json:"bookingsCAGR"`
	TotalNewLogoBookings   float64  `json:"totalNewLogoBookings"`
	TotalExpansionBookings float64  `json:"totalExpansionBookings"`
	TotalBookings          float64  `json:"totalBookings"`
	TotalChurn             float64  `json:"totalChurn"`
	AverageGrossRetention  float64  `json:"averageGrossRetention"`
	AverageNetRetention    *float64 `json:"averageNetRetention"`
	TotalGrowth            float64  `json:"totalGrowth"`
	GrowthMultiple         float64  `json:"growthMultiple"`
}

type violationsResponse struct {
	Error      string                 `json:"error"`
	Violations []validation.Violation `json:"violations"`
}

func (h *handler) handleForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing configuration file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleForecast"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err))
		return
	}

	h.runForecast(w, configBytes, configMap, start, "server.handleForecast")
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleForecastEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleForecastEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleForecastEditor")
			return
		}
		configPayload = cfgMap
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleForecastEditor")
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), "server.handleForecastEditor")
		return
	}

	h.runForecast(w, configBytes, configMap, start, "server.handleForecastEditor")
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "common", "scenarios"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runForecast(w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	runID := uuid.NewString()

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	resolved, err := cfg.ResolveScenarios()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var violations []validation.Violation
	for _, scenario := range resolved {
		for _, violation := range validation.ValidateAssumptions(scenario.Assumptions) {
			violation.Field = fmt.Sprintf("%s.%s", scenario.Name, violation.Field)
			violations = append(violations, violation)
		}
	}
	if validation.HasErrors(violations) {
		h.logger.Error("forecast request rejected by validation",
			zap.String("op", op),
			zap.String("runId", runID),
			zap.Int("violations", len(violations)),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, violationsResponse{
			Error:      "configuration failed validation",
			Violations: violations,
		})
		return
	}
	warnings = append(warnings, validation.WarningMessages(violations)...)

	results := make([]forecast.Forecast, 0, len(resolved))
	cached := make([]bool, 0, len(resolved))
	for _, scenario := range resolved {
		fingerprint := scenario.Assumptions.Fingerprint()
		if hit, ok := h.cache.Get(fingerprint); ok {
			hit.Name = scenario.Name
			results = append(results, hit)
			cached = append(cached, true)
			continue
		}
		result := forecast.Compute(h.logger, scenario.Name, scenario.Assumptions)
		h.cache.Put(fingerprint, result)
		results = append(results, result)
		cached = append(cached, false)
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := forecastResponse{
		RunID:      runID,
		Scenarios:  extractScenarioNames(results),
		Results:    buildResults(results, cached),
		CSV:        output.CsvString(results),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("forecast computed",
		zap.String("op", op),
		zap.String("runId", runID),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleForecast")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("forecast request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func extractScenarioNames(results []forecast.Forecast) []string {
	names := make([]string, 0, len(results))
	for _, scenario := range results {
		names = append(names, scenario.Name)
	}
	return names
}

func buildResults(results []forecast.Forecast, cached []bool) []scenarioResult {
	out := make([]scenarioResult, 0, len(results))
	for i, result := range results {
		out = append(out, scenarioResult{
			Name:      result.Name,
			Cached:    cached[i],
			Annual:    buildAnnualRows(result.Annual),
			Quarterly: buildQuarterRows(result.Quarterly),
			Summary:   buildSummary(result.Summary),
			YoYGrowth: floatPtrSeries(arr.QuarterlyYoYGrowth(result.Quarterly)),
		})
	}
	return out
}

func buildAnnualRows(rows []arr.AnnualRow) []annualRow {
	out := make([]annualRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, annualRow{
			Year:              row.Year,
			BeginningARR:      row.BeginningARR,
			NewLogoBookings:   row.NewLogoBookings,
			ExpansionBookings: row.ExpansionBookings,
			ChurnDownsell:     row.ChurnDownsell,
			EndingARR:         row.EndingARR,
			GrossRetention:    row.GrossRetention,
			NetRetention:      floatPtr(row.NetRetention),
			Check:             row.Check,
		})
	}
	return out
}

func buildQuarterRows(rows []arr.QuarterRow) []quarterRow {
	out := make([]quarterRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, quarterRow{
			Date:              row.Date.Format(constants.DateTimeLayout),
			Year:              row.Year,
			Quarter:           row.Quarter,
			BeginningARR:      row.BeginningARR,
			NewLogoBookings:   row.NewLogoBookings,
			ExpansionBookings: row.ExpansionBookings,
			ChurnDownsell:     row.ChurnDownsell,
			EndingARR:         row.EndingARR,
			NetRetention:      floatPtr(row.NetRetention),
		})
	}
	return out
}

func buildSummary(summary forecast.Summary) summaryBody {
	return summaryBody{
		CurrentARR:             summary.CurrentARR,
		FinalARR:               summary.FinalARR,
		ARRCAGR:                summary.ARRCAGR,
		BookingsCAGR:           summary.BookingsCAGR,
		TotalNewLogoBookings:   summary.TotalNewLogoBookings,
		TotalExpansionBookings: summary.TotalExpansionBookings,
		TotalBookings:          summary.TotalBookings,
		TotalChurn:             summary.TotalChurn,
		AverageGrossRetention:  summary.AverageGrossRetention,
		AverageNetRetention:    floatPtr(summary.AverageNetRetention),
		TotalGrowth:            summary.TotalGrowth,
		GrowthMultiple:         summary.GrowthMultiple,
	}
}

func floatPtr(value float64) *float64 {
	if math.IsNaN(value) {
		return nil
	}
	v := value
	return &v
}

func floatPtrSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i, value := range values {
		out[i] = floatPtr(value)
	}
	return out
}
