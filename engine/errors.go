package engine

import "fmt"

// WarningCode identifies one class of data-quality issue.
type WarningCode string

const (
	WarnReordered         WarningCode = "timestamps_reordered"
	WarnDuplicateDropped  WarningCode = "duplicate_timestamps_dropped"
	WarnFieldMissing      WarningCode = "field_missing"
	WarnCadenceDoubled    WarningCode = "cadence_doubled"
	WarnElevationFiltered WarningCode = "elevation_noise_filtered"
	WarnDistanceEstimated WarningCode = "distance_estimated"
)

// Warning is a non-fatal data-quality note attached to the analysis result.
// Count carries how many samples or deltas the issue touched, when that is
// meaningful.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
	Count   int         `json:"count,omitempty"`
}

func warnf(code WarningCode, count int, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...), Count: count}
}

// ConfigurationError reports invalid pipeline configuration. It is raised
// before any sample processing so partial results are never produced.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Option, e.Reason)
}

func configErrorf(option, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Option: option, Reason: fmt.Sprintf(format, args...)}
}
