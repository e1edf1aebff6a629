package config

import "strings"

// CovType enumerates supported covariance estimators for the model fit.
type CovType string

const (
	CovNonRobust CovType = "nonrobust"
	CovHC1       CovType = "HC1"
	CovCluster   CovType = "cluster"
)

var covTypeAliases = map[string]CovType{
	"nonrobust": CovNonRobust,
	"ols":       CovNonRobust,
	"hc1":       CovHC1,
	"robust":    CovHC1,
	"cluster":   CovCluster,
	"clustered": CovCluster,
}

// LookupCovType maps a raw string (canonical name or alias) to a supported
// CovType. The second return is false for unrecognized values.
func LookupCovType(raw string) (CovType, bool) {
	ct, ok := covTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ct, ok
}

// NormalizeCovType maps a raw string to a supported CovType, defaulting to cluster.
func NormalizeCovType(raw string) CovType {
	if ct, ok := LookupCovType(raw); ok {
		return ct
	}
	return CovCluster
}

// LogLevel enumerates supported logging levels (mapped onto slog levels).
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel maps a raw string to a supported LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NormalizeLogFormat maps a raw string to a supported LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(raw), "json") {
		return LogFormatJSON
	}
	return LogFormatText
}
