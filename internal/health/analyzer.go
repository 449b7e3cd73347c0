package health

import (
	"strings"

	"go.uber.org/zap/zapcore"

	"consent-expiry/internal/logs"
	"consent-expiry/internal/metrics"
)

const (
	recentLogWindow        = 100
	storeWarningsThreshold = 3
)

// LogSource provides recent log entries.
type LogSource interface {
	GetLast(n int) []logs.Entry
}

// Analyzer converts metrics and recent logs into a health report.
type Analyzer struct {
	metrics *metrics.Registry
	logs    LogSource
	rules   []Rule
}

// NewAnalyzer creates an analyzer with the default rule set.
func NewAnalyzer(reg *metrics.Registry, source LogSource) *Analyzer {
	return &Analyzer{
		metrics: reg,
		logs:    source,
		rules: []Rule{
			StoreAccessRule,
			MalformedRecordRule,
			SweepFailureRule,
		},
	}
}

// Analyze evaluates metrics and logs and returns a health report.
func (a *Analyzer) Analyze() Report {
	snapshot := a.metrics.Snapshot()

	var (
		signals         = []string{}
		recommendations = []string{}
		status          = StatusOK
	)

	for _, rule := range a.rules {
		result := rule(snapshot)
		if !result.Triggered {
			continue
		}
		signals = append(signals, result.Signal)
		recommendations = append(recommendations, result.Recommendation)
		status = escalate(status, result.Severity)
	}

	storeWarnings := 0
	panics := 0
	for _, entry := range a.logs.GetLast(recentLogWindow) {
		if entry.Level == zapcore.WarnLevel && strings.Contains(entry.Message, "store access failed") {
			storeWarnings++
		}
		if entry.Level >= zapcore.ErrorLevel && strings.Contains(entry.Message, "panic") {
			panics++
		}
	}

	if storeWarnings >= storeWarningsThreshold {
		signals = append(signals, "Repeated store access failures in recent logs")
		recommendations = append(recommendations, "Investigate store availability before the next sweep")
		status = escalate(status, StatusDegraded)
	}

	if panics > 0 {
		signals = append(signals, "Application panics detected in logs")
		recommendations = append(recommendations, "Inspect stack traces and stabilize error handling")
		status = StatusCritical
	}

	summary := "Service is healthy"
	if status != StatusOK {
		summary = "Service health issues detected"
	}

	return Report{
		OverallStatus:   status,
		Summary:         summary,
		Signals:         signals,
		Recommendations: recommendations,
	}
}
