package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"consent-expiry/internal/logs"
	"consent-expiry/internal/metrics"
)

func newBuffer() *logs.Buffer {
	return logs.NewBuffer(10, zapcore.DebugLevel)
}

func TestAnalyzer_OK(t *testing.T) {
	report := NewAnalyzer(metrics.NewRegistry(), newBuffer()).Analyze()

	assert.Equal(t, StatusOK, report.OverallStatus)
	assert.Equal(t, "Service is healthy", report.Summary)
	assert.Empty(t, report.Signals)
}

func TestAnalyzer_ExpiredRecordsAreHealthy(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Add(metrics.ConsentExpiredTotal, 5)

	report := NewAnalyzer(reg, newBuffer()).Analyze()
	assert.Equal(t, StatusOK, report.OverallStatus)
}

func TestAnalyzer_DegradedOnMalformedRecord(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Inc(metrics.ConsentMalformedTotal)

	report := NewAnalyzer(reg, newBuffer()).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Malformed consent records found")
}

func TestAnalyzer_CriticalOnStoreFailure(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Inc(metrics.ConsentMalformedTotal)
	reg.Inc(metrics.StoreAccessFailuresTotal)

	report := NewAnalyzer(reg, newBuffer()).Analyze()

	assert.Equal(t, StatusCritical, report.OverallStatus)
	assert.Contains(t, report.Signals, "Preference store access failures detected")
	assert.Len(t, report.Signals, 2)
}

func TestAnalyzer_MultipleDegradedSignals(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.Inc(metrics.ConsentMalformedTotal)
	reg.Inc(metrics.SweepFailuresTotal)

	report := NewAnalyzer(reg, newBuffer()).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Len(t, report.Signals, 2)
	assert.Len(t, report.Recommendations, 2)
}

func TestAnalyzer_LogBasedStoreWarnings(t *testing.T) {
	buf := newBuffer()
	logger := buf.Logger()
	logger.Warn("store access failed")
	logger.Warn("store access failed")
	logger.Warn("store access failed")

	report := NewAnalyzer(metrics.NewRegistry(), buf).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Repeated store access failures in recent logs")
}

func TestAnalyzer_LogBasedPanicDetection(t *testing.T) {
	buf := newBuffer()
	buf.Logger().Error("panic recovered")

	report := NewAnalyzer(metrics.NewRegistry(), buf).Analyze()

	assert.Equal(t, StatusCritical, report.OverallStatus)
	assert.Contains(t, report.Signals, "Application panics detected in logs")
}

func TestEscalate(t *testing.T) {
	assert.Equal(t, StatusDegraded, escalate(StatusOK, StatusDegraded))
	assert.Equal(t, StatusCritical, escalate(StatusDegraded, StatusCritical))
	assert.Equal(t, StatusCritical, escalate(StatusCritical, StatusDegraded))
	assert.Equal(t, StatusDegraded, escalate(StatusDegraded, StatusOK))
}
