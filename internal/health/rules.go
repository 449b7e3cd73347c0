package health

import "consent-expiry/internal/metrics"

// RuleResult represents the outcome of a single rule.
type RuleResult struct {
	Triggered      bool
	Signal         string
	Recommendation string
	Severity       Status
}

// Rule evaluates a metrics snapshot.
type Rule func(snapshot map[string]int64) RuleResult

// StoreAccessRule: the checker could not read or remove records.
func StoreAccessRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.StoreAccessFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Preference store access failures detected",
			Recommendation: "Check store connectivity and credentials",
			Severity:       StatusCritical,
		}
	}
	return RuleResult{}
}

// MalformedRecordRule: a record could not be decoded and was left in place.
func MalformedRecordRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.ConsentMalformedTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Malformed consent records found",
			Recommendation: "Inspect the stored IABTCF_TCString values written by the CMP",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}

// SweepFailureRule: at least one namespace failed during a sweep.
func SweepFailureRule(snapshot map[string]int64) RuleResult {
	if snapshot[string(metrics.SweepFailuresTotal)] > 0 {
		return RuleResult{
			Triggered:      true,
			Signal:         "Sweep failures detected",
			Recommendation: "Review sweep logs for the failing namespaces",
			Severity:       StatusDegraded,
		}
	}
	return RuleResult{}
}
