package models

import "time"

// Status is the internal outcome vocabulary for a single check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)

// Severity grades how actionable a check outcome is.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// CheckKind identifies one health check. The set is closed; the orchestrator
// dispatches over these constants rather than free-form strings.
type CheckKind string

const (
	CheckObjectAvailability CheckKind = "object_availability"
	CheckBasicOrgInfo       CheckKind = "basic_org_info"
	CheckOWDSharing         CheckKind = "owd_sharing"
	CheckBundleAnalysis     CheckKind = "bundle_analysis"
	CheckAttributeOverride  CheckKind = "attribute_override"
	CheckPicklistIntegrity  CheckKind = "attribute_picklist_integrity"
)

// AllCheckKinds lists every known check in report order.
func AllCheckKinds() []CheckKind {
	return []CheckKind{
		CheckObjectAvailability,
		CheckBasicOrgInfo,
		CheckOWDSharing,
		CheckBundleAnalysis,
		CheckAttributeOverride,
		CheckPicklistIntegrity,
	}
}

// CheckResult is the immutable outcome of one completed check. Results are
// created once, appended to the orchestrator's list, and never mutated.
type CheckResult struct {
	Kind      CheckKind
	Name      string
	Status    Status
	Message   string
	Details   []string
	Severity  Severity
	Timestamp time.Time
}

// NewCheckResult stamps a result with the current time.
func NewCheckResult(kind CheckKind, name string, status Status, message string, details []string, severity Severity) CheckResult {
	return CheckResult{
		Kind:      kind,
		Name:      name,
		Status:    status,
		Message:   message,
		Details:   details,
		Severity:  severity,
		Timestamp: time.Now().UTC(),
	}
}

// CycleRecord describes one circular bundle dependency, deduplicated by
// minimum-rotation normalization of its node sequence.
type CycleRecord struct {
	// Path holds the bundle names along the cycle, ending with the repeated
	// first node for display.
	Path []string
	// NodeIDs holds the cycle's member IDs without the repeated node.
	NodeIDs []string
	Length  int
}

// ObjectError records one object type that could not be probed.
type ObjectError struct {
	Object string
	Err    string
}

// AvailabilityReport captures which required object types are queryable.
// It lives for a single orchestration pass.
type AvailabilityReport struct {
	Available   map[string]struct{}
	Unavailable []ObjectError
}

// Has reports whether the named object type was queryable.
func (r AvailabilityReport) Has(object string) bool {
	_, ok := r.Available[object]
	return ok
}

// HasAll reports whether every named object type was queryable.
func (r AvailabilityReport) HasAll(objects ...string) bool {
	for _, obj := range objects {
		if !r.Has(obj) {
			return false
		}
	}
	return true
}
