package compliance

import (
	"strings"

	"github.com/roivaz/drata-compliance-mcp/internal/drata"
)

// ControlStatus is the readiness of a control derived from its flags.
type ControlStatus string

const (
	StatusArchived      ControlStatus = "ARCHIVED"
	StatusNotReady      ControlStatus = "NOT_READY"
	StatusNoOwner       ControlStatus = "NO_OWNER"
	StatusPassing       ControlStatus = "PASSING"
	StatusNeedsEvidence ControlStatus = "NEEDS_EVIDENCE"
	StatusReady         ControlStatus = "READY"
)

// ControlStatuses lists every derived status in precedence order.
var ControlStatuses = []ControlStatus{
	StatusArchived, StatusNotReady, StatusNoOwner, StatusPassing, StatusNeedsEvidence, StatusReady,
}

// DeriveStatus applies the precedence archived, not ready, no owner,
// passing (monitored with evidence), needs evidence, ready.
func DeriveStatus(c drata.Control) ControlStatus {
	switch {
	case c.ArchivedAt != nil && *c.ArchivedAt != "":
		return StatusArchived
	case !c.IsReady:
		return StatusNotReady
	case !c.HasOwner:
		return StatusNoOwner
	case c.IsMonitored && c.HasEvidence:
		return StatusPassing
	case !c.HasEvidence:
		return StatusNeedsEvidence
	default:
		return StatusReady
	}
}

// IsIssue reports whether the status needs attention before an audit.
func (s ControlStatus) IsIssue() bool {
	switch s {
	case StatusNotReady, StatusNoOwner, StatusNeedsEvidence:
		return true
	}
	return false
}

// Monitor check results.
const (
	MonitorPassed    = "PASSED"
	MonitorFailed    = "FAILED"
	MonitorNotTested = "NOT_TESTED"
)

var MonitorStatuses = []string{MonitorPassed, MonitorFailed, MonitorNotTested}

var EmploymentStatuses = []string{
	"CURRENT_EMPLOYEE", "CURRENT_CONTRACTOR", "FORMER_EMPLOYEE", "FORMER_CONTRACTOR",
	"FUTURE_HIRE", "SPECIAL_FORMER_EMPLOYEE", "SPECIAL_FORMER_CONTRACTOR", "UNKNOWN",
}

var EventCategories = []string{"PERSONNEL", "CONTROL", "MONITOR", "CONNECTION", "POLICY", "VENDOR"}

var AssetTypes = []string{"PHYSICAL", "VIRTUAL", "CLOUD", "DATA", "PERSONNEL"}

func isCurrent(p drata.Personnel) bool {
	return strings.HasPrefix(p.EmploymentStatus, "CURRENT")
}

// hasDeviceIssues reports whether a current employee or contractor has at
// least one device failing compliance.
func hasDeviceIssues(p drata.Personnel) bool {
	return isCurrent(p) && p.DevicesFailingComplianceCount > 0
}
