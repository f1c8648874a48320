package policy

import (
	"fmt"
	"strings"
	"time"

	"github.com/openfroyo/refdata/pkg/refdata"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for findings that should be reviewed.
	SeverityWarning Severity = "warning"

	// SeverityError is for findings that block a publish by default.
	SeverityError Severity = "error"

	// SeverityCritical is for findings that always block a publish.
	SeverityCritical Severity = "critical"
)

// Severities lists the severities from lowest to highest.
func Severities() []Severity {
	return []Severity{SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}
}

// ParseSeverity parses a severity name. An empty name yields SeverityError.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case "":
		return SeverityError, nil
	case SeverityInfo, SeverityWarning, SeverityError, SeverityCritical:
		return sev, nil
	default:
		return "", fmt.Errorf("unknown severity: %s", s)
	}
}

// Rank orders severities; unknown severities rank as warnings.
func (s Severity) Rank() int {
	switch s {
	case SeverityInfo:
		return 0
	case SeverityError:
		return 2
	case SeverityCritical:
		return 3
	default:
		return 1
	}
}

// AtLeast reports whether s is as severe as threshold.
func (s Severity) AtLeast(threshold Severity) bool {
	return s.Rank() >= threshold.Rank()
}

// Policy represents a policy rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code. The module must define a
	// "deny" set in its package.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Builtin marks policies shipped with refdata.
	Builtin bool `json:"builtin,omitempty"`

	// Source is the file the policy was loaded from.
	Source string `json:"source,omitempty"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`
}

// Violation is a single finding reported by a policy.
type Violation struct {
	// Policy is the name of the policy that reported the finding.
	Policy string `json:"policy"`

	// Resource identifies the offending record, e.g. "productStores[3]".
	Resource string `json:"resource,omitempty"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`
}

// Result represents the result of evaluating a snapshot.
type Result struct {
	// Allowed is false when a violation reaches the fail-on severity.
	Allowed bool `json:"allowed"`

	// FailOn is the threshold the result was judged against.
	FailOn Severity `json:"fail_on"`

	// Violations lists all findings, ordered by policy name.
	Violations []Violation `json:"violations,omitempty"`

	// Errors lists policies that could not be evaluated.
	Errors []string `json:"errors,omitempty"`

	// Revision is the snapshot revision that was evaluated.
	Revision string `json:"revision,omitempty"`

	// EvaluatedAt is when the policies were evaluated.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// EvaluatedPolicies lists the names of policies that were evaluated.
	EvaluatedPolicies []string `json:"evaluated_policies"`

	// Duration is how long the evaluation took.
	Duration time.Duration `json:"duration"`
}

// Blocking returns the violations at or above the fail-on severity.
func (r *Result) Blocking() []Violation {
	if r == nil {
		return nil
	}
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity.AtLeast(r.FailOn) {
			out = append(out, v)
		}
	}
	return out
}

// CountBySeverity counts violations per severity.
func (r *Result) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int)
	if r == nil {
		return counts
	}
	for _, v := range r.Violations {
		counts[v.Severity]++
	}
	return counts
}

// Input is the document policies are evaluated against.
type Input struct {
	Revision    string              `json:"revision"`
	Source      string              `json:"source,omitempty"`
	Collections refdata.Collections `json:"collections"`
}
