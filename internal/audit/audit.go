// Package audit provides best-practice checks for programmable filter
// definitions. It catches problems the generator accepts but that surface
// later inside the host: parameters that shadow script variables, scripts
// with mixed indentation, slider defaults outside their range. It supports
// built-in rules, policy files that tune them, and multiple output formats
// (table, JSON, SARIF).
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/pvfilter/internal/filter"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityInfo is purely informational.
	SeverityInfo Severity = iota
	// SeverityLow indicates a minor concern.
	SeverityLow
	// SeverityMedium indicates a moderate concern.
	SeverityMedium
	// SeverityHigh indicates a likely runtime failure.
	SeverityHigh
	// SeverityCritical indicates the filter cannot run.
	SeverityCritical
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseSeverity parses a severity string (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, nil
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "info":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q, valid values: critical, high, medium, low, info", s)
	}
}

// Finding represents a single audit result.
type Finding struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	// Filter is the proxy name.
	Filter string `json:"filter"`
	// Location is the field or script the finding is about, empty for the
	// filter as a whole.
	Location    string `json:"location,omitempty"`
	Message     string `json:"message"`
	Remediation string `json:"remediation"`
}

// Check is the interface every audit rule must implement.
type Check interface {
	// ID returns the unique rule identifier (e.g. "PVF-001").
	ID() string
	// Run evaluates the definition and returns any findings.
	Run(ctx context.Context, def *filter.Definition) []Finding
}

// Result aggregates findings from all checks.
type Result struct {
	Findings []Finding      `json:"findings"`
	Summary  map[string]int `json:"summary"`
}

// Passed returns true when no finding meets or exceeds the threshold severity.
func (r *Result) Passed(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return false
		}
	}

	return true
}

// Auditor orchestrates a set of checks against definitions.
type Auditor struct {
	checks []Check
	policy *PolicyFile
}

// New creates an Auditor with the given checks.
func New(checks ...Check) *Auditor {
	return &Auditor{checks: checks}
}

// WithPolicy applies p to every run: disabled rules are skipped and
// severity overrides replace the built-in severities.
func (a *Auditor) WithPolicy(p *PolicyFile) *Auditor {
	a.policy = p
	return a
}

// Run executes every registered check and returns the result.
func (a *Auditor) Run(ctx context.Context, def *filter.Definition) *Result {
	var all []Finding

	for _, chk := range a.checks {
		if a.policy.Disabled(chk.ID()) {
			continue
		}

		for _, f := range chk.Run(ctx, def) {
			if sev, ok := a.policy.Severity(f.RuleID); ok {
				f.Severity = sev
			}

			all = append(all, f)
		}
	}

	// Sort: severity descending, then rule ID, then location.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity > all[j].Severity
		}

		if all[i].RuleID != all[j].RuleID {
			return all[i].RuleID < all[j].RuleID
		}

		return all[i].Location < all[j].Location
	})

	summary := make(map[string]int)
	for _, f := range all {
		summary[f.Severity.String()]++
	}

	return &Result{Findings: all, Summary: summary}
}

// DefaultChecks returns every built-in check.
func DefaultChecks() []Check {
	return []Check{
		&KeywordNameCheck{},
		&MixedIndentationCheck{},
		&ShadowedNameCheck{},
		&UnusedFieldCheck{},
		&SliderDefaultCheck{},
		&FieldHelpCheck{},
		&FilterHelpCheck{},
		&SingleMemberEnumCheck{},
	}
}
