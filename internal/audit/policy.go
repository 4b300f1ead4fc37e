package audit

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/pvfilter/internal/filter"
)

// PolicyFile represents a custom policy YAML file.
//
//	overrides:
//	  - id: PVF-004
//	    severity: high
//	  - id: PVF-006
//	    disabled: true
//	rules:
//	  - id: TEAM-001
//	    severity: high
//	    condition: script matches
//	    pattern: '\bimport\s+os\b'
//	    message: scripts must not touch the file system
type PolicyFile struct {
	Overrides []RuleOverride `json:"overrides" yaml:"overrides"`
	Rules     []PolicyRule   `json:"rules" yaml:"rules"`
}

// RuleOverride tunes a rule.
type RuleOverride struct {
	ID          string `json:"id" yaml:"id"`
	SeverityStr string `json:"severity,omitempty" yaml:"severity,omitempty"`
	Disabled    bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// PolicyRule defines a single custom audit rule.
type PolicyRule struct {
	// ID is the unique rule identifier (e.g., "TEAM-001").
	ID string `json:"id" yaml:"id"`

	// Severity is the finding severity (critical, high, medium, low, info).
	SeverityStr string `json:"severity" yaml:"severity"`

	// Match restricts script conditions to one hook.
	Match PolicyMatch `json:"match" yaml:"match"`

	// Condition selects what Pattern is matched against. Supported:
	// "script matches", "script lacks", "field name matches".
	Condition string `json:"condition" yaml:"condition"`

	// Pattern is a regular expression.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Message is the finding message.
	Message string `json:"message" yaml:"message"`

	// Remediation suggests how to fix the issue.
	Remediation string `json:"remediation" yaml:"remediation"`

	re *regexp.Regexp
}

// PolicyMatch restricts which scripts a rule applies to.
type PolicyMatch struct {
	// Script is request_data, request_information or request_update_extent.
	Script string `json:"script" yaml:"script"`
}

// LoadPolicyFile loads a custom policy file from disk.
func LoadPolicyFile(path string) (*PolicyFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user-provided CLI arg
	if err != nil {
		return nil, fmt.Errorf("reading policy file %s: %w", path, err)
	}

	var pf PolicyFile
	if err := sigsyaml.UnmarshalStrict(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}

	if err := pf.validate(); err != nil {
		return nil, fmt.Errorf("policy file %s: %w", path, err)
	}

	return &pf, nil
}

func (pf *PolicyFile) validate() error {
	for _, o := range pf.Overrides {
		if o.ID == "" {
			return fmt.Errorf("override missing required 'id' field")
		}

		if o.SeverityStr != "" {
			if _, err := ParseSeverity(o.SeverityStr); err != nil {
				return fmt.Errorf("override %s: %w", o.ID, err)
			}
		}
	}

	for i := range pf.Rules {
		r := &pf.Rules[i]

		if r.ID == "" {
			return fmt.Errorf("rule missing required 'id' field")
		}

		if r.Message == "" {
			return fmt.Errorf("rule %s missing required 'message' field", r.ID)
		}

		if _, err := ParseSeverity(r.SeverityStr); err != nil {
			return fmt.Errorf("rule %s: %w", r.ID, err)
		}

		if !isKnownCondition(r.Condition) {
			return fmt.Errorf("rule %s: unknown condition %q; supported: %s",
				r.ID, r.Condition, strings.Join(knownConditions(), ", "))
		}

		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return fmt.Errorf("rule %s: invalid pattern: %w", r.ID, err)
		}

		r.re = re
	}

	return nil
}

// Disabled reports whether an override disables rule id. A nil policy
// disables nothing.
func (pf *PolicyFile) Disabled(id string) bool {
	if pf == nil {
		return false
	}

	for _, o := range pf.Overrides {
		if o.ID == id && o.Disabled {
			return true
		}
	}

	return false
}

// Severity returns the overridden severity of rule id, if any.
func (pf *PolicyFile) Severity(id string) (Severity, bool) {
	if pf == nil {
		return SeverityInfo, false
	}

	for _, o := range pf.Overrides {
		if o.ID == id && o.SeverityStr != "" {
			sev, err := ParseSeverity(o.SeverityStr)
			return sev, err == nil
		}
	}

	return SeverityInfo, false
}

// ToChecks converts policy rules into audit checks.
func (pf *PolicyFile) ToChecks() []Check {
	var checks []Check

	for _, rule := range pf.Rules {
		checks = append(checks, &customRuleCheck{rule: rule})
	}

	return checks
}

// customRuleCheck implements Check for a custom policy rule.
type customRuleCheck struct {
	rule PolicyRule
}

func (c *customRuleCheck) ID() string { return c.rule.ID }

func (c *customRuleCheck) Run(_ context.Context, def *filter.Definition) []Finding {
	re := c.rule.re
	if re == nil {
		re = regexp.MustCompile(c.rule.Pattern)
	}

	sev, _ := ParseSeverity(c.rule.SeverityStr)

	newFinding := func(location string) Finding {
		return finding(def, c.rule.ID, sev, location, c.rule.Message, c.rule.Remediation)
	}

	var findings []Finding

	switch strings.ToLower(strings.TrimSpace(c.rule.Condition)) {
	case "script matches":
		for _, hook := range scriptHooks(def) {
			if c.appliesTo(hook.name) && re.MatchString(hook.text) {
				findings = append(findings, newFinding(hook.name))
			}
		}
	case "script lacks":
		for _, hook := range scriptHooks(def) {
			if c.appliesTo(hook.name) && hook.text != "" && !re.MatchString(hook.text) {
				findings = append(findings, newFinding(hook.name))
			}
		}
	case "field name matches":
		for _, f := range def.Fields() {
			if re.MatchString(f.Name) {
				findings = append(findings, newFinding(f.Name))
			}
		}
	}

	return findings
}

func (c *customRuleCheck) appliesTo(hook string) bool {
	return c.rule.Match.Script == "" || c.rule.Match.Script == hook
}

// knownConditions returns the list of supported condition strings.
func knownConditions() []string {
	return []string{
		"script matches",
		"script lacks",
		"field name matches",
	}
}

// isKnownCondition reports whether the given condition string is supported.
func isKnownCondition(cond string) bool {
	normalized := strings.ToLower(strings.TrimSpace(cond))
	for _, c := range knownConditions() {
		if c == normalized {
			return true
		}
	}

	return false
}
