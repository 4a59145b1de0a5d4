// Package rules defines the compliance rule model and the condition
// evaluation engine. Rules are immutable value objects loaded once per run;
// condition trees are built eagerly at load time and dispatched on their type
// tag during evaluation.
package rules

import "fmt"

// Status is the outcome of evaluating one rule against one document.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusFail    Status = "FAIL"
	StatusWarning Status = "WARNING"
	StatusError   Status = "ERROR"
	StatusSkipped Status = "SKIPPED"
)

// Rule severities.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Condition types.
const (
	CondKeyValueMatch = "key_value_match"
	CondBlockExists   = "block_exists"
	CondRegexMatch    = "regex_match"
	CondNegation      = "negation"
	CondCompound      = "compound"
)

// Comparison operators for key_value_match conditions.
const (
	OpEquals      = "equals"
	OpNotEquals   = "not_equals"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpGte         = "gte"
	OpLte         = "lte"
	OpGt          = "gt"
	OpLt          = "lt"
	OpExists      = "exists"
	OpNotExists   = "not_exists"
	OpRegex       = "regex"
)

// Logical operators for compound conditions.
const (
	LogicalAnd = "AND"
	LogicalOr  = "OR"
)

// Condition is one node of a rule's evaluation tree. Leaf types inspect the
// canonical document directly; the compound type combines child results with
// tri-state logic.
type Condition struct {
	Type            string      `json:"type" yaml:"type"`
	Scope           string      `json:"scope,omitempty" yaml:"scope,omitempty"`
	Key             string      `json:"key,omitempty" yaml:"key,omitempty"`
	Operator        string      `json:"operator,omitempty" yaml:"operator,omitempty"`
	ExpectedValue   any         `json:"expected_value,omitempty" yaml:"expected_value,omitempty"`
	SubConditions   []Condition `json:"sub_conditions,omitempty" yaml:"sub_conditions,omitempty"`
	LogicalOperator string      `json:"logical_operator,omitempty" yaml:"logical_operator,omitempty"`
}

// Expected renders the expected value as a string; nil means "".
func (c *Condition) Expected() string {
	if c.ExpectedValue == nil {
		return ""
	}
	if s, ok := c.ExpectedValue.(string); ok {
		return s
	}
	return fmt.Sprint(c.ExpectedValue)
}

// Rule is the executable encoding of one compliance control for one vendor.
type Rule struct {
	RuleID             string            `json:"rule_id" yaml:"rule_id"`
	Standard           string            `json:"standard" yaml:"standard"`
	ControlID          string            `json:"control_id" yaml:"control_id"`
	Title              string            `json:"title,omitempty" yaml:"title,omitempty"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	Vendor             string            `json:"vendor" yaml:"vendor"`
	Category           string            `json:"category,omitempty" yaml:"category,omitempty"`
	Severity           string            `json:"severity,omitempty" yaml:"severity,omitempty"`
	Weight             int               `json:"weight,omitempty" yaml:"weight,omitempty"`
	Condition          Condition         `json:"condition" yaml:"condition"`
	RemediationText    string            `json:"remediation_text,omitempty" yaml:"remediation_text,omitempty"`
	RemediationCommand string            `json:"remediation_command,omitempty" yaml:"remediation_command,omitempty"`
	CrossStandardRefs  []string          `json:"cross_standard_refs,omitempty" yaml:"cross_standard_refs,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Result is the outcome of evaluating a single rule. Produced fresh per
// evaluation, never mutated.
type Result struct {
	Rule          *Rule  `json:"-"`
	Status        Status `json:"status"`
	FoundValue    string `json:"found_value,omitempty"`
	ExpectedValue string `json:"expected_value,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// StandardRef points at one control within one standard.
type StandardRef struct {
	Standard  string `json:"standard" yaml:"standard"`
	ControlID string `json:"control_id" yaml:"control_id"`
	Section   string `json:"section,omitempty" yaml:"section,omitempty"`
}

// CrossStandardMapping groups equivalent controls across standards. The core
// passes these through to the report layer unmodified.
type CrossStandardMapping struct {
	MappingID        string        `json:"mapping_id" yaml:"mapping_id"`
	CanonicalControl string        `json:"canonical_control" yaml:"canonical_control"`
	Description      string        `json:"description,omitempty" yaml:"description,omitempty"`
	Mappings         []StandardRef `json:"mappings" yaml:"mappings"`
}
