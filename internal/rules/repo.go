package rules

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// crossMapFilename is the reserved rule-directory file holding cross-standard
// control mappings.
const crossMapFilename = "cross_standard_map.json"

// Repo holds the validated, de-duplicated rule set for a run. Immutable after
// LoadDir returns; evaluation receives rules by reference and never mutates
// them.
type Repo struct {
	rules      []*Rule
	byID       map[string]*Rule
	byVendor   map[string][]*Rule
	byStandard map[string][]*Rule
	crossMap   []CrossStandardMapping
	diags      []string
}

// LoadDir walks dir recursively and loads every .json/.yaml/.yml rule file. A
// file may hold a single rule object or an array of rules. Rules failing
// structural validation are dropped with a diagnostic; they never abort
// loading of the remaining rules.
func LoadDir(dir string) (*Repo, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rules path %s is not a directory", dir)
	}

	r := &Repo{
		byID:       make(map[string]*Rule),
		byVendor:   make(map[string][]*Rule),
		byStandard: make(map[string][]*Rule),
	}

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Base(path) == crossMapFilename {
			r.loadCrossMap(path)
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			r.loadRuleFile(path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk rules directory: %w", walkErr)
	}
	return r, nil
}

func (r *Repo) loadRuleFile(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		r.diagf("%s: %v", path, err)
		return
	}

	docs, err := decodeRules(raw, filepath.Ext(path))
	if err != nil {
		r.diagf("%s: %v", path, err)
		return
	}

	for i := range docs {
		rule := docs[i]
		applyRuleDefaults(rule)
		if errs := r.validate(rule); len(errs) > 0 {
			r.diagf("%s: rule %q dropped: %s", path, rule.RuleID, strings.Join(errs, ", "))
			continue
		}
		r.register(rule)
	}
}

// decodeRules accepts either one rule object or an array of rules.
func decodeRules(raw []byte, ext string) ([]*Rule, error) {
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(ext, ".json") {
		unmarshal = json.Unmarshal
	}

	var many []*Rule
	if err := unmarshal(raw, &many); err == nil {
		return many, nil
	}

	var one Rule
	if err := unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return []*Rule{&one}, nil
}

// applyRuleDefaults fills omitted fields, including condition-tree defaults,
// so evaluation never sees a zero-valued tag or operator.
func applyRuleDefaults(rule *Rule) {
	if rule.Category == "" {
		rule.Category = "general"
	}
	if rule.Severity == "" {
		rule.Severity = SeverityMedium
	}
	if rule.Weight == 0 {
		rule.Weight = 3
	}
	applyConditionDefaults(&rule.Condition)
}

func applyConditionDefaults(c *Condition) {
	if c.Type == "" {
		c.Type = CondKeyValueMatch
	}
	if c.Scope == "" {
		c.Scope = "global"
	}
	if c.Operator == "" {
		c.Operator = OpEquals
	}
	if c.LogicalOperator == "" {
		c.LogicalOperator = LogicalAnd
	}
	for i := range c.SubConditions {
		applyConditionDefaults(&c.SubConditions[i])
	}
}

var validConditionTypes = map[string]bool{
	CondKeyValueMatch: true,
	CondBlockExists:   true,
	CondRegexMatch:    true,
	CondNegation:      true,
	CondCompound:      true,
}

func (r *Repo) validate(rule *Rule) []string {
	var errs []string

	if rule.RuleID == "" {
		errs = append(errs, "missing rule_id")
	}
	if _, dup := r.byID[rule.RuleID]; dup {
		errs = append(errs, fmt.Sprintf("duplicate rule_id: %s", rule.RuleID))
	}
	if rule.Standard == "" {
		errs = append(errs, "missing standard")
	}
	if rule.Vendor == "" {
		errs = append(errs, "missing vendor")
	}
	switch rule.Severity {
	case SeverityHigh, SeverityMedium, SeverityLow:
	default:
		errs = append(errs, fmt.Sprintf("invalid severity: %s", rule.Severity))
	}
	if rule.Weight < 1 || rule.Weight > 5 {
		errs = append(errs, fmt.Sprintf("invalid weight: %d (must be 1-5)", rule.Weight))
	}
	errs = append(errs, validateCondition(&rule.Condition)...)
	return errs
}

func validateCondition(c *Condition) []string {
	var errs []string
	if !validConditionTypes[c.Type] {
		errs = append(errs, fmt.Sprintf("invalid condition type: %s", c.Type))
	}
	for i := range c.SubConditions {
		errs = append(errs, validateCondition(&c.SubConditions[i])...)
	}
	return errs
}

func (r *Repo) register(rule *Rule) {
	r.rules = append(r.rules, rule)
	r.byID[rule.RuleID] = rule
	vendor := strings.ToLower(rule.Vendor)
	r.byVendor[vendor] = append(r.byVendor[vendor], rule)
	standard := strings.ToUpper(rule.Standard)
	r.byStandard[standard] = append(r.byStandard[standard], rule)
}

func (r *Repo) loadCrossMap(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		r.diagf("%s: %v", path, err)
		return
	}

	var list []CrossStandardMapping
	if err := json.Unmarshal(raw, &list); err == nil {
		r.crossMap = list
		return
	}

	var wrapped struct {
		Mappings []CrossStandardMapping `json:"mappings"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		r.diagf("%s: %v", path, err)
		return
	}
	r.crossMap = wrapped.Mappings
}

func (r *Repo) diagf(format string, args ...any) {
	r.diags = append(r.diags, fmt.Sprintf(format, args...))
}

// All returns the loaded rules. The returned slice is a copy; the rules
// themselves are shared and must not be mutated.
func (r *Repo) All() []*Rule {
	out := make([]*Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// ByID returns the rule with the given ID, or nil.
func (r *Repo) ByID(id string) *Rule { return r.byID[id] }

// ByVendor returns all rules for a vendor, case-insensitively.
func (r *Repo) ByVendor(vendor string) []*Rule {
	return r.byVendor[strings.ToLower(vendor)]
}

// ByStandard returns all rules for a standard, case-insensitively.
func (r *Repo) ByStandard(standard string) []*Rule {
	return r.byStandard[strings.ToUpper(standard)]
}

// CrossStandardMappings returns the loaded cross-standard control mappings.
func (r *Repo) CrossStandardMappings() []CrossStandardMapping {
	out := make([]CrossStandardMapping, len(r.crossMap))
	copy(out, r.crossMap)
	return out
}

// Diagnostics returns load-time warnings: dropped rules, unparsable files.
func (r *Repo) Diagnostics() []string {
	out := make([]string, len(r.diags))
	copy(out, r.diags)
	return out
}

// Stats summarizes the loaded rule set for display.
type Stats struct {
	TotalRules       int
	RulesPerVendor   map[string]int
	RulesPerStandard map[string]int
	CrossMappings    int
}

// Stats returns counts for the rules list command.
func (r *Repo) Stats() Stats {
	s := Stats{
		TotalRules:       len(r.rules),
		RulesPerVendor:   make(map[string]int, len(r.byVendor)),
		RulesPerStandard: make(map[string]int, len(r.byStandard)),
		CrossMappings:    len(r.crossMap),
	}
	for v, rs := range r.byVendor {
		s.RulesPerVendor[v] = len(rs)
	}
	for std, rs := range r.byStandard {
		s.RulesPerStandard[std] = len(rs)
	}
	return s
}

// Vendors returns the vendors with loaded rules, sorted.
func (r *Repo) Vendors() []string {
	out := make([]string, 0, len(r.byVendor))
	for v := range r.byVendor {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Standards returns the standards with loaded rules, sorted.
func (r *Repo) Standards() []string {
	out := make([]string, 0, len(r.byStandard))
	for s := range r.byStandard {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
