package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"confaudit/internal/normalize"
)

// maxConditionDepth guards against runaway recursion in malformed condition
// trees. Legitimate rule content stays far below this.
const maxConditionDepth = 64

// Engine evaluates rules against a canonical document. Evaluation is a pure
// function of (rule, document): no state is shared between rule evaluations,
// and the same inputs always produce the same ordered output.
type Engine struct {
	// Diag receives non-fatal diagnostics such as unknown comparison
	// operators. Nil disables diagnostics.
	Diag func(msg string)
}

func (e *Engine) diag(format string, args ...any) {
	if e != nil && e.Diag != nil {
		e.Diag(fmt.Sprintf(format, args...))
	}
}

// Evaluate filters rules to the document's vendor (and the optional standards
// filter), sorts them ascending by rule ID, and evaluates each one. The sort
// is a determinism contract: the returned results preserve rule ID order.
func (e *Engine) Evaluate(cfg *normalize.Config, all []*Rule, standards []string) []Result {
	applicable := filterRules(all, cfg.Vendor, standards)
	sort.Slice(applicable, func(i, j int) bool {
		return applicable[i].RuleID < applicable[j].RuleID
	})

	results := make([]Result, 0, len(applicable))
	for _, rule := range applicable {
		results = append(results, e.evaluateRule(rule, cfg))
	}
	return results
}

func filterRules(all []*Rule, vendor string, standards []string) []*Rule {
	var stdFilter []string
	for _, s := range standards {
		stdFilter = append(stdFilter, strings.ToUpper(s))
	}

	var filtered []*Rule
	for _, rule := range all {
		if !strings.EqualFold(rule.Vendor, vendor) {
			continue
		}
		if len(stdFilter) > 0 {
			found := false
			for _, s := range stdFilter {
				if strings.ToUpper(rule.Standard) == s {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		filtered = append(filtered, rule)
	}
	return filtered
}

// evaluateRule isolates failures: any panic while evaluating one rule becomes
// an ERROR result and never aborts the remaining rules.
func (e *Engine) evaluateRule(rule *Rule, cfg *normalize.Config) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Rule:   rule,
				Status: StatusError,
				Reason: fmt.Sprintf("Evaluation error: %v", r),
			}
		}
	}()
	return e.evalCondition(rule, &rule.Condition, cfg, 0)
}

func (e *Engine) evalCondition(rule *Rule, cond *Condition, cfg *normalize.Config, depth int) Result {
	if depth > maxConditionDepth {
		return Result{
			Rule:   rule,
			Status: StatusError,
			Reason: fmt.Sprintf("Condition nesting exceeds depth limit (%d)", maxConditionDepth),
		}
	}

	switch cond.Type {
	case CondKeyValueMatch:
		return e.evalKeyValue(rule, cond, cfg)
	case CondBlockExists:
		return evalBlockExists(rule, cond, cfg)
	case CondRegexMatch:
		return evalRegex(rule, cond, cfg)
	case CondNegation:
		return evalNegation(rule, cond, cfg)
	case CondCompound:
		return e.evalCompound(rule, cond, cfg, depth)
	default:
		return Result{
			Rule:   rule,
			Status: StatusError,
			Reason: fmt.Sprintf("Unknown condition type: %s", cond.Type),
		}
	}
}

func (e *Engine) evalKeyValue(rule *Rule, cond *Condition, cfg *normalize.Config) Result {
	actual, ok := cfg.Get(cond.Key)
	if !ok {
		return Result{
			Rule:          rule,
			Status:        StatusFail,
			ExpectedValue: cond.Expected(),
			Reason:        fmt.Sprintf("Key '%s' not found in configuration", cond.Key),
		}
	}

	expected := strings.ToLower(strings.TrimSpace(cond.Expected()))
	actualNorm := strings.ToLower(strings.TrimSpace(actual))
	match := e.compare(actualNorm, cond.Operator, expected)

	reason := ""
	if !match {
		reason = fmt.Sprintf("Expected %s '%s', found '%s'", cond.Operator, cond.Expected(), actual)
	}
	return Result{
		Rule:          rule,
		Status:        passFail(match),
		FoundValue:    actual,
		ExpectedValue: cond.Expected(),
		Reason:        reason,
	}
}

func evalBlockExists(rule *Rule, cond *Condition, cfg *normalize.Config) Result {
	exists := cfg.HasBlock(cond.Key)

	// Any operator other than not_exists behaves as exists.
	passed := exists
	if cond.Operator == OpNotExists {
		passed = !exists
	}

	found := "not found"
	if exists {
		found = "exists"
	}
	reason := ""
	if !passed {
		if cond.Operator == OpNotExists {
			reason = fmt.Sprintf("Block '%s' should not exist", cond.Key)
		} else {
			reason = fmt.Sprintf("Block '%s' not found", cond.Key)
		}
	}
	return Result{
		Rule:          rule,
		Status:        passFail(passed),
		FoundValue:    found,
		ExpectedValue: cond.Operator,
		Reason:        reason,
	}
}

func evalRegex(rule *Rule, cond *Condition, cfg *normalize.Config) Result {
	actual, ok := cfg.Get(cond.Key)
	if !ok {
		return Result{
			Rule:          rule,
			Status:        StatusFail,
			ExpectedValue: "regex:" + cond.Expected(),
			Reason:        fmt.Sprintf("Key '%s' not found in configuration", cond.Key),
		}
	}

	re, err := regexp.Compile("(?i)" + cond.Expected())
	if err != nil {
		return Result{
			Rule:   rule,
			Status: StatusError,
			Reason: fmt.Sprintf("Invalid regex pattern: %v", err),
		}
	}

	match := re.MatchString(actual)
	reason := ""
	if !match {
		reason = fmt.Sprintf("Value '%s' does not match pattern '%s'", actual, cond.Expected())
	}
	return Result{
		Rule:          rule,
		Status:        passFail(match),
		FoundValue:    actual,
		ExpectedValue: "regex:" + cond.Expected(),
		Reason:        reason,
	}
}

// evalNegation encodes "feature must be absent or explicitly disabled". With
// the default operator it passes when the "no <key>" form exists or the bare
// key is absent; both facts may hold at once and the pass condition is their
// logical OR. With operator not_exists only bare-key absence counts.
func evalNegation(rule *Rule, cond *Condition, cfg *normalize.Config) Result {
	key := strings.ToLower(strings.TrimSpace(cond.Key))

	negatedExists := cfg.HasKey("no " + key)
	positiveExists := cfg.HasKey(key)

	var passed bool
	if cond.Operator == OpNotExists {
		passed = !positiveExists
	} else {
		passed = negatedExists || !positiveExists
	}

	found := "absent"
	switch {
	case negatedExists:
		found = "negated"
	case positiveExists:
		found = "present"
	}
	reason := ""
	if !passed {
		reason = fmt.Sprintf("Key '%s' should be negated or absent", key)
	}
	return Result{
		Rule:          rule,
		Status:        passFail(passed),
		FoundValue:    found,
		ExpectedValue: "negated/absent",
		Reason:        reason,
	}
}

// evalCompound combines child statuses with tri-state logic: ERROR and
// SKIPPED children must not silently resolve to PASS or FAIL, so anything
// that is neither all-PASS nor decisively FAIL comes out WARNING.
func (e *Engine) evalCompound(rule *Rule, cond *Condition, cfg *normalize.Config, depth int) Result {
	if len(cond.SubConditions) == 0 {
		return Result{
			Rule:   rule,
			Status: StatusError,
			Reason: "Compound condition has no sub-conditions",
		}
	}

	// Children are evaluated against the same rule object: nested results
	// carry the parent rule, never a synthetic one.
	subResults := make([]Result, 0, len(cond.SubConditions))
	for i := range cond.SubConditions {
		subResults = append(subResults, e.evalCondition(rule, &cond.SubConditions[i], cfg, depth+1))
	}

	allPass, anyPass, allFail, anyFail := true, false, true, false
	for _, r := range subResults {
		switch r.Status {
		case StatusPass:
			anyPass = true
			allFail = false
		case StatusFail:
			anyFail = true
			allPass = false
		default:
			allPass = false
			allFail = false
		}
	}

	op := strings.ToUpper(cond.LogicalOperator)
	var status Status
	if op == LogicalAnd {
		switch {
		case allPass:
			status = StatusPass
		case anyFail:
			status = StatusFail
		default:
			status = StatusWarning
		}
	} else {
		switch {
		case anyPass:
			status = StatusPass
		case allFail:
			status = StatusFail
		default:
			status = StatusWarning
		}
	}

	details := make([]string, 0, len(subResults))
	for i, r := range subResults {
		details = append(details, fmt.Sprintf("[%s] %s: %s", r.Status, cond.SubConditions[i].Key, r.Reason))
	}
	return Result{
		Rule:   rule,
		Status: status,
		Reason: fmt.Sprintf("Compound (%s): %s", cond.LogicalOperator, strings.Join(details, "; ")),
	}
}

// compare applies one comparison operator, case-insensitively. Numeric
// operators treat unparsable sides as a non-match, never an error. An
// unrecognized operator falls back to equality and is reported through the
// diagnostics sink.
func (e *Engine) compare(actual, operator, expected string) bool {
	switch operator {
	case OpEquals:
		return actual == expected
	case OpNotEquals:
		return actual != expected
	case OpContains:
		return strings.Contains(actual, expected)
	case OpNotContains:
		return !strings.Contains(actual, expected)
	case OpGte:
		a, b, ok := parseFloats(actual, expected)
		return ok && a >= b
	case OpLte:
		a, b, ok := parseFloats(actual, expected)
		return ok && a <= b
	case OpGt:
		a, b, ok := parseFloats(actual, expected)
		return ok && a > b
	case OpLt:
		a, b, ok := parseFloats(actual, expected)
		return ok && a < b
	case OpExists:
		return true
	case OpNotExists:
		return false
	case OpRegex:
		re, err := regexp.Compile("(?i)" + expected)
		if err != nil {
			return false
		}
		return re.MatchString(actual)
	default:
		e.diag("unknown operator %q, defaulting to equals", operator)
		return actual == expected
	}
}

func parseFloats(a, b string) (float64, float64, bool) {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	return fa, fb, errA == nil && errB == nil
}

func passFail(passed bool) Status {
	if passed {
		return StatusPass
	}
	return StatusFail
}
