// Package score assigns penalties to rule results and aggregates them into
// weighted compliance scores with risk banding.
package score

import (
	"strings"

	"confaudit/internal/rules"
)

type penaltyKey struct {
	status   rules.Status
	severity string
}

// penaltyMatrix maps (result status, rule severity) to a signed base penalty.
// Errors are treated as worst case; skipped rules do not penalize.
var penaltyMatrix = map[penaltyKey]int{
	{rules.StatusFail, rules.SeverityHigh}:      -5,
	{rules.StatusFail, rules.SeverityMedium}:    -3,
	{rules.StatusFail, rules.SeverityLow}:       -1,
	{rules.StatusWarning, rules.SeverityHigh}:   -3,
	{rules.StatusWarning, rules.SeverityMedium}: -2,
	{rules.StatusWarning, rules.SeverityLow}:    -1,
	{rules.StatusPass, rules.SeverityHigh}:      0,
	{rules.StatusPass, rules.SeverityMedium}:    0,
	{rules.StatusPass, rules.SeverityLow}:       0,
	{rules.StatusError, rules.SeverityHigh}:     -5,
	{rules.StatusError, rules.SeverityMedium}:   -3,
	{rules.StatusError, rules.SeverityLow}:      -1,
	{rules.StatusSkipped, rules.SeverityHigh}:   0,
	{rules.StatusSkipped, rules.SeverityMedium}: 0,
	{rules.StatusSkipped, rules.SeverityLow}:    0,
}

// defaultPenalty applies to any (status, severity) pair missing from the
// matrix.
const defaultPenalty = -3

// ClassifiedResult is a rule result with its penalty applied.
type ClassifiedResult struct {
	Result          rules.Result `json:"result"`
	Penalty         int          `json:"penalty"`
	WeightedPenalty float64      `json:"weighted_penalty"`
	SeverityLabel   string       `json:"severity"`
	StatusLabel     string       `json:"status"`
}

// Classify applies the penalty matrix to every result. The weighted penalty
// is the absolute base penalty times the rule weight.
func Classify(results []rules.Result) []ClassifiedResult {
	classified := make([]ClassifiedResult, 0, len(results))
	for _, res := range results {
		severity := strings.ToLower(res.Rule.Severity)
		status := rules.Status(strings.ToUpper(string(res.Status)))
		penalty := Penalty(status, severity)

		classified = append(classified, ClassifiedResult{
			Result:          res,
			Penalty:         penalty,
			WeightedPenalty: float64(abs(penalty) * res.Rule.Weight),
			SeverityLabel:   severity,
			StatusLabel:     string(status),
		})
	}
	return classified
}

// Penalty returns the base penalty for a status/severity pair.
func Penalty(status rules.Status, severity string) int {
	if p, ok := penaltyMatrix[penaltyKey{status, severity}]; ok {
		return p
	}
	return defaultPenalty
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
