package score

import (
	"math"
	"sort"

	"confaudit/internal/rules"
)

// maxBasePenalty is the largest possible base-penalty magnitude in the
// matrix; weight×maxBasePenalty is a valid worst-case upper bound for every
// rule regardless of its actual severity.
const maxBasePenalty = 5

// Risk bands over the percentage score, inclusive on both ends.
var riskLevels = []struct {
	min, max float64
	label    string
	color    string
}{
	{90, 100, "Low Risk", "#28a745"},
	{70, 89, "Medium Risk", "#ffc107"},
	{50, 69, "High Risk", "#fd7e14"},
	{0, 49, "Critical Risk", "#dc3545"},
}

// StandardScore is the compliance score for a single standard.
type StandardScore struct {
	Standard   string  `json:"standard"`
	RawScore   float64 `json:"raw_score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	RiskLevel  string  `json:"risk_level"`
	RiskColor  string  `json:"risk_color"`
	TotalRules int     `json:"total_rules"`
	Passed     int     `json:"passed"`
	Warned     int     `json:"warned"`
	Failed     int     `json:"failed"`
	Errored    int     `json:"errored"`
}

// ComplianceScore is the aggregate scoring snapshot for one document.
type ComplianceScore struct {
	RawScore             float64                  `json:"raw_score"`
	MaxScore             float64                  `json:"max_score"`
	Percentage           float64                  `json:"percentage"`
	RiskLevel            string                   `json:"risk_level"`
	RiskColor            string                   `json:"risk_color"`
	TotalRules           int                      `json:"total_rules"`
	Passed               int                      `json:"passed"`
	Warned               int                      `json:"warned"`
	Failed               int                      `json:"failed"`
	Errored              int                      `json:"errored"`
	PerStandard          map[string]StandardScore `json:"per_standard,omitempty"`
	PerCategory          map[string]float64       `json:"per_category,omitempty"`
	SeverityDistribution map[string]int           `json:"severity_distribution,omitempty"`
}

// StandardsSorted returns the per-standard keys in sorted order for
// deterministic rendering.
func (s *ComplianceScore) StandardsSorted() []string {
	keys := make([]string, 0, len(s.PerStandard))
	for k := range s.PerStandard {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CategoriesSorted returns the per-category keys in sorted order.
func (s *ComplianceScore) CategoriesSorted() []string {
	keys := make([]string, 0, len(s.PerCategory))
	for k := range s.PerCategory {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Calculate aggregates classified results into the overall score plus
// per-standard and per-category breakdowns.
//
//	max_score  = Σ(weight × 5)
//	raw_score  = max_score − Σ(weighted_penalty)
//	percentage = clamp(raw/max × 100, 0, 100), truncated to 2 decimals
//
// An empty result set scores 100 with "Low Risk".
func Calculate(classified []ClassifiedResult) ComplianceScore {
	if len(classified) == 0 {
		level, color := riskLevel(100)
		return ComplianceScore{Percentage: 100, RiskLevel: level, RiskColor: color}
	}

	maxScore, rawScore, pct := scoreSubset(classified)
	level, color := riskLevel(pct)

	passed, warned, failed, errored := countStatuses(classified)

	severityDist := map[string]int{
		rules.SeverityHigh:   0,
		rules.SeverityMedium: 0,
		rules.SeverityLow:    0,
	}
	for _, cr := range classified {
		if cr.StatusLabel == string(rules.StatusFail) || cr.StatusLabel == string(rules.StatusWarning) {
			if _, ok := severityDist[cr.SeverityLabel]; ok {
				severityDist[cr.SeverityLabel]++
			}
		}
	}

	return ComplianceScore{
		RawScore:             rawScore,
		MaxScore:             maxScore,
		Percentage:           pct,
		RiskLevel:            level,
		RiskColor:            color,
		TotalRules:           len(classified),
		Passed:               passed,
		Warned:               warned,
		Failed:               failed,
		Errored:              errored,
		PerStandard:          perStandard(classified),
		PerCategory:          perCategory(classified),
		SeverityDistribution: severityDist,
	}
}

func perStandard(classified []ClassifiedResult) map[string]StandardScore {
	groups := make(map[string][]ClassifiedResult)
	for _, cr := range classified {
		std := cr.Result.Rule.Standard
		groups[std] = append(groups[std], cr)
	}

	out := make(map[string]StandardScore, len(groups))
	for std, group := range groups {
		maxS, rawS, pct := scoreSubset(group)
		level, color := riskLevel(pct)
		passed, warned, failed, errored := countStatuses(group)
		out[std] = StandardScore{
			Standard:   std,
			RawScore:   rawS,
			MaxScore:   maxS,
			Percentage: pct,
			RiskLevel:  level,
			RiskColor:  color,
			TotalRules: len(group),
			Passed:     passed,
			Warned:     warned,
			Failed:     failed,
			Errored:    errored,
		}
	}
	return out
}

func perCategory(classified []ClassifiedResult) map[string]float64 {
	groups := make(map[string][]ClassifiedResult)
	for _, cr := range classified {
		cat := cr.Result.Rule.Category
		groups[cat] = append(groups[cat], cr)
	}

	out := make(map[string]float64, len(groups))
	for cat, group := range groups {
		_, _, pct := scoreSubset(group)
		out[cat] = pct
	}
	return out
}

// scoreSubset applies the scoring formula to one group of results. The
// percentage is truncated, not rounded, to two decimal digits, then clamped.
func scoreSubset(group []ClassifiedResult) (maxScore, rawScore, pct float64) {
	for _, cr := range group {
		maxScore += float64(cr.Result.Rule.Weight * maxBasePenalty)
		rawScore -= cr.WeightedPenalty
	}
	rawScore += maxScore

	if maxScore == 0 {
		return maxScore, rawScore, 100
	}
	pct = math.Trunc(rawScore/maxScore*10000) / 100
	pct = math.Max(0, math.Min(100, pct))
	return maxScore, rawScore, pct
}

func countStatuses(group []ClassifiedResult) (passed, warned, failed, errored int) {
	for _, cr := range group {
		switch cr.StatusLabel {
		case string(rules.StatusPass):
			passed++
		case string(rules.StatusWarning):
			warned++
		case string(rules.StatusFail):
			failed++
		case string(rules.StatusError), string(rules.StatusSkipped):
			errored++
		}
	}
	return
}

func riskLevel(pct float64) (string, string) {
	for _, band := range riskLevels {
		if pct >= band.min && pct <= band.max {
			return band.label, band.color
		}
	}
	return "Critical Risk", "#dc3545"
}
