package output

import (
	"time"

	"confaudit/internal/detect"
	"confaudit/internal/rules"
	"confaudit/internal/score"
)

// Lifecycle event types emitted on streaming sinks.
const (
	EventRunStarted       = "run.started"
	EventDocumentStarted  = "document.started"
	EventRuleResult       = "rule.result"
	EventDocumentFinished = "document.finished"
	EventRunFinished      = "run.finished"
)

// Event is one entry in the machine-readable stream. Exactly which fields are
// set depends on Type.
type Event struct {
	Type     string                 `json:"type"`
	Time     time.Time              `json:"time"`
	File     string                 `json:"file,omitempty"`
	Vendor   *detect.Verdict        `json:"vendor,omitempty"`
	Result   *ResultRow             `json:"result,omitempty"`
	Score    *score.ComplianceScore `json:"score,omitempty"`
	Message  string                 `json:"message,omitempty"`
	ExitCode int                    `json:"exit_code,omitempty"`
}

// ResultRow is the flattened, sink-facing view of one classified result.
type ResultRow struct {
	File            string  `json:"file"`
	RuleID          string  `json:"rule_id"`
	Standard        string  `json:"standard"`
	ControlID       string  `json:"control_id"`
	Title           string  `json:"title,omitempty"`
	Vendor          string  `json:"vendor"`
	Category        string  `json:"category"`
	Severity        string  `json:"severity"`
	Weight          int     `json:"weight"`
	Status          string  `json:"status"`
	FoundValue      string  `json:"found_value,omitempty"`
	ExpectedValue   string  `json:"expected_value,omitempty"`
	Reason          string  `json:"reason,omitempty"`
	Penalty         int     `json:"penalty"`
	WeightedPenalty float64 `json:"weighted_penalty"`
	Remediation     string  `json:"remediation,omitempty"`
}

// RowFromClassified flattens a classified result for sink consumption.
func RowFromClassified(file string, cr score.ClassifiedResult) ResultRow {
	rule := cr.Result.Rule
	return ResultRow{
		File:            file,
		RuleID:          rule.RuleID,
		Standard:        rule.Standard,
		ControlID:       rule.ControlID,
		Title:           rule.Title,
		Vendor:          rule.Vendor,
		Category:        rule.Category,
		Severity:        cr.SeverityLabel,
		Weight:          rule.Weight,
		Status:          cr.StatusLabel,
		FoundValue:      cr.Result.FoundValue,
		ExpectedValue:   cr.Result.ExpectedValue,
		Reason:          cr.Result.Reason,
		Penalty:         cr.Penalty,
		WeightedPenalty: cr.WeightedPenalty,
		Remediation:     rule.RemediationText,
	}
}

// DocumentReport is the full evaluation envelope for one document; the report
// sink renders it, streaming sinks ignore it.
type DocumentReport struct {
	File          string                       `json:"file"`
	EngineVersion string                       `json:"engine_version,omitempty"`
	SHA256        string                       `json:"sha256,omitempty"`
	Size          int64                        `json:"size,omitempty"`
	Vendor        detect.Verdict               `json:"vendor"`
	Standards     []string                     `json:"standards_evaluated,omitempty"`
	Rows          []ResultRow                  `json:"results"`
	Score         score.ComplianceScore        `json:"score"`
	CrossMappings []rules.CrossStandardMapping `json:"cross_standard_mappings,omitempty"`
}
