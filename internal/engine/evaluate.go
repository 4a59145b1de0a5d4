package engine

import (
	"fmt"
	"sort"
	"strings"

	"confaudit/internal/detect"
	"confaudit/internal/input"
	"confaudit/internal/normalize"
	"confaudit/internal/parser"
	"confaudit/internal/output"
	"confaudit/internal/rules"
	"confaudit/internal/score"
)

// EvaluateDocument runs one document through the full pipeline and returns its
// report. vendorOverride, when non-empty, skips detection entirely. diag
// receives non-fatal notes (skipped rules, detection details) and may be nil.
func EvaluateDocument(doc *input.Document, repo *rules.Repo, standards []string,
	vendorOverride string, diag func(string)) (*output.DocumentReport, error) {

	if diag == nil {
		diag = func(string) {}
	}

	verdict := detect.Detect(doc.Filename, doc.Content)
	if vendorOverride != "" {
		verdict = detect.Verdict{Vendor: vendorOverride, Confidence: 1.0, Method: detect.MethodOverride}
	}
	if verdict.Vendor == detect.VendorUnknown {
		return nil, fmt.Errorf("could not determine configuration vendor for %s", doc.Path)
	}
	diag(fmt.Sprintf("detected vendor %s (%.2f, %s)", verdict.Vendor, verdict.Confidence, verdict.Method))

	parsed, err := parser.Parse(verdict.Vendor, doc.Content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", doc.Path, err)
	}
	cfg := normalize.Normalize(parsed)

	eng := &rules.Engine{Diag: diag}
	results := eng.Evaluate(cfg, repo.All(), standards)

	classified := score.Classify(results)
	sc := score.Calculate(classified)

	rows := make([]output.ResultRow, 0, len(classified))
	for _, cr := range classified {
		rows = append(rows, output.RowFromClassified(doc.Path, cr))
	}

	return &output.DocumentReport{
		File:          doc.Path,
		EngineVersion: Version,
		SHA256:        doc.SHA256,
		Size:          doc.Size,
		Vendor:        verdict,
		Standards:     standardsEvaluated(results, standards),
		Rows:          rows,
		Score:         sc,
		CrossMappings: relevantMappings(repo, results),
	}, nil
}

// standardsEvaluated reports which standards actually produced results. An
// explicit standards filter is echoed back upper-cased so the report matches
// rule-file conventions.
func standardsEvaluated(results []rules.Result, requested []string) []string {
	seen := map[string]bool{}
	for _, s := range requested {
		seen[strings.ToUpper(s)] = true
	}
	for _, res := range results {
		if res.Rule != nil {
			seen[strings.ToUpper(res.Rule.Standard)] = true
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// relevantMappings keeps only the cross-standard mappings whose canonical
// control or mapped controls matched a rule that was evaluated.
func relevantMappings(repo *rules.Repo, results []rules.Result) []rules.CrossStandardMapping {
	// Standard names are matched case-insensitively everywhere else, so
	// upper-case both the rule side and the mapping side of the key.
	controls := map[string]bool{}
	for _, res := range results {
		if res.Rule != nil && res.Rule.ControlID != "" {
			controls[strings.ToUpper(res.Rule.Standard)+":"+res.Rule.ControlID] = true
		}
	}
	var out []rules.CrossStandardMapping
	for _, m := range repo.CrossStandardMappings() {
		for _, ref := range m.Mappings {
			if controls[strings.ToUpper(ref.Standard)+":"+ref.ControlID] {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
