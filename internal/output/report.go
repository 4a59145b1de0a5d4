package output

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// ReportSink collects document reports and renders a Markdown compliance
// report on Close.
type ReportSink struct {
	path    string
	file    *os.File
	mu      sync.Mutex
	reports []DocumentReport
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return &ReportSink{path: path, file: f}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := v.(DocumentReport); ok {
		s.reports = append(s.reports, r)
	}
	return nil
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("# Configuration Compliance Report\n\n")

	if len(s.reports) == 0 {
		b.WriteString("No documents were evaluated.\n")
	}

	for _, r := range s.reports {
		writeDocumentSection(&b, r)
	}

	if len(s.reports) > 0 && s.reports[0].EngineVersion != "" {
		fmt.Fprintf(&b, "---\n\nGenerated by confaudit %s\n", s.reports[0].EngineVersion)
	}

	_, writeErr := s.file.WriteString(b.String())
	closeErr := s.file.Close()
	if writeErr != nil {
		return writeErr
	}
	return closeErr
}

func writeDocumentSection(b *strings.Builder, r DocumentReport) {
	fmt.Fprintf(b, "## %s\n\n", r.File)
	fmt.Fprintf(b, "- Vendor: %s (confidence %.2f, method %s)\n", r.Vendor.Vendor, r.Vendor.Confidence, r.Vendor.Method)
	if r.SHA256 != "" {
		fmt.Fprintf(b, "- SHA-256: `%s`\n", r.SHA256)
	}
	if len(r.Standards) > 0 {
		fmt.Fprintf(b, "- Standards evaluated: %s\n", strings.Join(r.Standards, ", "))
	}
	fmt.Fprintf(b, "- Compliance: **%.2f%%** (%s)\n", r.Score.Percentage, r.Score.RiskLevel)
	fmt.Fprintf(b, "- Rules: %d total, %d passed, %d warned, %d failed, %d errored\n\n",
		r.Score.TotalRules, r.Score.Passed, r.Score.Warned, r.Score.Failed, r.Score.Errored)

	if len(r.Score.PerStandard) > 0 {
		b.WriteString("### Per-standard scores\n\n")
		b.WriteString("| Standard | Score | Risk | Passed | Failed |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, std := range r.Score.StandardsSorted() {
			ss := r.Score.PerStandard[std]
			fmt.Fprintf(b, "| %s | %.2f%% | %s | %d | %d |\n",
				std, ss.Percentage, ss.RiskLevel, ss.Passed, ss.Failed)
		}
		b.WriteString("\n")
	}

	if len(r.Score.PerCategory) > 0 {
		b.WriteString("### Per-category scores\n\n")
		for _, cat := range r.Score.CategoriesSorted() {
			fmt.Fprintf(b, "- %s: %.2f%%\n", cat, r.Score.PerCategory[cat])
		}
		b.WriteString("\n")
	}

	var failed []ResultRow
	for _, row := range r.Rows {
		if row.Status == "FAIL" || row.Status == "ERROR" {
			failed = append(failed, row)
		}
	}
	if len(failed) > 0 {
		b.WriteString("### Findings\n\n")
		for _, row := range failed {
			fmt.Fprintf(b, "- **%s** [%s/%s, %s, weight %d]: %s\n",
				row.RuleID, row.Standard, row.ControlID, row.Severity, row.Weight, row.Reason)
			if row.Remediation != "" {
				fmt.Fprintf(b, "  - Remediation: %s\n", row.Remediation)
			}
		}
		b.WriteString("\n")
	}

	if len(r.CrossMappings) > 0 {
		b.WriteString("### Cross-standard mappings\n\n")
		for _, m := range r.CrossMappings {
			refs := make([]string, 0, len(m.Mappings))
			for _, ref := range m.Mappings {
				refs = append(refs, fmt.Sprintf("%s %s", ref.Standard, ref.ControlID))
			}
			fmt.Fprintf(b, "- %s: %s\n", m.CanonicalControl, strings.Join(refs, "; "))
		}
		b.WriteString("\n")
	}
}
