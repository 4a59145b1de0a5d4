package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	passColor    = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	errColor     = color.New(color.FgMagenta)
	skipColor    = color.New(color.FgHiBlack)
	headerColor  = color.New(color.Bold)
	lowRisk      = color.New(color.FgGreen, color.Bold)
	mediumRisk   = color.New(color.FgYellow, color.Bold)
	highRisk     = color.New(color.FgRed, color.Bold)
	criticalRisk = color.New(color.FgRed, color.Bold, color.Underline)
)

func statusColor(status string) *color.Color {
	switch status {
	case "PASS":
		return passColor
	case "FAIL":
		return failColor
	case "WARNING":
		return warnColor
	case "ERROR":
		return errColor
	default:
		return skipColor
	}
}

func riskColor(level string) *color.Color {
	switch level {
	case "Low Risk":
		return lowRisk
	case "Medium Risk":
		return mediumRisk
	case "High Risk":
		return highRisk
	default:
		return criticalRisk
	}
}

// ConsoleSink renders results for humans (text) or machines (json, ndjson).
type ConsoleSink struct {
	writer          io.Writer
	format          string // "text", "json", "ndjson"
	mu              sync.Mutex
	rows            []ResultRow
	allowedStatuses map[string]bool
}

func NewConsoleSink(w io.Writer, format string, filterStatuses []string) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	if format == "" {
		format = "text"
	}

	s := &ConsoleSink{writer: w, format: format}
	if len(filterStatuses) > 0 {
		s.allowedStatuses = make(map[string]bool)
		for _, st := range filterStatuses {
			s.allowedStatuses[strings.ToUpper(st)] = true
		}
	}
	return s
}

func (s *ConsoleSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(v)
}

func (s *ConsoleSink) writeLocked(v any) error {
	if len(s.allowedStatuses) > 0 {
		if r, ok := v.(ResultRow); ok && !s.allowedStatuses[r.Status] {
			return nil
		}
	}

	switch s.format {
	case "json":
		if r, ok := v.(ResultRow); ok {
			s.rows = append(s.rows, r)
		}
		return nil
	case "ndjson":
		encoder := json.NewEncoder(s.writer)
		switch t := v.(type) {
		case Event:
			if err := encoder.Encode(t); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		case ResultRow:
			e := eventFromRow(t)
			if err := encoder.Encode(e); err != nil {
				return err
			}
			return flushIfPossible(s.writer)
		default:
			return nil
		}
	case "text":
		return s.writeText(v)
	default:
		return fmt.Errorf("unsupported console format: %s", s.format)
	}
}

func (s *ConsoleSink) writeText(v any) error {
	switch t := v.(type) {
	case Event:
		switch t.Type {
		case EventDocumentStarted:
			vendor := ""
			if t.Vendor != nil {
				vendor = fmt.Sprintf(" (%s, confidence %.2f)", t.Vendor.Vendor, t.Vendor.Confidence)
			}
			if _, err := headerColor.Fprintf(s.writer, "== %s%s\n", t.File, vendor); err != nil {
				return err
			}
		case EventDocumentFinished:
			if t.Score != nil {
				sc := t.Score
				line := fmt.Sprintf("Score: %.2f%% - %s (%d passed, %d warned, %d failed, %d errored)",
					sc.Percentage, sc.RiskLevel, sc.Passed, sc.Warned, sc.Failed, sc.Errored)
				if _, err := riskColor(sc.RiskLevel).Fprintln(s.writer, line); err != nil {
					return err
				}
			}
		}
		return flushIfPossible(s.writer)
	case ResultRow:
		if _, err := fmt.Fprintf(s.writer, "[%s] %s", statusColor(t.Status).Sprint(t.Status), t.RuleID); err != nil {
			return err
		}
		if t.Reason != "" {
			if _, err := fmt.Fprintf(s.writer, " - %s", t.Reason); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(s.writer); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	default:
		// Ignore document reports in text mode.
		return nil
	}
}

func (s *ConsoleSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.format == "json" {
		encoder := json.NewEncoder(s.writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s.rows); err != nil {
			return err
		}
		return flushIfPossible(s.writer)
	}
	return nil
}

func eventFromRow(r ResultRow) Event {
	row := r
	return Event{Type: EventRuleResult, File: r.File, Result: &row}
}
