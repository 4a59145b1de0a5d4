package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"confaudit/internal/detect"
	"confaudit/internal/score"
)

func init() {
	// Keep assertions free of ANSI escapes.
	color.NoColor = true
}

func sampleRow(status string) ResultRow {
	return ResultRow{
		File:     "router.cfg",
		RuleID:   "cis-cisco-001",
		Standard: "CIS",
		Vendor:   "cisco",
		Severity: "high",
		Weight:   5,
		Status:   status,
		Reason:   "Expected equals '2', found '1'",
	}
}

func TestConsoleSinkText(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", nil)

	vendor := detect.Verdict{Vendor: "cisco", Confidence: 0.85, Method: "signature"}
	if err := sink.Write(Event{Type: EventDocumentStarted, File: "router.cfg", Vendor: &vendor}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(sampleRow("FAIL")); err != nil {
		t.Fatal(err)
	}
	sc := score.ComplianceScore{Percentage: 71.42, RiskLevel: "Medium Risk", Passed: 3, Failed: 1}
	if err := sink.Write(Event{Type: EventDocumentFinished, File: "router.cfg", Score: &sc}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"== router.cfg (cisco, confidence 0.85)",
		"[FAIL] cis-cisco-001 - Expected equals '2', found '1'",
		"Score: 71.42% - Medium Risk",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConsoleSinkStatusFilter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "text", []string{"fail"})

	if err := sink.Write(sampleRow("PASS")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(sampleRow("FAIL")); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	if strings.Contains(out, "[PASS]") {
		t.Errorf("PASS row not filtered:\n%s", out)
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Errorf("FAIL row missing:\n%s", out)
	}
}

func TestConsoleSinkJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "json", nil)

	if err := sink.Write(sampleRow("FAIL")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(sampleRow("PASS")); err != nil {
		t.Fatal(err)
	}
	// Events are not part of the collected array.
	if err := sink.Write(Event{Type: EventRunFinished}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	var rows []ResultRow
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].RuleID != "cis-cisco-001" {
		t.Errorf("rule_id = %q", rows[0].RuleID)
	}
}

func TestConsoleSinkNDJSON(t *testing.T) {
	var buf bytes.Buffer
	sink := NewConsoleSink(&buf, "ndjson", nil)

	if err := sink.Write(Event{Type: EventRunStarted}); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write(sampleRow("FAIL")); err != nil {
		t.Fatal(err)
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}

	var e Event
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("invalid NDJSON line: %v", err)
	}
	if e.Type != EventRuleResult {
		t.Errorf("type = %q, want %q", e.Type, EventRuleResult)
	}
	if e.Result == nil || e.Result.RuleID != "cis-cisco-001" {
		t.Errorf("nested result = %+v", e.Result)
	}
}

func TestManagerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	m := NewManager()
	if err := m.AddSink(NewConsoleSink(&a, "ndjson", nil)); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSink(NewConsoleSink(&b, "ndjson", nil)); err != nil {
		t.Fatal(err)
	}

	if err := m.Write(sampleRow("PASS")); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	if a.Len() == 0 || b.Len() == 0 {
		t.Fatalf("sinks not both written: %d, %d bytes", a.Len(), b.Len())
	}
}

func TestManagerRejectsNilSink(t *testing.T) {
	m := NewManager()
	if err := m.AddSink(nil); err == nil {
		t.Fatal("AddSink(nil) err = nil, want error")
	}
}
