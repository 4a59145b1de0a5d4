package output

import "testing"

func TestWhereMatch(t *testing.T) {
	tests := []struct {
		expr string
		row  ResultRow
		want bool
	}{
		{`status == "FAIL"`, sampleRow("FAIL"), true},
		{`status == "FAIL"`, sampleRow("PASS"), false},
		{`status == "FAIL" && severity == "high"`, sampleRow("FAIL"), true},
		{`weight >= 4`, sampleRow("FAIL"), true},
		{`standard == "PCI-DSS" || vendor == "cisco"`, sampleRow("PASS"), true},
		{`rule_id contains "cisco"`, sampleRow("PASS"), true},
	}
	for _, tt := range tests {
		w, err := NewWhere(tt.expr)
		if err != nil {
			t.Fatalf("NewWhere(%q): %v", tt.expr, err)
		}
		got, err := w.Match(tt.row)
		if err != nil {
			t.Fatalf("Match(%q): %v", tt.expr, err)
		}
		if got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestWhereEmptyMatchesEverything(t *testing.T) {
	w, err := NewWhere("")
	if err != nil {
		t.Fatalf("NewWhere: %v", err)
	}
	if w != nil {
		t.Fatalf("NewWhere(\"\") = %v, want nil filter", w)
	}
	got, err := w.Match(sampleRow("FAIL"))
	if err != nil || !got {
		t.Fatalf("nil filter Match = %v, %v; want true, nil", got, err)
	}
}

func TestWhereCompileError(t *testing.T) {
	if _, err := NewWhere(`status ==`); err == nil {
		t.Fatal("invalid expression: err = nil, want error")
	}
}
