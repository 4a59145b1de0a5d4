package normalize

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"confaudit/internal/parser"
)

func TestKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HostName", "hostname"},
		{"  ip   ssh  version ", "ip ssh version"},
		{"interface gi0/1", "interface gigabitethernet0/1"},
		{"interface fa0/1", "interface fastethernet0/1"},
		{"interface lo0", "interface loopback0"},
		{"login banner", "login banner"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Key(tt.in); got != tt.want {
			t.Errorf("Key(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"yes", "yes"},
		{"on", "yes"},
		{"Enabled", "yes"},
		{"TRUE", "yes"},
		{"1", "yes"},
		{"off", "no"},
		{"Disabled", "no"},
		{"0", "no"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{`"`, ""},
		{"'", ""},
		{"  spaced  ", "spaced"},
		{"TLSv1.2", "TLSv1.2"},
	}
	for _, tt := range tests {
		if got := Value(tt.in); got != tt.want {
			t.Errorf("Value(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	p := &parser.Config{
		Vendor: "cisco",
		FlatKeys: map[string]string{
			"HostName":       "R1",
			"ip ssh version": "2",
		},
		Sections: map[string]map[string]string{
			"line vty 0 4": {"Transport Input": "SSH"},
		},
		Interfaces: map[string]map[string]string{
			"Eth0": {"shutdown": "true"},
		},
		RawLineCount: 12,
	}

	cfg := Normalize(p)

	if cfg.Vendor != "cisco" {
		t.Fatalf("vendor = %q", cfg.Vendor)
	}
	if got, _ := cfg.Get("hostname"); got != "R1" {
		t.Errorf("Get(hostname) = %q, want R1", got)
	}
	if got, _ := cfg.Get("line vty 0 4::transport input"); got != "SSH" {
		t.Errorf("block-qualified entry = %q, want SSH", got)
	}
	if !cfg.HasBlock("line vty 0 4") {
		t.Errorf("HasBlock(line vty 0 4) = false")
	}
	if cfg.Metadata["raw_line_count"] != "12" {
		t.Errorf("raw_line_count = %q, want 12", cfg.Metadata["raw_line_count"])
	}

	want := map[string]string{"shutdown": "yes"}
	if diff := cmp.Diff(want, cfg.Block("interface ethernet0")); diff != "" {
		t.Errorf("interface block mismatch (-want +got):\n%s", diff)
	}
}

func TestGetCaseInsensitive(t *testing.T) {
	p := &parser.Config{
		Vendor:   "linux",
		FlatKeys: map[string]string{"PermitRootLogin": "no"},
	}
	cfg := Normalize(p)

	for _, key := range []string{"permitrootlogin", "PermitRootLogin", "PERMITROOTLOGIN", " permitrootlogin "} {
		if got, ok := cfg.Get(key); !ok || got != "no" {
			t.Errorf("Get(%q) = %q, %v; want no, true", key, got, ok)
		}
	}
	if _, ok := cfg.Get("permitemptypasswords"); ok {
		t.Errorf("Get on absent key reported present")
	}
}

func TestGetWhitespaceCompact(t *testing.T) {
	p := &parser.Config{
		Vendor:   "cisco",
		FlatKeys: map[string]string{"ip ssh version": "2"},
	}
	cfg := Normalize(p)
	if got, ok := cfg.Get("ip   ssh   version"); !ok || got != "2" {
		t.Errorf("Get with extra spaces = %q, %v; want 2, true", got, ok)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	if got := Key(Key("IP  SSH  Version")); got != "ip ssh version" {
		t.Errorf("Key not idempotent: %q", got)
	}
	if got := Value(Value("Enabled")); got != "yes" {
		t.Errorf("Value not idempotent: %q", got)
	}
}
