package detect

import (
	"strings"
	"testing"
)

func TestDetectExtensionOverride(t *testing.T) {
	tests := []struct {
		filename string
		vendor   string
	}{
		{"router.junos", VendorJunos},
		{"site.htaccess", VendorApache},
		{"ROUTER.JUNOS", VendorJunos},
	}
	for _, tt := range tests {
		got := Detect(tt.filename, "whatever content")
		if got.Vendor != tt.vendor {
			t.Fatalf("Detect(%q) vendor = %q, want %q", tt.filename, got.Vendor, tt.vendor)
		}
		if got.Method != MethodExtension {
			t.Fatalf("Detect(%q) method = %q, want %q", tt.filename, got.Method, MethodExtension)
		}
		if got.Confidence != 0.95 {
			t.Fatalf("Detect(%q) confidence = %v, want 0.95", tt.filename, got.Confidence)
		}
	}
}

func TestDetectCiscoSignatures(t *testing.T) {
	content := strings.Join([]string{
		"hostname R1",
		"enable secret 5 $1$abcd",
		"interface GigabitEthernet0/1",
		"line vty 0 4",
		"ntp server 10.0.0.1",
	}, "\n")

	got := Detect("running-config.txt", content)
	if got.Vendor != VendorCisco {
		t.Fatalf("vendor = %q, want %q", got.Vendor, VendorCisco)
	}
	if got.Method != MethodSignature {
		t.Fatalf("method = %q, want %q", got.Method, MethodSignature)
	}
	// 5 signatures out of 14, /(14*0.5) = 0.714..., truncated to 0.71.
	if got.Confidence != 0.71 {
		t.Fatalf("confidence = %v, want 0.71", got.Confidence)
	}
}

func TestDetectFilenameHintMethod(t *testing.T) {
	got := Detect("cisco-core.cfg", "hostname R1\n")
	if got.Vendor != VendorCisco {
		t.Fatalf("vendor = %q, want %q", got.Vendor, VendorCisco)
	}
	if got.Method != MethodFilename {
		t.Fatalf("method = %q, want %q", got.Method, MethodFilename)
	}
	hasFilename := false
	for _, p := range got.MatchedPatterns {
		if strings.HasPrefix(p, "filename:") {
			hasFilename = true
		}
	}
	if !hasFilename {
		t.Fatalf("matched patterns %v missing filename hint", got.MatchedPatterns)
	}
}

func TestDetectUnknown(t *testing.T) {
	got := Detect("notes.txt", "just some prose\nnothing config-like here\n")
	if got.Vendor != VendorUnknown {
		t.Fatalf("vendor = %q, want %q", got.Vendor, VendorUnknown)
	}
	if got.Confidence != 0 || got.Method != MethodNone {
		t.Fatalf("got %+v, want zero confidence and method %q", got, MethodNone)
	}
	if len(got.MatchedPatterns) != 0 {
		t.Fatalf("matched patterns = %v, want none", got.MatchedPatterns)
	}
}

func TestDetectTieBreakPrefersEarlierVendor(t *testing.T) {
	// One cisco signature and one junos signature score 1.0 each; cisco is
	// declared first so it wins the tie.
	content := "hostname R1\nset system host-name r1\n"
	got := Detect("device.txt", content)
	if got.Vendor != VendorCisco {
		t.Fatalf("vendor = %q, want %q on equal scores", got.Vendor, VendorCisco)
	}
}

func TestDetectSignaturesAnchored(t *testing.T) {
	// The signature text appears mid-line only, so it must not count.
	got := Detect("device.txt", "description hostname R1 is upstream\n")
	if got.Vendor != VendorUnknown {
		t.Fatalf("vendor = %q, want %q for mid-line match", got.Vendor, VendorUnknown)
	}
}

func TestDetectOnePointPerPattern(t *testing.T) {
	// The same pattern matching many lines still scores once.
	single := Detect("device.txt", "ntp server 10.0.0.1\n")
	many := Detect("device.txt", "ntp server 10.0.0.1\nntp server 10.0.0.2\nntp server 10.0.0.3\n")
	if single.Confidence != many.Confidence {
		t.Fatalf("confidence %v != %v, repeated lines must not inflate score",
			single.Confidence, many.Confidence)
	}
}

func TestDetectIgnoresLinesBeyondLimit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 250; i++ {
		b.WriteString("filler line\n")
	}
	b.WriteString("hostname R1\n")
	got := Detect("device.txt", b.String())
	if got.Vendor != VendorUnknown {
		t.Fatalf("vendor = %q, want %q when signature is past the scan window", got.Vendor, VendorUnknown)
	}
}

func TestDetectMatchedPatternsCapped(t *testing.T) {
	lines := []string{
		"hostname R1",
		"enable secret 5 x",
		"interface GigabitEthernet0/1",
		"ip route 0.0.0.0 0.0.0.0 10.0.0.1",
		"ip ssh version 2",
		"line vty 0 4",
		"router ospf 1",
		"access-list 101 permit ip any any",
		"snmp-server community public",
		"banner motd ^C",
		"service timestamps debug",
		"no ip http server",
	}
	got := Detect("cisco-router-switch.cfg", strings.Join(lines, "\n"))
	if got.Vendor != VendorCisco {
		t.Fatalf("vendor = %q, want %q", got.Vendor, VendorCisco)
	}
	if len(got.MatchedPatterns) > 10 {
		t.Fatalf("matched patterns = %d entries, want at most 10", len(got.MatchedPatterns))
	}
}
