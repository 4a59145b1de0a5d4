// Package detect classifies raw configuration text into a vendor dialect
// using file extension overrides, filename hints, and content signatures.
package detect

import (
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// Known vendor labels. Priority order for tie-breaking is the declaration
// order below: when two vendors score equally, the earlier one wins.
const (
	VendorCisco    = "cisco"
	VendorJunos    = "junos"
	VendorNginx    = "nginx"
	VendorApache   = "apache"
	VendorLinux    = "linux"
	VendorFirewall = "firewall"
	VendorUnknown  = "unknown"
)

// Vendors lists every supported vendor in priority order.
var Vendors = []string{
	VendorCisco,
	VendorJunos,
	VendorNginx,
	VendorApache,
	VendorLinux,
	VendorFirewall,
}

// Verdict is the result of vendor detection for a single document.
type Verdict struct {
	Vendor          string   `json:"vendor"`
	Confidence      float64  `json:"confidence"`
	Method          string   `json:"method"`
	MatchedPatterns []string `json:"matched_patterns,omitempty"`
}

// Detection methods.
const (
	MethodExtension = "extension"
	MethodSignature = "signature"
	MethodFilename  = "filename+signature"
	MethodOverride  = "override"
	MethodNone      = "none"
)

const (
	extensionConfidence = 0.95
	filenameHintScore   = 2.0
	signatureScore      = 1.0
	maxSignatureLines   = 200
	maxMatchedPatterns  = 10
)

var extensionMap = map[string]string{
	".junos":    VendorJunos,
	".htaccess": VendorApache,
}

type signature struct {
	source string
	re     *regexp.Regexp
}

func compileSignatures(patterns []string) []signature {
	sigs := make([]signature, 0, len(patterns))
	for _, p := range patterns {
		sigs = append(sigs, signature{source: p, re: regexp.MustCompile("(?i)" + p)})
	}
	return sigs
}

var contentSignatures = map[string][]signature{
	VendorCisco: compileSignatures([]string{
		`^hostname\s+\S+`,
		`^enable\s+(secret|password)\s+`,
		`^interface\s+(Ethernet|GigabitEthernet|FastEthernet|Loopback|Vlan|Serial)`,
		`^ip\s+route\s+`,
		`^ip\s+ssh\s+version`,
		`^line\s+(con|vty|aux)\s+`,
		`^router\s+(ospf|eigrp|bgp|rip)\s+`,
		`^access-list\s+\d+`,
		`^snmp-server\s+`,
		`^banner\s+(motd|login|exec)\s+`,
		`^service\s+(timestamps|password-encryption)`,
		`^no\s+ip\s+http\s+server`,
		`^crypto\s+(key|isakmp|ipsec)\s+`,
		`^ntp\s+server\s+`,
	}),
	VendorJunos: compileSignatures([]string{
		`^set\s+system\s+`,
		`^set\s+interfaces\s+`,
		`^set\s+firewall\s+`,
		`^set\s+protocols\s+`,
		`^set\s+security\s+`,
		`^set\s+routing-options\s+`,
		`^system\s*\{`,
		`^interfaces\s*\{`,
		`^protocols\s*\{`,
		`^security\s*\{`,
	}),
	VendorNginx: compileSignatures([]string{
		`^\s*server\s*\{`,
		`^\s*http\s*\{`,
		`^\s*location\s+[/~]`,
		`^\s*upstream\s+\w+`,
		`^\s*listen\s+\d+`,
		`^\s*server_name\s+`,
		`^\s*ssl_certificate\s+`,
		`^\s*proxy_pass\s+`,
		`^\s*worker_processes\s+`,
		`^\s*error_log\s+`,
		`^\s*access_log\s+`,
		`^\s*add_header\s+`,
		`^\s*ssl_protocols\s+`,
	}),
	VendorApache: compileSignatures([]string{
		`<VirtualHost\s+`,
		`ServerName\s+`,
		`DocumentRoot\s+`,
		`<Directory\s+`,
		`ServerRoot\s+`,
		`LoadModule\s+`,
		`ErrorLog\s+`,
		`CustomLog\s+`,
		`SSLEngine\s+`,
		`SSLCertificateFile\s+`,
		`ServerTokens\s+`,
		`ServerSignature\s+`,
		`TraceEnable\s+`,
		`Header\s+(set|append|unset)\s+`,
	}),
	VendorLinux: compileSignatures([]string{
		`^PermitRootLogin\s+`,
		`^PasswordAuthentication\s+`,
		`^Protocol\s+\d`,
		`^LogLevel\s+`,
		`^MaxAuthTries\s+`,
		`^X11Forwarding\s+`,
		`^AllowTcpForwarding\s+`,
		`^ClientAliveInterval\s+`,
		`^#.*sshd_config`,
		`^#.*sysctl\.conf`,
		`^net\.ipv4\.`,
		`^net\.ipv6\.`,
		`^kernel\.`,
		`^fs\.suid_dumpable`,
		`^PASS_MAX_DAYS\s+`,
		`^PASS_MIN_DAYS\s+`,
		`^PASS_MIN_LEN\s+`,
		`^UMASK\s+`,
		`^Ciphers\s+`,
		`^MACs\s+`,
		`^KexAlgorithms\s+`,
	}),
	VendorFirewall: compileSignatures([]string{
		`^config\s+firewall\s+policy`,
		`^iptables\s+-[A-Z]`,
		`^-A\s+(INPUT|OUTPUT|FORWARD)\s+`,
		`^nft\s+(add|list|delete)\s+`,
		`^set\s+policy\s+`,
		`^:INPUT\s+(ACCEPT|DROP)`,
		`^:OUTPUT\s+(ACCEPT|DROP)`,
		`^:FORWARD\s+(ACCEPT|DROP)`,
		`^\*filter`,
		`^COMMIT`,
		`^-P\s+(INPUT|OUTPUT|FORWARD)\s+`,
	}),
}

var filenameHints = map[string][]signature{
	VendorCisco:    compileSignatures([]string{`cisco`, `ios`, `router`, `switch`}),
	VendorJunos:    compileSignatures([]string{`junos`, `juniper`, `srx`, `mx\d`}),
	VendorNginx:    compileSignatures([]string{`nginx`}),
	VendorApache:   compileSignatures([]string{`apache`, `httpd`, `htaccess`}),
	VendorLinux:    compileSignatures([]string{`sshd`, `sysctl`, `passwd`, `login\.defs`, `audit`}),
	VendorFirewall: compileSignatures([]string{`firewall`, `iptables`, `nftables`, `pf\.conf`}),
}

// Detect classifies a configuration file. Three ordered passes: a file
// extension override wins immediately; otherwise filename hints and content
// signatures accumulate a per-vendor score and the highest-scoring vendor is
// returned. A zero score across the board yields VendorUnknown, which callers
// must treat as fatal for the rest of the pipeline.
func Detect(filename, content string) Verdict {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" {
		if vendor, ok := extensionMap[ext]; ok {
			return Verdict{
				Vendor:          vendor,
				Confidence:      extensionConfidence,
				Method:          MethodExtension,
				MatchedPatterns: []string{"extension:" + ext},
			}
		}
	}

	scores := make(map[string]float64, len(Vendors))
	var matched []string
	method := MethodSignature

	lowerName := strings.ToLower(filename)
	for _, vendor := range Vendors {
		for _, hint := range filenameHints[vendor] {
			if hint.re.MatchString(lowerName) {
				scores[vendor] += filenameHintScore
				matched = append(matched, "filename:"+hint.source)
				method = MethodFilename
			}
		}
	}

	lines := strings.Split(content, "\n")
	if len(lines) > maxSignatureLines {
		lines = lines[:maxSignatureLines]
	}
	for _, vendor := range Vendors {
		for _, sig := range contentSignatures[vendor] {
			for _, line := range lines {
				stripped := strings.TrimSpace(line)
				if stripped == "" {
					continue
				}
				// Anchored match against the stripped line; one point per
				// pattern no matter how many lines it would hit.
				if loc := sig.re.FindStringIndex(stripped); loc != nil && loc[0] == 0 {
					scores[vendor] += signatureScore
					matched = append(matched, "content:"+sig.source)
					break
				}
			}
		}
	}

	best := ""
	bestScore := 0.0
	for _, vendor := range Vendors {
		if scores[vendor] > bestScore {
			best = vendor
			bestScore = scores[vendor]
		}
	}

	if bestScore == 0 {
		return Verdict{Vendor: VendorUnknown, Confidence: 0, Method: MethodNone}
	}

	patternCount := len(contentSignatures[best])
	confidence := math.Min(bestScore/(float64(patternCount)*0.5), 1.0)
	confidence = math.Trunc(confidence*100) / 100

	return Verdict{
		Vendor:          best,
		Confidence:      confidence,
		Method:          method,
		MatchedPatterns: relevantPatterns(matched, best),
	}
}

// relevantPatterns keeps filename hits plus content hits that belong to the
// winning vendor, capped at maxMatchedPatterns entries.
func relevantPatterns(matched []string, vendor string) []string {
	winning := make(map[string]bool, len(contentSignatures[vendor]))
	for _, sig := range contentSignatures[vendor] {
		winning["content:"+sig.source] = true
	}

	var out []string
	for _, m := range matched {
		if strings.HasPrefix(m, "filename:") || winning[m] {
			out = append(out, m)
			if len(out) == maxMatchedPatterns {
				break
			}
		}
	}
	return out
}
