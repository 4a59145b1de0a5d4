package parser

import (
	"fmt"
	"regexp"
	"strings"

	"confaudit/internal/detect"
)

var (
	iptablesChainPolicy = regexp.MustCompile(`^:(\w+)\s+(ACCEPT|DROP|REJECT)\s*`)
	iptablesRule        = regexp.MustCompile(`^-A\s+(\w+)\s+(.*)`)
	iptablesPolicyFlag  = regexp.MustCompile(`^-P\s+(\w+)\s+(ACCEPT|DROP|REJECT)`)
	iptablesDport       = regexp.MustCompile(`--dport\s+(\S+)`)
	iptablesTarget      = regexp.MustCompile(`-j\s+(\w+)`)
)

// parseFirewall sniffs the firewall technology from content and dispatches to
// one of three internal strategies: iptables-save format, nftables, or a
// generic key/value fallback.
func parseFirewall(content string) *Config {
	cfg := newConfig(detect.VendorFirewall)
	lines := strings.Split(content, "\n")

	fwType := firewallType(content)
	cfg.Sections["type"] = map[string]string{"firewall_type": fwType}

	switch fwType {
	case "iptables":
		parseIptables(lines, cfg)
	case "nftables":
		parseNftables(lines, cfg)
	default:
		parseFirewallGeneric(lines, cfg)
	}

	cfg.Blocks = append(cfg.Blocks, fwType)
	return cfg
}

func firewallType(content string) string {
	switch {
	case strings.Contains(content, "*filter") ||
		strings.HasPrefix(strings.TrimSpace(content), ":INPUT") ||
		strings.Contains(content, "iptables"):
		return "iptables"
	case strings.Contains(content, "nft ") || strings.Contains(content, "table "):
		return "nftables"
	case strings.Contains(content, "config firewall"):
		return "fortigate"
	default:
		return "generic"
	}
}

func parseIptables(lines []string, cfg *Config) {
	currentTable := "filter"
	ruleCount := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Table declaration: *filter, *nat, *mangle.
		if strings.HasPrefix(line, "*") {
			currentTable = line[1:]
			cfg.openBlock("table:" + currentTable)
			continue
		}

		// Chain policy: ":INPUT ACCEPT [0:0]".
		if m := iptablesChainPolicy.FindStringSubmatch(line); m != nil {
			key := "default_policy_" + strings.ToLower(m[1])
			cfg.FlatKeys[key] = m[2]
			if s, ok := cfg.Sections["table:"+currentTable]; ok {
				s[key] = m[2]
			}
			continue
		}

		// Rule: "-A INPUT -p tcp --dport 22 -j ACCEPT".
		if m := iptablesRule.FindStringSubmatch(line); m != nil {
			ruleCount++
			body := m[2]
			ruleKey := fmt.Sprintf("rule_%s_%d", strings.ToLower(m[1]), ruleCount)
			cfg.FlatKeys[ruleKey] = body

			if pm := iptablesDport.FindStringSubmatch(body); pm != nil {
				cfg.FlatKeys[ruleKey+"_dport"] = pm[1]
			}
			if tm := iptablesTarget.FindStringSubmatch(body); tm != nil {
				cfg.FlatKeys[ruleKey+"_target"] = tm[1]
			}
			continue
		}

		if line == "COMMIT" {
			cfg.FlatKeys["table_"+currentTable+"_committed"] = "true"
			continue
		}

		if m := iptablesPolicyFlag.FindStringSubmatch(line); m != nil {
			cfg.FlatKeys["default_policy_"+strings.ToLower(m[1])] = m[2]
		}
	}
}

func parseNftables(lines []string, cfg *Config) {
	var stack []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasSuffix(line, "{") {
			stack = append(stack, strings.TrimSpace(strings.TrimSuffix(line, "{")))
			cfg.openBlock(strings.Join(stack, BlockSeparator))
			continue
		}

		if line == "}" {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		clean := strings.TrimSpace(strings.TrimRight(line, ";"))
		if clean == "" {
			continue
		}

		currentBlock := "global"
		if len(stack) > 0 {
			currentBlock = strings.Join(stack, BlockSeparator)
		}
		key, value := splitDirective(clean)
		if value == "" {
			value = "true"
		}

		cfg.FlatKeys[currentBlock+BlockSeparator+key] = value
		if s, ok := cfg.Sections[currentBlock]; ok {
			s[key] = value
		}
	}
}

// parseFirewallGeneric stores every remaining line as a key/value pair; a
// line with no value becomes an inert boolean flag.
func parseFirewallGeneric(lines []string, cfg *Config) {
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		key, value := splitDirective(line)
		if value == "" {
			value = "true"
		}
		cfg.FlatKeys[key] = value
	}
}
