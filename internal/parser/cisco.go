package parser

import (
	"regexp"
	"strings"

	"confaudit/internal/detect"
)

var ciscoSkipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*!`),
	regexp.MustCompile(`^\s*$`),
	regexp.MustCompile(`^Building\s+configuration`),
	regexp.MustCompile(`^Current\s+configuration`),
	regexp.MustCompile(`^end\s*$`),
}

var ciscoSectionStart = regexp.MustCompile(`(?i)^(interface|router|line|ip access-list|crypto|class-map|` +
	`policy-map|route-map|vlan|spanning-tree|aaa|key chain)\s+(.*)`)

// parseCisco handles IOS/IOS-XE style configurations. Sections open on a
// recognized top-level command and close on the next unindented line.
func parseCisco(content string) *Config {
	cfg := newConfig(detect.VendorCisco)

	currentSection := ""
	currentBlock := map[string]string{}

	save := func() {
		if currentSection == "" {
			return
		}
		saved := make(map[string]string, len(currentBlock))
		for k, v := range currentBlock {
			saved[k] = v
		}
		cfg.Sections[currentSection] = saved

		if name, ok := strings.CutPrefix(currentSection, "interface "); ok {
			iface := make(map[string]string, len(currentBlock))
			for k, v := range currentBlock {
				iface[k] = v
			}
			cfg.Interfaces[name] = iface
		}
	}

	for _, rawLine := range strings.Split(content, "\n") {
		line := strings.TrimRight(rawLine, " \t\r")

		if ciscoShouldSkip(line) {
			continue
		}

		if m := ciscoSectionStart.FindStringSubmatch(line); m != nil {
			save()
			currentSection = strings.ToLower(m[1]) + " " + strings.TrimSpace(m[2])
			currentBlock = map[string]string{}
			cfg.Blocks = append(cfg.Blocks, currentSection)
			continue
		}

		// An unindented line ends the open section.
		if currentSection != "" && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			save()
			currentSection = ""
			currentBlock = map[string]string{}
		}

		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}

		key, value := ciscoKV(stripped)
		if currentSection != "" {
			currentBlock[key] = value
			cfg.FlatKeys[currentSection+BlockSeparator+key] = value
		} else {
			cfg.FlatKeys[key] = value
		}
	}

	save()
	return cfg
}

func ciscoShouldSkip(line string) bool {
	for _, p := range ciscoSkipPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// ciscoKV splits one command into a key/value pair:
//
//	hostname R1        -> ("hostname", "R1")
//	no ip http server  -> ("no ip http server", "true")
//	ip ssh version 2   -> ("ip ssh version", "2")
func ciscoKV(line string) (string, string) {
	if strings.HasPrefix(line, "no ") {
		return line, "true"
	}

	parts := strings.Fields(line)
	switch len(parts) {
	case 1:
		return line, "true"
	case 2:
		return parts[0], parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
