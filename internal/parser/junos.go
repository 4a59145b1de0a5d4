package parser

import (
	"strings"

	"confaudit/internal/detect"
)

// parseJunos handles Juniper configurations in either the flattened "set"
// command form or the nested curly-brace form. The dominant form is detected
// by counting form-specific line markers; the document is then parsed in that
// single mode, never mixed.
func parseJunos(content string) *Config {
	cfg := newConfig(detect.VendorJunos)
	lines := strings.Split(content, "\n")

	setCount := 0
	braceCount := 0
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "set ") {
			setCount++
		}
		if strings.Contains(l, "{") || strings.Contains(l, "}") {
			braceCount++
		}
	}

	if setCount > braceCount {
		parseJunosSet(lines, cfg)
	} else {
		parseJunosHierarchical(lines, cfg)
	}
	return cfg
}

func parseJunosSet(lines []string, cfg *Config) {
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "/*") {
			continue
		}

		var path string
		switch {
		case strings.HasPrefix(line, "set "):
			path = line[len("set "):]
		case strings.HasPrefix(line, "deactivate "):
			path = line[len("deactivate "):]
			cfg.FlatKeys["deactivate"+BlockSeparator+path] = "true"
			continue
		default:
			continue
		}

		parts := strings.Fields(path)
		if len(parts) < 2 {
			cfg.FlatKeys[path] = "true"
			continue
		}

		value := parts[len(parts)-1]
		cfg.FlatKeys[strings.Join(parts[:len(parts)-1], " ")] = value

		// Track the top-level stanza as a block the first time it appears.
		section := parts[0]
		if _, ok := cfg.Sections[section]; !ok {
			cfg.openBlock(section)
		}

		key := parts[len(parts)-1]
		if len(parts) > 2 {
			key = parts[len(parts)-2]
		}
		cfg.Sections[section][key] = value
	}
}

func parseJunosHierarchical(lines []string, cfg *Config) {
	var stack []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*/") {
			continue
		}

		if strings.HasSuffix(line, "{") {
			name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			stack = append(stack, name)
			cfg.openBlock(strings.Join(stack, " "))
			continue
		}

		if line == "}" {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		line = strings.TrimSpace(strings.TrimRight(line, ";"))
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		key := line
		value := "true"
		if len(parts) >= 2 {
			key = parts[0]
			value = strings.Join(parts[1:], " ")
		}

		flatKey := key
		if len(stack) > 0 {
			flatKey = strings.Join(stack, " ") + " " + key
			cfg.section(strings.Join(stack, " "))[key] = value
		}
		cfg.FlatKeys[flatKey] = value
	}
}
