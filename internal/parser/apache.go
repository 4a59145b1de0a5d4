package parser

import (
	"regexp"
	"strings"

	"confaudit/internal/detect"
)

var (
	apacheOpenTag  = regexp.MustCompile(`^<(\w+)\s*(.*?)>`)
	apacheCloseTag = regexp.MustCompile(`^</(\w+)>`)
)

// parseApache handles httpd configurations with XML-style container tags.
func parseApache(content string) *Config {
	cfg := newConfig(detect.VendorApache)

	var stack []string

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if apacheCloseTag.MatchString(line) {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		if m := apacheOpenTag.FindStringSubmatch(line); m != nil {
			name := m[1]
			if args := strings.TrimSpace(m[2]); args != "" {
				name = name + " " + args
			}
			stack = append(stack, name)
			cfg.openBlock(strings.Join(stack, BlockSeparator))
			continue
		}

		// Directive: "Key Value". A bare directive defaults to "On".
		key, value := splitDirective(line)
		if value == "" {
			value = "On"
		}
		value = strings.Trim(value, `"'`)

		section := "global"
		flatKey := key
		if len(stack) > 0 {
			section = strings.Join(stack, BlockSeparator)
			flatKey = section + BlockSeparator + key
		}
		cfg.FlatKeys[flatKey] = value
		cfg.section(section)[key] = value
	}

	return cfg
}
