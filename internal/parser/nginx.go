package parser

import (
	"regexp"
	"strings"

	"confaudit/internal/detect"
)

var (
	nginxBlockOpen   = regexp.MustCompile(`^(\S+(?:\s+\S+)*)\s*\{$`)
	nginxInlineBlock = regexp.MustCompile(`^(\S+)\s*\{(.*)\}`)
)

// parseNginx handles brace-delimited nginx configurations. Nested blocks are
// tracked with an explicit stack; a block's canonical path is the stack
// joined with "::".
func parseNginx(content string) *Config {
	cfg := newConfig(detect.VendorNginx)

	var stack []string
	currentBlock := "global"

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Inline block first: "events { worker_connections 512; }".
		if m := nginxInlineBlock.FindStringSubmatch(line); m != nil {
			fullBlock := strings.Join(append(append([]string{}, stack...), m[1]), BlockSeparator)
			cfg.openBlock(fullBlock)
			inner := strings.TrimRight(strings.TrimSpace(m[2]), ";")
			if inner != "" {
				key, value := splitDirective(inner)
				cfg.FlatKeys[fullBlock+BlockSeparator+key] = value
				cfg.Sections[fullBlock][key] = value
			}
			continue
		}

		if m := nginxBlockOpen.FindStringSubmatch(line); m != nil {
			stack = append(stack, strings.TrimSpace(m[1]))
			currentBlock = strings.Join(stack, BlockSeparator)
			cfg.openBlock(currentBlock)
			continue
		}

		if line == "}" || line == "};" {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			currentBlock = "global"
			if len(stack) > 0 {
				currentBlock = strings.Join(stack, BlockSeparator)
			}
			continue
		}

		// Directive: "key value;". A bare directive defaults to "on".
		clean := strings.TrimSpace(strings.TrimRight(line, ";"))
		if clean == "" {
			continue
		}

		key, value := splitDirective(clean)
		if value == "" {
			value = "on"
		}

		flatKey := key
		if len(stack) > 0 {
			flatKey = currentBlock + BlockSeparator + key
		}
		cfg.FlatKeys[flatKey] = value
		cfg.section(currentBlock)[key] = value
	}

	return cfg
}
