package parser

import (
	"regexp"
	"strings"

	"confaudit/internal/detect"
)

var (
	linuxMatchBlock = regexp.MustCompile(`(?i)^Match\s+(.*)`)
	linuxKV         = regexp.MustCompile(`^(\S+)\s*[=\s]\s*(.*)`)
)

// parseLinux handles host configuration files such as sshd_config,
// sysctl.conf, login.defs and auditd.conf: key=value or key value lines. The
// file flavor is sniffed from content and used as the section label.
func parseLinux(content string) *Config {
	cfg := newConfig(detect.VendorLinux)

	configType := linuxConfigType(content)

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := linuxMatchBlock.FindStringSubmatch(line); m != nil {
			cfg.openBlock("Match " + m[1])
			continue
		}

		m := linuxKV.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.TrimSpace(m[1])
		value := strings.Trim(strings.TrimSpace(m[2]), `"'`)

		// Drop inline comments.
		if i := strings.Index(value, " #"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}

		cfg.FlatKeys[key] = value
		cfg.section(configType)[key] = value
	}

	cfg.Blocks = append(cfg.Blocks, configType)
	return cfg
}

func linuxConfigType(content string) string {
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(lower, "permitrootlogin") || strings.Contains(lower, "sshd"):
		return "sshd_config"
	case strings.Contains(lower, "net.ipv4") || strings.Contains(lower, "sysctl"):
		return "sysctl"
	case strings.Contains(lower, "pass_max_days") || strings.Contains(lower, "login.defs"):
		return "login_defs"
	case strings.Contains(lower, "umask") && strings.Contains(lower, "pass_"):
		return "login_defs"
	case strings.Contains(lower, "auditd") || strings.Contains(lower, "log_file"):
		return "auditd"
	default:
		return "linux_generic"
	}
}
