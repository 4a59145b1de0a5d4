package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"confaudit/internal/detect"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect scan
	// behavior, keep the CLI flags in internal/cli/scan.go in sync.
	Targeting Targeting
	Rules     Rules
	Output    Output
	Runtime   Runtime
}

type Targeting struct {
	// Files is an explicit list of configuration files to evaluate (see
	// --files and positional arguments). Values may be provided as repeated
	// flags and/or comma-separated lists.
	Files []string

	// Dir is a directory whose supported configuration files are evaluated
	// (see --dir).
	Dir string

	// Vendor overrides vendor detection for every file (see --vendor).
	// Allowed values: cisco, junos, nginx, apache, linux, firewall.
	// Empty means auto-detect.
	Vendor string

	// MaxFiles limits how many files to evaluate (see --max-files).
	// 0 means unlimited.
	MaxFiles int
}

type Rules struct {
	// Dir is the rule repository directory (see --rules-dir). Required.
	Dir string

	// Standards restricts evaluation to these compliance standards (see
	// --standards). Empty means all standards, matched case-insensitively.
	Standards []string

	// Where filters result rows with a boolean expression before output
	// (see --where), e.g. 'status == "FAIL" && severity == "high"'.
	Where string
}

type Output struct {
	// ConsoleFormat controls the console sink format (see --console-format).
	// Allowed values: text, json, ndjson.
	ConsoleFormat string

	// ConsoleFilterStatus filters console output by result status (see
	// --console-filter-status). Allowed values: PASS, FAIL, WARNING, ERROR,
	// SKIPPED.
	ConsoleFilterStatus []string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format). Allowed
	// values: json, ndjson. If empty, it is inferred from the --out file
	// extension.
	OutFormat string

	// NoConsole suppresses the console sink (see --no-console).
	NoConsole bool
}

type Runtime struct {
	// Concurrency controls parallelism across documents (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Timeout is the global evaluation timeout for the run (see --timeout).
	// Must be > 0.
	Timeout time.Duration

	// FailFast stops the run on the first document error (see --fail-fast).
	FailFast bool

	// Verbose prints load-time and evaluation diagnostics to stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Rules: Rules{
			Dir: "rules",
		},
		Output: Output{
			ConsoleFormat: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			Timeout:     10 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Targeting.Files = splitCommaList(c.Targeting.Files)
	c.Rules.Standards = splitCommaList(c.Rules.Standards)
	c.Output.ConsoleFilterStatus = splitCommaList(c.Output.ConsoleFilterStatus)

	if len(c.Targeting.Files) == 0 && c.Targeting.Dir == "" {
		return errors.New("at least one of --files or --dir must be provided")
	}

	if c.Targeting.Vendor != "" {
		v := strings.ToLower(strings.TrimSpace(c.Targeting.Vendor))
		valid := false
		for _, known := range detect.Vendors {
			if v == known {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unsupported --vendor: %s (must be one of: %s)",
				c.Targeting.Vendor, strings.Join(detect.Vendors, ", "))
		}
		c.Targeting.Vendor = v
	}

	if c.Rules.Dir == "" {
		return errors.New("--rules-dir must be provided")
	}

	c.Output.ConsoleFormat = normalizeEnumValue(c.Output.ConsoleFormat)
	switch c.Output.ConsoleFormat {
	case "text", "json", "ndjson":
	case "":
		return errors.New("--console-format must be one of: text, json, ndjson")
	default:
		return fmt.Errorf("unsupported --console-format: %s (must be one of: text, json, ndjson)", c.Output.ConsoleFormat)
	}

	for _, st := range c.Output.ConsoleFilterStatus {
		switch strings.ToUpper(st) {
		case "PASS", "FAIL", "WARNING", "ERROR", "SKIPPED":
		default:
			return fmt.Errorf("unsupported --console-filter-status: %s", st)
		}
	}

	if c.Targeting.MaxFiles < 0 {
		return errors.New("--max-files must be >= 0")
	}
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		}
		if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported --out-format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
	} else if c.Output.OutFormat != "" {
		return errors.New("--out-format requires --out")
	}

	return nil
}

func normalizeEnumValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// splitCommaList flattens repeated flag values and comma-separated entries
// into one trimmed list, dropping empties.
func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
