// Package parser turns raw configuration text into a structured, vendor
// flavored representation. One grammar per vendor sits behind a closed
// dispatch; parsing is best effort and never fails on malformed lines.
package parser

import (
	"fmt"
	"strings"

	"confaudit/internal/detect"
)

// BlockSeparator joins a block path with a key when a directive is recorded
// inside a block.
const BlockSeparator = "::"

// Config is the vendor-flavored parse result. It is built once by a single
// grammar invocation and never mutated afterward.
type Config struct {
	Vendor string

	// FlatKeys maps fully block-qualified keys to string values.
	FlatKeys map[string]string

	// Sections maps a block path to the key/values recorded inside it.
	Sections map[string]map[string]string

	// Blocks records every block-open event in declaration order. The same
	// path appears more than once if a block is re-opened.
	Blocks []string

	// Interfaces mirrors interface blocks keyed by interface name with the
	// "interface " prefix stripped. Populated by the cisco grammar only.
	Interfaces map[string]map[string]string

	// RawLineCount is the number of lines in the original text.
	RawLineCount int
}

func newConfig(vendor string) *Config {
	return &Config{
		Vendor:     vendor,
		FlatKeys:   make(map[string]string),
		Sections:   make(map[string]map[string]string),
		Interfaces: make(map[string]map[string]string),
	}
}

// section returns the key/value map for a block path, creating it on first
// use.
func (c *Config) section(path string) map[string]string {
	s, ok := c.Sections[path]
	if !ok {
		s = make(map[string]string)
		c.Sections[path] = s
	}
	return s
}

// openBlock records a block-open event and ensures its section exists.
func (c *Config) openBlock(path string) {
	c.Blocks = append(c.Blocks, path)
	c.section(path)
}

// splitDirective splits a line on its first whitespace run. The remainder is
// trimmed; an empty remainder means the directive carried no value.
func splitDirective(line string) (key, rest string) {
	i := strings.IndexFunc(line, func(r rune) bool { return r == ' ' || r == '\t' })
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

// Parse dispatches content to the grammar for the given vendor. The vendor
// set is closed: anything outside it (including detect.VendorUnknown) is a
// hard error and the caller must abort the pipeline for this document.
func Parse(vendor, content string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(vendor) {
	case detect.VendorCisco:
		cfg = parseCisco(content)
	case detect.VendorJunos:
		cfg = parseJunos(content)
	case detect.VendorNginx:
		cfg = parseNginx(content)
	case detect.VendorApache:
		cfg = parseApache(content)
	case detect.VendorLinux:
		cfg = parseLinux(content)
	case detect.VendorFirewall:
		cfg = parseFirewall(content)
	case detect.VendorUnknown:
		return nil, fmt.Errorf("cannot parse: vendor is unknown")
	default:
		return nil, fmt.Errorf("no grammar registered for vendor %q (supported: %s)",
			vendor, strings.Join(detect.Vendors, ", "))
	}
	cfg.RawLineCount = len(strings.Split(content, "\n"))
	return cfg, nil
}
