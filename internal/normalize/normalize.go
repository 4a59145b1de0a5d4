// Package normalize canonicalizes a vendor-flavored parse result into a
// vendor-agnostic schema used for all rule lookups. Keys and block names are
// lower-cased and whitespace-compacted; values get boolean synonym folding
// and quote stripping.
package normalize

import (
	"strconv"
	"strings"

	"confaudit/internal/parser"
)

// BlockSeparator qualifies a key with its owning block inside Entries.
const BlockSeparator = "::"

// Config is the canonical, vendor-agnostic document. Immutable after
// Normalize returns; lookups are case-insensitive and whitespace-compacted.
type Config struct {
	Vendor   string                       `json:"vendor"`
	Entries  map[string]string            `json:"entries"`
	Blocks   map[string]map[string]string `json:"blocks"`
	Metadata map[string]string            `json:"metadata,omitempty"`
}

// Get looks up an entry by key, case-insensitively. The bool reports whether
// the key was present.
func (c *Config) Get(key string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if v, ok := c.Entries[k]; ok {
		return v, true
	}
	compact := strings.Join(strings.Fields(k), " ")
	if v, ok := c.Entries[compact]; ok {
		return v, true
	}
	return "", false
}

// HasKey reports whether an entry exists for key.
func (c *Config) HasKey(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// HasBlock reports whether a named block exists.
func (c *Config) HasBlock(name string) bool {
	_, ok := c.Blocks[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Block returns the contents of a named block, or nil if absent.
func (c *Config) Block(name string) map[string]string {
	return c.Blocks[strings.ToLower(strings.TrimSpace(name))]
}

// Interface abbreviations resolved inside keys that mention an interface.
var abbreviations = []struct{ abbr, full string }{
	{"gig", "gigabitethernet"},
	{"fa", "fastethernet"},
	{"eth", "ethernet"},
	{"lo", "loopback"},
	{"po", "port-channel"},
	{"gi", "gigabitethernet"},
	{"te", "tengigeethernet"},
}

// Normalize canonicalizes a parsed configuration. It is a pure function: the
// input is not modified and every flat key present in it stays retrievable,
// case-insensitively, in the output.
func Normalize(p *parser.Config) *Config {
	out := &Config{
		Vendor:   p.Vendor,
		Entries:  make(map[string]string, len(p.FlatKeys)),
		Blocks:   make(map[string]map[string]string, len(p.Sections)),
		Metadata: map[string]string{"raw_line_count": strconv.Itoa(p.RawLineCount)},
	}

	for key, value := range p.FlatKeys {
		out.Entries[Key(key)] = Value(value)
	}

	for name, section := range p.Sections {
		blockName := Key(name)
		block := make(map[string]string, len(section))
		for k, v := range section {
			nk := Key(k)
			nv := Value(v)
			block[nk] = nv
			out.Entries[blockName+BlockSeparator+nk] = nv
		}
		out.Blocks[blockName] = block
	}

	for name, iface := range p.Interfaces {
		blockName := Key("interface " + name)
		block := make(map[string]string, len(iface))
		for k, v := range iface {
			nk := Key(k)
			nv := Value(v)
			block[nk] = nv
			out.Entries[blockName+BlockSeparator+nk] = nv
		}
		out.Blocks[blockName] = block
	}

	return out
}

// Key canonicalizes a configuration key: lower-case, single-spaced, with
// interface abbreviations expanded.
func Key(key string) string {
	if key == "" {
		return key
	}
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.Join(strings.Fields(key), " ")
	return resolveAbbreviations(key)
}

var boolTrue = map[string]bool{
	"yes": true, "on": true, "true": true, "enable": true, "enabled": true, "1": true,
}

var boolFalse = map[string]bool{
	"no": true, "off": true, "false": true, "disable": true, "disabled": true, "0": true,
}

// Value canonicalizes a configuration value: boolean synonyms collapse to
// "yes"/"no", surrounding quotes are stripped, everything else is trimmed and
// left as-is.
func Value(value string) string {
	value = strings.TrimSpace(value)

	lower := strings.ToLower(value)
	if boolTrue[lower] {
		return "yes"
	}
	if boolFalse[lower] {
		return "no"
	}

	if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
		(strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'")) {
		// A lone quote is its own prefix and suffix and collapses to "".
		if len(value) == 1 {
			return ""
		}
		value = value[1 : len(value)-1]
	}
	return value
}

// resolveAbbreviations expands vendor shorthand inside interface keys only;
// the replacement is scoped to the "interface <abbr>" substring so ordinary
// words are never rewritten.
func resolveAbbreviations(key string) string {
	for _, a := range abbreviations {
		if strings.Contains(key, "interface "+a.abbr) {
			key = strings.Replace(key, "interface "+a.abbr, "interface "+a.full, 1)
		}
	}
	return key
}
