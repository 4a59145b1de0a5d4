package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that reference flags.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Targeting
	FlagFiles    = "files"
	FlagDir      = "dir"
	FlagVendor   = "vendor"
	FlagMaxFiles = "max-files"

	// Rules
	FlagRulesDir  = "rules-dir"
	FlagStandards = "standards"
	FlagWhere     = "where"

	// Output
	FlagConsoleFormat       = "console-format"
	FlagConsoleFilterStatus = "console-filter-status"
	FlagReport              = "report"
	FlagOut                 = "out"
	FlagOutFormat           = "out-format"
	FlagNoConsole           = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagFailFast    = "fail-fast"
	FlagVerbose     = "verbose"
)
