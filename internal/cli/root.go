package cli

import (
	"fmt"
	"os"

	"confaudit/internal/engine"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "confaudit",
	Short: "Evaluate network and system configuration files against compliance standards",
	Long: `ConfAudit parses heterogeneous configuration files (Cisco IOS, Junos, nginx,
Apache, Linux system files, firewall rulesets) and evaluates them against
declarative compliance rules, producing a deterministic compliance score.

ConfAudit is read-only: it inspects configurations, reports divergences, and
never mutates the files it evaluates.

Examples:
	# Show available commands and global flags
	confaudit --help

	# Evaluate a single configuration file
	confaudit scan --files router.cfg --rules-dir rules

	# Evaluate a directory, restricted to one standard
	confaudit scan --dir ./configs --standards CIS

	# List loaded rules
	confaudit rules list --rules-dir rules

	# Print build info
	confaudit version

Output:
	By default, commands write human-readable output to stdout.
	The scan command supports structured output via --out and Markdown
	reports via --report (see "confaudit scan --help").`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose logging (prints detection details, skipped rules, and full error details)")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	engine.Version = buildVersion
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
