package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"confaudit/internal/config"
	"confaudit/internal/detect"
	"confaudit/internal/engine"
	"confaudit/internal/flags"

	"github.com/spf13/cobra"
)

var cfg = config.New()

var scanCmd = &cobra.Command{
	Use:   "scan [files...]",
	Short: "Evaluate configuration files against compliance rules",
	Long: `Evaluate one or more configuration files against the loaded rule set.

Each file is vendor-detected (or forced with --vendor), parsed, normalized,
and evaluated rule by rule. Per-file compliance scores are weighted by rule
severity and weight, and the run exits non-zero when failures are found.

Vendors:
	cisco, junos, nginx, apache, linux, firewall.
	Detection combines file extensions, filename hints, and content signatures.
	Use --vendor to skip detection when the file type is known.

Output:
	Console output is controlled by --console-format (default: text).
	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --report: write a Markdown compliance report
	- --no-console: suppress the console sink (use with --out/--report for machine output)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, document.started, rule.result, document.finished,
	run.finished). Rule results are represented as an Event with type "rule.result"
	and a nested "result" object.

Exit codes:
	0 = compliant run, no failures
	1 = rule failures detected
	2 = partial failure (some documents errored)
	3 = fatal error (evaluation did not run)

Examples:
	# Evaluate two files against all rules
	confaudit scan --files router.cfg,switch.cfg --rules-dir rules

	# Evaluate a directory, only PCI-DSS rules, high severity failures only
	confaudit scan --dir ./configs --standards PCI-DSS --where 'status == "FAIL" && severity == "high"'

	# AI Agent: stream machine-readable events to a file
	confaudit scan --dir ./configs --no-console --out results.ndjson
`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 && cmd.Flags().NFlag() == 0 {
			_ = cmd.Help()
			return
		}

		// Positional arguments are additional target files.
		cfg.Targeting.Files = append(cfg.Targeting.Files, args...)

		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Runtime.Timeout)
		defer cancel()
		os.Exit(engine.Run(ctx, cfg))
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	// Targeting
	scanCmd.Flags().StringSliceVar(&cfg.Targeting.Files, flags.FlagFiles, nil, "Configuration files to evaluate (repeatable; comma-separated accepted)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Dir, flags.FlagDir, "", "Directory to evaluate (supported files, non-recursive)")
	scanCmd.Flags().StringVar(&cfg.Targeting.Vendor, flags.FlagVendor, "", fmt.Sprintf("Force vendor instead of detecting: %s", strings.Join(detect.Vendors, "|")))
	scanCmd.Flags().IntVar(&cfg.Targeting.MaxFiles, flags.FlagMaxFiles, 0, "Maximum number of files to evaluate (0 = unlimited)")

	// Rules
	scanCmd.Flags().StringVar(&cfg.Rules.Dir, flags.FlagRulesDir, cfg.Rules.Dir, "Directory containing rule files (JSON or YAML)")
	scanCmd.Flags().StringSliceVar(&cfg.Rules.Standards, flags.FlagStandards, nil, "Restrict evaluation to these standards, e.g. CIS,PCI-DSS (repeatable; comma-separated accepted)")
	scanCmd.Flags().StringVar(&cfg.Rules.Where, flags.FlagWhere, "", "Filter reported results with a boolean expression over row fields, e.g. 'severity == \"high\"'")

	// Output
	scanCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	scanCmd.Flags().StringSliceVar(&cfg.Output.ConsoleFilterStatus, flags.FlagConsoleFilterStatus, nil, "Filter console output by status (PASS, FAIL, WARNING, ERROR, SKIPPED). Comma-separated.")
	scanCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	scanCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	scanCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	scanCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --out/--report)")

	// Runtime
	scanCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Concurrent document workers (default: 4)")
	scanCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Global timeout (default: 10m)")
	scanCmd.Flags().BoolVar(&cfg.Runtime.FailFast, flags.FlagFailFast, false, "Stop on first document error (default: false)")
}
