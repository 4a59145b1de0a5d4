package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"confaudit/internal/flags"
	"confaudit/internal/rules"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rulesListQuiet bool
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage and list rules",
	Long: `Inspect the compliance rule set.

This command group helps you discover which rules exist, what each rule
checks, and how the rule set breaks down per vendor and standard. Rules are
evaluated during scans (see "confaudit scan --help").

Examples:
  # List all rules in a rules directory
  confaudit rules list --rules-dir rules
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loaded rules",
	Long: `List all rules loaded from the rules directory.

Rules are sorted by rule ID. Files that fail validation are skipped with a
diagnostic on stderr when --verbose is set.

Examples:
  confaudit rules list --rules-dir rules
  confaudit rules list --rules-dir rules --quiet
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := rules.LoadDir(cfg.Rules.Dir)
		if err != nil {
			return err
		}
		if cfg.Runtime.Verbose {
			for _, d := range repo.Diagnostics() {
				fmt.Fprintf(os.Stderr, "rules: %s\n", d)
			}
		}

		all := repo.All()
		sort.Slice(all, func(i, j int) bool { return all[i].RuleID < all[j].RuleID })

		for _, r := range all {
			if rulesListQuiet {
				fmt.Fprintln(cmd.OutOrStdout(), r.RuleID)
			} else {
				printRule(cmd.OutOrStdout(), r)
			}
		}

		if !rulesListQuiet {
			printStats(cmd.OutOrStdout(), repo)
		}
		return nil
	},
}

var rulesShowCmd = &cobra.Command{
	Use:   "show [rule-id]",
	Short: "Show details of a specific rule",
	Long: `Show details of a specific rule by its ID.

Examples:
  confaudit rules show cis-cisco-001
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := rules.LoadDir(cfg.Rules.Dir)
		if err != nil {
			return err
		}
		rule := repo.ByID(args[0])
		if rule == nil {
			return fmt.Errorf("rule not found: %s", args[0])
		}
		printRule(cmd.OutOrStdout(), rule)
		return nil
	},
}

func printRule(w io.Writer, r *rules.Rule) {
	bold := color.New(color.Bold)
	fmt.Fprintln(w, "----------------------------------------")
	bold.Fprintf(w, "RULE: %s\n", r.RuleID)
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, r.Title)
	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}
	fmt.Fprintf(w, "  Standard: %s", r.Standard)
	if r.ControlID != "" {
		fmt.Fprintf(w, " / %s", r.ControlID)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Vendor:   %s\n", r.Vendor)
	fmt.Fprintf(w, "  Severity: %s (weight %d)\n", r.Severity, r.Weight)
	if r.RemediationText != "" {
		fmt.Fprintf(w, "  Remediation: %s\n", r.RemediationText)
	}
	fmt.Fprintln(w)
}

func printStats(w io.Writer, repo *rules.Repo) {
	stats := repo.Stats()
	bold := color.New(color.Bold)
	bold.Fprintf(w, "%d rules", stats.TotalRules)
	fmt.Fprintf(w, " (vendors: %s; standards: %s; cross-standard mappings: %d)\n",
		strings.Join(repo.Vendors(), ", "), strings.Join(repo.Standards(), ", "), stats.CrossMappings)
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.PersistentFlags().StringVar(&cfg.Rules.Dir, flags.FlagRulesDir, cfg.Rules.Dir, "Directory containing rule files (JSON or YAML)")
	rulesCmd.AddCommand(rulesListCmd)
	rulesListCmd.Flags().BoolVarP(&rulesListQuiet, "quiet", "q", false, "Only print rule IDs")
	rulesCmd.AddCommand(rulesShowCmd)
}
