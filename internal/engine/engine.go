// Package engine orchestrates the evaluation pipeline: load documents,
// detect vendors, parse, normalize, evaluate rules, classify, score, and
// stream everything to the configured sinks.
package engine

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"confaudit/internal/config"
	"confaudit/internal/input"
	"confaudit/internal/output"
	"confaudit/internal/rules"
)

// Version is stamped by the CLI layer from build info and embedded in every
// document report.
var Version = "dev"

func exitCodeForRun(fatal, partial, failures bool) int {
	// Exit code contract:
	// 0 = compliant run, no failures
	// 1 = rule failures detected
	// 2 = partial run (some documents errored)
	// 3 = fatal error (nothing was evaluated)
	if fatal {
		return 3
	}
	if partial {
		return 2
	}
	if failures {
		return 1
	}
	return 0
}

func setupOutputManager(cfg *config.Config) (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat, cfg.Output.ConsoleFilterStatus)); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Report != "" {
		rs, err := output.NewReportSink(cfg.Output.Report)
		if err != nil {
			outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(rs); err != nil {
			outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// resolveFiles combines explicit files with a directory listing, sorted for a
// deterministic scan order.
func resolveFiles(cfg *config.Config) ([]string, error) {
	paths := append([]string{}, cfg.Targeting.Files...)

	if cfg.Targeting.Dir != "" {
		fromDir, err := input.CollectDir(cfg.Targeting.Dir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, fromDir...)
	}

	sort.Strings(paths)

	if max := cfg.Targeting.MaxFiles; max > 0 && len(paths) > max {
		paths = paths[:max]
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no configuration files to evaluate")
	}
	return paths, nil
}

type documentOutcome struct {
	path   string
	report *output.DocumentReport
	err    error
}

// Run executes a full scan per the config and returns the process exit code.
func Run(ctx context.Context, cfg *config.Config) int {
	verbose := func(format string, args ...any) {
		if cfg.Runtime.Verbose {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	repo, err := rules.LoadDir(cfg.Rules.Dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}
	for _, d := range repo.Diagnostics() {
		verbose("rules: %s", d)
	}
	if len(repo.All()) == 0 {
		fmt.Fprintf(os.Stderr, "Error: no valid rules loaded from %s\n", cfg.Rules.Dir)
		return 3
	}

	paths, err := resolveFiles(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	where, err := output.NewWhere(cfg.Rules.Where)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	outMgr, err := setupOutputManager(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 3
	}

	exitCode := run(ctx, cfg, repo, paths, where, outMgr, verbose)

	if err := outMgr.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing outputs: %v\n", err)
		if exitCode == 0 {
			exitCode = 2
		}
	}
	return exitCode
}

func run(ctx context.Context, cfg *config.Config, repo *rules.Repo, paths []string,
	where *output.Where, outMgr *output.Manager, verbose func(string, ...any)) int {

	_ = outMgr.Write(output.Event{Type: output.EventRunStarted, Time: time.Now().UTC(),
		Message: fmt.Sprintf("%d files, %d rules", len(paths), len(repo.All()))})

	outcomes := make([]documentOutcome, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Runtime.Concurrency)
	loader := &input.Loader{}

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = documentOutcome{path: path, err: err}
				return nil
			}
			report, err := evaluatePath(cfg, repo, loader, path, verbose)
			outcomes[i] = documentOutcome{path: path, report: report, err: err}
			if err != nil && cfg.Runtime.FailFast {
				return err
			}
			return nil
		})
	}
	waitErr := g.Wait()

	// Emit results in input order, regardless of worker completion order.
	var partial, failures bool
	evaluated := 0
	for _, oc := range outcomes {
		if oc.err != nil {
			partial = true
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", oc.path, oc.err)
			_ = outMgr.Write(output.Event{Type: output.EventDocumentFinished, Time: time.Now().UTC(),
				File: oc.path, Message: oc.err.Error()})
			continue
		}
		if oc.report == nil {
			// Cancelled before this document was picked up.
			partial = true
			continue
		}
		evaluated++

		r := oc.report
		_ = outMgr.Write(output.Event{Type: output.EventDocumentStarted, Time: time.Now().UTC(),
			File: r.File, Vendor: &r.Vendor})

		kept := make([]output.ResultRow, 0, len(r.Rows))
		for _, row := range r.Rows {
			matched, err := where.Match(row)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				matched = true
			}
			if !matched {
				continue
			}
			kept = append(kept, row)
			_ = outMgr.Write(row)
		}

		if r.Score.Failed > 0 || r.Score.Errored > 0 {
			failures = true
		}

		filtered := *r
		filtered.Rows = kept
		_ = outMgr.Write(filtered)
		_ = outMgr.Write(output.Event{Type: output.EventDocumentFinished, Time: time.Now().UTC(),
			File: r.File, Score: &r.Score})
	}

	fatal := evaluated == 0
	if waitErr != nil && !partial {
		partial = true
	}

	code := exitCodeForRun(fatal, partial, failures)
	_ = outMgr.Write(output.Event{Type: output.EventRunFinished, Time: time.Now().UTC(), ExitCode: code})
	return code
}

func evaluatePath(cfg *config.Config, repo *rules.Repo, loader *input.Loader,
	path string, verbose func(string, ...any)) (*output.DocumentReport, error) {

	doc, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return EvaluateDocument(doc, repo, cfg.Rules.Standards, cfg.Targeting.Vendor,
		func(msg string) { verbose("%s: %s", path, msg) })
}
