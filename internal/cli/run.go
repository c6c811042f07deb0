package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/specbench/internal/bench"
	"github.com/roach88/specbench/internal/catalog"
)

// RunResult is the output of the run command.
type RunResult struct {
	Fixture string        `json:"fixture"` // fixture fingerprint
	Report  *bench.Report `json:"report"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <catalog>",
		Short: "Run every catalog filter in memory and in SQL",
		Long: `Seed a SQLite store with a fixture, then evaluate every filter of the
catalog twice: against the loaded entities in memory, and as SQL against the
store. Exits with code 1 if any filter selects different rows on the two paths.

The fixture comes from --fixture, or is generated with --generate/--seed.

Example:
  specbench run ./filters.cue --fixture ./fixture.yaml
  specbench run ./catalog --generate 10000 --seed 7 --metrics-out run.prom`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(cmd); err != nil {
				return err
			}
			return runBench(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().String("fixture", "", "path to YAML fixture")
	cmd.Flags().Int("generate", 0, "generate N orders instead of reading a fixture")
	cmd.Flags().Uint64("seed", 1, "seed for --generate")
	cmd.Flags().Int("workers", 0, "in-memory evaluation shards (default: GOMAXPROCS)")
	cmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")
	cmd.MarkFlagsMutuallyExclusive("fixture", "generate")

	return cmd
}

func runBench(opts *RootOptions, catalogPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.RunID = uuid.NewString()
	logger := opts.Logger().With("run_id", formatter.RunID)
	ctx := commandContext(cmd)

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), issuesFrom(err))
	}
	logger.Info("catalog loaded", "path", catalogPath, "filters", len(cat.Definitions))

	fixture, err := loadOrGenerate(opts, cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, loadErrorCode(err), err.Error(), nil)
	}
	fp, err := fixture.Fingerprint()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), nil)
	}

	st, closeStore, err := openStore(opts.DB, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer closeStore()

	seedStart := time.Now()
	if err := bench.Seed(ctx, st, fixture); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	logger.Info("store seeded",
		"fixture", fp,
		"orders", len(fixture.Orders),
		"animals", len(fixture.Animals),
		"elapsed", time.Since(seedStart))

	reg := prometheus.NewRegistry()
	runner := bench.NewRunner(st, logger, bench.NewMetrics(reg))
	runner.Workers = opts.intFlag(cmd, "workers")

	report, err := runner.Run(ctx, cat)
	if err != nil {
		if catalog.IsDefinitionError(err, "") {
			return outputValidationErrors(formatter, issuesFrom(err))
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if out := opts.stringFlag(cmd, "metrics-out"); out != "" {
		if err := prometheus.WriteToTextfile(out, reg); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		logger.Debug("metrics written", "path", out)
	}

	if !report.OK() {
		_ = formatter.Render(RunResult{Fixture: fp, Report: report}, func(w io.Writer) {
			writeReportText(w, report)
		})
		return NewExitError(ExitFailure,
			fmt.Sprintf("%s: %d filter(s) disagree between memory and SQL", ErrCodeMismatch, report.Mismatches))
	}

	return formatter.Render(RunResult{Fixture: fp, Report: report}, func(w io.Writer) {
		writeReportText(w, report)
	})
}

// loadOrGenerate reads --fixture, or generates --generate orders from --seed.
func loadOrGenerate(opts *RootOptions, cmd *cobra.Command) (*bench.Fixture, error) {
	if n := opts.intFlag(cmd, "generate"); n > 0 {
		return bench.Generate(n, opts.uint64Flag(cmd, "seed")), nil
	}
	path := opts.stringFlag(cmd, "fixture")
	if path == "" {
		return nil, fmt.Errorf("one of --fixture or --generate is required")
	}
	return bench.LoadFixture(path)
}

func writeReportText(w io.Writer, report *bench.Report) {
	for _, res := range report.Results {
		mark := "✓"
		if !res.Match {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %-24s %-7s matched=%-6d memory=%-12s sql=%s\n",
			mark, res.Name, res.Entity, res.Matched, res.MemoryTime, res.SQLTime)
		if !res.Match {
			fmt.Fprintf(w, "    only in memory: %v\n    only in sql:    %v\n", res.OnlyMemory, res.OnlySQL)
		}
	}
	fmt.Fprintf(w, "\n%d filter(s), %d mismatch(es)\n", len(report.Results), report.Mismatches)
}
