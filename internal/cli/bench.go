package cli

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/specbench/internal/bench"
)

// BenchResult is the output of the bench command, one entry per round.
type BenchResult struct {
	Rounds []*bench.CRUDResult `json:"rounds"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time blog insert, select, update and delete",
		Long: `Insert --rows blogs, read them back, bump every rating and delete them
by id, timing each phase. Repeat with --rounds to see warm-cache numbers.

Example:
  specbench bench --rows 10000
  specbench bench --rows 500 --rounds 3 --db ./bench.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootOpts.resolve(cmd); err != nil {
				return err
			}
			return runCRUD(rootOpts, cmd)
		},
	}

	cmd.Flags().Int("rows", 1000, "blogs per round")
	cmd.Flags().Int("rounds", 1, "number of CRUD cycles")
	cmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")

	return cmd
}

func runCRUD(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	formatter.RunID = uuid.NewString()
	logger := opts.Logger().With("run_id", formatter.RunID)
	ctx := commandContext(cmd)

	rows := opts.intFlag(cmd, "rows")
	rounds := opts.intFlag(cmd, "rounds")
	if rows < 1 || rounds < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeConfig,
			fmt.Sprintf("--rows and --rounds must be positive (got %d, %d)", rows, rounds), nil)
	}

	st, closeStore, err := openStore(opts.DB, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	metrics := bench.NewMetrics(reg)

	result := BenchResult{}
	for i := range rounds {
		res, err := bench.CRUD(ctx, st, rows, metrics)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
		}
		logger.Info("crud round",
			"round", i+1,
			"rows", res.Rows,
			"insert", res.Insert,
			"select", res.Select,
			"update", res.Update,
			"delete", res.Delete)
		result.Rounds = append(result.Rounds, res)
	}

	if out := opts.stringFlag(cmd, "metrics-out"); out != "" {
		if err := prometheus.WriteToTextfile(out, reg); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
	}

	return formatter.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "%-6s %-8s %-12s %-12s %-12s %-12s %s\n",
			"round", "rows", "insert", "select", "update", "delete", "total")
		for i, r := range result.Rounds {
			fmt.Fprintf(w, "%-6d %-8d %-12s %-12s %-12s %-12s %s\n",
				i+1, r.Rows, r.Insert, r.Select, r.Update, r.Delete, r.Total())
		}
	})
}
