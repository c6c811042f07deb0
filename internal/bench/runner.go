package bench

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/specbench/internal/catalog"
	"github.com/roach88/specbench/internal/model"
	"github.com/roach88/specbench/internal/queryir"
	"github.com/roach88/specbench/internal/spec"
	"github.com/roach88/specbench/internal/store"
)

// Runner evaluates catalog filters on both paths against one store.
type Runner struct {
	Store   *store.Store
	Logger  *slog.Logger
	Metrics *Metrics

	// Workers bounds in-memory shards. Zero means GOMAXPROCS.
	Workers int
}

// NewRunner creates a runner. A nil logger discards output; nil metrics
// creates an unregistered set.
func NewRunner(s *store.Store, logger *slog.Logger, metrics *Metrics) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Runner{Store: s, Logger: logger, Metrics: metrics}
}

// Result is the outcome of one filter.
type Result struct {
	Name        string        `json:"name"`
	Entity      string        `json:"entity"`
	Fingerprint string        `json:"fingerprint"`
	Matched     int           `json:"matched"`
	Match       bool          `json:"match"`
	MemoryTime  time.Duration `json:"memory_ns"`
	SQLTime     time.Duration `json:"sql_ns"`
	OnlyMemory  []string      `json:"only_memory,omitempty"` // ids matched in memory but not by SQL
	OnlySQL     []string      `json:"only_sql,omitempty"`    // ids matched by SQL but not in memory

	// IDs are the keys SQL matched, in key order. Not serialized; a large
	// run would dwarf the rest of the report.
	IDs []string `json:"-"`
}

// Report collects the results of one run, sorted by filter name.
type Report struct {
	Results    []Result `json:"results"`
	Mismatches int      `json:"mismatches"`
}

// OK reports whether every filter agreed on both paths.
func (r *Report) OK() bool { return r.Mismatches == 0 }

// Run binds every definition in cat, loads the entities once and evaluates
// each filter in memory and through SQL.
func (r *Runner) Run(ctx context.Context, cat *catalog.Catalog) (*Report, error) {
	if err := catalog.Validate(cat); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	orderFilters, err := catalog.Bind(cat, catalog.OrderEntity())
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	animalFilters, err := catalog.Bind(cat, catalog.AnimalEntity())
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	report := &Report{}
	if len(orderFilters) > 0 {
		orders, err := r.Store.LoadOrders(ctx)
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		r.Logger.Debug("loaded entities", "entity", catalog.EntityOrder, "count", len(orders))
		for _, b := range orderFilters {
			res, err := runFilter(ctx, r, catalog.EntityOrder, b, orders, func(o model.Order) string { return o.ID })
			if err != nil {
				return nil, err
			}
			report.add(res)
		}
	}
	if len(animalFilters) > 0 {
		animals, err := r.Store.LoadAnimals(ctx)
		if err != nil {
			return nil, fmt.Errorf("run: %w", err)
		}
		r.Logger.Debug("loaded entities", "entity", catalog.EntityAnimal, "count", len(animals))
		for _, b := range animalFilters {
			res, err := runFilter(ctx, r, catalog.EntityAnimal, b, animals, model.Animal.AnimalID)
			if err != nil {
				return nil, err
			}
			report.add(res)
		}
	}

	slices.SortFunc(report.Results, func(a, b Result) int { return cmp.Compare(a.Name, b.Name) })
	return report, nil
}

func (rep *Report) add(res Result) {
	rep.Results = append(rep.Results, res)
	if !res.Match {
		rep.Mismatches++
	}
}

func runFilter[T any](ctx context.Context, r *Runner, entity string, b catalog.Bound[T], items []T, id func(T) string) (Result, error) {
	fp, err := queryir.Fingerprint(b.Spec.Describe())
	if err != nil {
		return Result{}, fmt.Errorf("filter %s: %w", b.Name, err)
	}

	start := time.Now()
	memIDs, err := EvalSharded(ctx, b.Spec, items, id, r.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("filter %s: in-memory: %w", b.Name, err)
	}
	memTime := time.Since(start)

	start = time.Now()
	sqlIDs, err := r.Store.FindIDs(ctx, spec.ApplyQuery(store.From(b.Table), b.Spec))
	if err != nil {
		return Result{}, fmt.Errorf("filter %s: sql: %w", b.Name, err)
	}
	sqlTime := time.Since(start)

	res := Result{
		Name:        b.Name,
		Entity:      entity,
		Fingerprint: fp,
		Matched:     len(sqlIDs),
		Match:       slices.Equal(memIDs, sqlIDs),
		MemoryTime:  memTime,
		SQLTime:     sqlTime,
		IDs:         sqlIDs,
	}
	if !res.Match {
		res.OnlyMemory = difference(memIDs, sqlIDs)
		res.OnlySQL = difference(sqlIDs, memIDs)
	}

	r.Metrics.EvalDuration.WithLabelValues(b.Name, PathMemory).Observe(memTime.Seconds())
	r.Metrics.EvalDuration.WithLabelValues(b.Name, PathSQL).Observe(sqlTime.Seconds())
	r.Metrics.Matched.WithLabelValues(b.Name).Set(float64(len(sqlIDs)))

	if res.Match {
		r.Logger.Info("filter evaluated",
			"filter", b.Name,
			"matched", res.Matched,
			"memory", memTime,
			"sql", sqlTime)
	} else {
		r.Metrics.Mismatches.WithLabelValues(b.Name).Inc()
		r.Logger.Warn("filter paths disagree",
			"filter", b.Name,
			"memory_matched", len(memIDs),
			"sql_matched", len(sqlIDs),
			"only_memory", res.OnlyMemory,
			"only_sql", res.OnlySQL)
	}
	return res, nil
}

// EvalSharded evaluates s over items in parallel and returns the ids of the
// matches in item order.
//
// items is split into contiguous shards, one goroutine each, bounded by
// workers (GOMAXPROCS when zero). Every shard calls the same compiled
// predicate. Cancelling ctx stops the evaluation.
func EvalSharded[T any](ctx context.Context, s spec.Spec[T], items []T, id func(T) string, workers int) ([]string, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	pred := s.Compile()
	if len(items) == 0 {
		return []string{}, nil
	}

	shardSize := (len(items) + workers - 1) / workers
	shards := make([][]string, (len(items)+shardSize-1)/shardSize)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range shards {
		lo := i * shardSize
		hi := min(lo+shardSize, len(items))
		g.Go(func() error {
			var out []string
			for j, e := range items[lo:hi] {
				if j%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if pred(e) {
					out = append(out, id(e))
				}
			}
			shards[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := []string{}
	for _, shard := range shards {
		ids = append(ids, shard...)
	}
	return ids, nil
}

// difference returns the elements of a not present in b, in a's order.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, s := range b {
		seen[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := seen[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
