package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/specbench/internal/bench"
	"github.com/roach88/specbench/internal/catalog"
	"github.com/roach88/specbench/internal/store"
)

// Harness is the test execution engine.
// It runs one scenario against an isolated store.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Logs are discarded; use RunContext to keep them.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, nil)
}

// RunContext is Run with a caller-supplied context and logger.
// A nil logger discards output.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Load the catalog and the fixture (or generate one)
// 3. Seed the store
// 4. Run every filter on both paths
// 5. Evaluate assertions and return the result
//
// Errors are returned for problems with the scenario's inputs; failed
// assertions are reported in the Result.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// Create fresh in-memory SQLite database
	st, err := store.Open(store.MemoryPath, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		logger: logger.With("scenario", scenario.Name),
	}
	return h.run(ctx, scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cat, err := catalog.Load(scenario.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	fixture, err := scenarioFixture(scenario)
	if err != nil {
		return nil, err
	}
	if err := bench.Seed(ctx, h.store, fixture); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}
	h.logger.Debug("store seeded", "orders", len(fixture.Orders), "animals", len(fixture.Animals))

	report, err := bench.NewRunner(h.store, h.logger, nil).Run(ctx, cat)
	if err != nil {
		return nil, fmt.Errorf("failed to run filters: %w", err)
	}

	result := NewResult()
	result.Filters = append(result.Filters, report.Results...)

	// Evaluate assertions against the result
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario finished", "pass", result.Pass, "failures", len(result.Errors))
	return result, nil
}

func scenarioFixture(s *Scenario) (*bench.Fixture, error) {
	if s.Generate != nil {
		return bench.Generate(s.Generate.Orders, s.Generate.Seed), nil
	}
	f, err := bench.LoadFixture(s.Fixture)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	return f, nil
}
