package bench

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/specbench/internal/model"
	"github.com/roach88/specbench/internal/store"
)

// CRUDResult holds the timings of one blog CRUD cycle.
type CRUDResult struct {
	Rows   int           `json:"rows"`
	Insert time.Duration `json:"insert_ns"`
	Select time.Duration `json:"select_ns"`
	Update time.Duration `json:"update_ns"`
	Delete time.Duration `json:"delete_ns"`
}

// Total is the sum of all phases.
func (r CRUDResult) Total() time.Duration {
	return r.Insert + r.Select + r.Update + r.Delete
}

// CRUD empties the blog table, then times inserting n blogs, selecting them,
// updating every rating and deleting them by id. m may be nil.
func CRUD(ctx context.Context, s *store.Store, n int, m *Metrics) (*CRUDResult, error) {
	if n < 1 {
		return nil, fmt.Errorf("crud: row count must be positive, got %d", n)
	}
	if err := s.TruncateBlogs(ctx); err != nil {
		return nil, fmt.Errorf("crud: %w", err)
	}

	blogs := make([]model.Blog, n)
	for i := range blogs {
		blogs[i] = model.Blog{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("blog-%d", i),
			URL:    fmt.Sprintf("https://blog-%d.example.com", i),
			Rating: int64(i % 5),
		}
	}

	res := &CRUDResult{Rows: n}
	var err error

	res.Insert, err = timed(func() error { return s.InsertBlogs(ctx, blogs) })
	if err != nil {
		return nil, fmt.Errorf("crud: %w", err)
	}

	var selected []model.Blog
	res.Select, err = timed(func() error {
		var err error
		selected, err = s.SelectBlogs(ctx, 0)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("crud: %w", err)
	}
	if len(selected) != n {
		return nil, fmt.Errorf("crud: selected %d blogs, want %d", len(selected), n)
	}

	for i := range selected {
		selected[i].Rating++
	}
	res.Update, err = timed(func() error {
		changed, err := s.UpdateBlogRatings(ctx, selected)
		if err == nil && changed != int64(n) {
			err = fmt.Errorf("updated %d blogs, want %d", changed, n)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("crud: %w", err)
	}

	ids := make([]string, n)
	for i, b := range selected {
		ids[i] = b.ID
	}
	res.Delete, err = timed(func() error {
		deleted, err := s.DeleteBlogs(ctx, ids)
		if err == nil && deleted != int64(n) {
			err = fmt.Errorf("deleted %d blogs, want %d", deleted, n)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("crud: %w", err)
	}

	if m != nil {
		m.CRUDDuration.WithLabelValues("insert").Observe(res.Insert.Seconds())
		m.CRUDDuration.WithLabelValues("select").Observe(res.Select.Seconds())
		m.CRUDDuration.WithLabelValues("update").Observe(res.Update.Seconds())
		m.CRUDDuration.WithLabelValues("delete").Observe(res.Delete.Seconds())
	}
	return res, nil
}

func timed(fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	return time.Since(start), err
}
