package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/specbench/internal/store"
)

// commandContext returns the command's context, or Background when the
// command is executed without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// openStore opens the database named by --db, or a fresh one in a temporary
// directory. The returned close function also removes that directory.
func openStore(path string, logger *slog.Logger) (*store.Store, func(), error) {
	var tmpDir string
	if path == "" {
		dir, err := os.MkdirTemp("", "specbench-*")
		if err != nil {
			return nil, nil, fmt.Errorf("create temp dir: %w", err)
		}
		tmpDir = dir
		path = filepath.Join(dir, "specbench.db")
	}

	logger.Debug("opening database", "path", path, "temporary", tmpDir != "")
	st, err := store.Open(path, store.WithLogger(logger))
	if err != nil {
		if tmpDir != "" {
			_ = os.RemoveAll(tmpDir)
		}
		return nil, nil, err
	}

	closeFn := func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
		if tmpDir != "" {
			if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
				logger.Warn("error removing temp database", "dir", tmpDir, "error", rmErr)
			}
		}
	}
	return st, closeFn, nil
}
