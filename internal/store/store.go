// Package store persists pipeline run history.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ror-cli/internal/config"
	"github.com/sells-group/ror-cli/internal/model"
)

// ErrDisabled is returned by Open when no database is configured.
var ErrDisabled = eris.New("store: run history disabled")

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: run not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Stage  model.Stage     `json:"stage,omitempty"`
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store records one row per stage execution.
type Store interface {
	StartRun(ctx context.Context, stage model.Stage, inputPath, outputPath string) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, stats model.RunStats) error
	FailRun(ctx context.Context, runID string, stats model.RunStats, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

// Open returns the Store selected by cfg and applies migrations. It returns
// ErrDisabled when cfg.DatabaseURL is empty.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, ErrDisabled
	}

	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, nil)
	case "", "sqlite":
		st, err = NewSQLite(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func listLimit(filter RunFilter) int {
	if filter.Limit > 0 {
		return filter.Limit
	}
	return defaultListLimit
}
