package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/ror-cli/internal/config"
	"github.com/sells-group/ror-cli/internal/normalize"
	"github.com/sells-group/ror-cli/internal/pipeline"
	"github.com/sells-group/ror-cli/internal/reconcile"
	"github.com/sells-group/ror-cli/internal/resolver"
	"github.com/sells-group/ror-cli/internal/store"
	"github.com/sells-group/ror-cli/pkg/ror"
)

// pipelineEnv holds everything a command needs to run a stage.
type pipelineEnv struct {
	Pipeline *pipeline.Pipeline
	Resolver *resolver.Resolver
	Policy   *reconcile.Policy
	Store    store.Store // nil when run history is disabled
}

// Close releases the store, if any.
func (e *pipelineEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	return buildEnv(ctx, cfg, newRORClient(cfg.ROR))
}

func newRORClient(c config.RORConfig) ror.Client {
	return ror.NewClient(
		ror.WithBaseURL(c.BaseURL),
		ror.WithUserAgent(c.UserAgent),
		ror.WithTimeout(time.Duration(c.TimeoutSecs)*time.Second),
	)
}

// buildEnv wires the resolver, reconcile policy, optional run store and
// pipeline from c.
func buildEnv(ctx context.Context, c *config.Config, client ror.Client) (*pipelineEnv, error) {
	pacer := resolver.NewIntervalPacer(time.Duration(c.ROR.MinIntervalMs) * time.Millisecond)
	zap.L().Debug("resolver pacing", zap.Duration("interval", pacer.Interval()))
	res := resolver.New(client, resolver.WithPacer(pacer))
	policy := reconcile.New(normalize.New(c.Pipeline.Sentinels, c.Pipeline.IDSentinels))

	st, err := initStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}

	var opts []pipeline.Option
	if st != nil {
		opts = append(opts, pipeline.WithStore(st))
	}

	return &pipelineEnv{
		Pipeline: pipeline.New(c.Pipeline, policy, res, opts...),
		Resolver: res,
		Policy:   policy,
		Store:    st,
	}, nil
}

// initStore opens the run store. A disabled store yields nil, nil.
func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	st, err := store.Open(ctx, sc)
	if errors.Is(err, store.ErrDisabled) {
		zap.L().Debug("run history disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}
