// Package pipeline drives the augment and minimize stages over tabular files.
package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ror-cli/internal/config"
	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/internal/reconcile"
	"github.com/sells-group/ror-cli/internal/store"
)

// ErrInputIsOutput is returned when a stage would overwrite the file it reads.
var ErrInputIsOutput = eris.New("pipeline: input file is the output file")

// Resolver resolves an organization name to a registry identifier.
type Resolver interface {
	Resolve(ctx context.Context, orgName string) model.Resolution
}

// Result describes a finished stage.
type Result struct {
	RunID      string         `json:"run_id,omitempty"`
	InputPath  string         `json:"input_path"`
	OutputPath string         `json:"output_path"`
	Stats      model.RunStats `json:"stats"`
}

// Pipeline runs the two stages row by row, in input order.
type Pipeline struct {
	cfg      config.PipelineConfig
	policy   *reconcile.Policy
	resolver Resolver
	store    store.Store
	log      *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore records each stage in st.
func WithStore(st store.Store) Option {
	return func(p *Pipeline) {
		p.store = st
	}
}

// WithLogger sets the logger (default zap.L()).
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// New creates a Pipeline. A nil policy uses reconcile.New(nil).
func New(cfg config.PipelineConfig, policy *reconcile.Policy, res Resolver, opts ...Option) *Pipeline {
	if policy == nil {
		policy = reconcile.New(nil)
	}
	p := &Pipeline{
		cfg:      cfg,
		policy:   policy,
		resolver: res,
		log:      zap.L(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IntermediatePath is where Augment writes for a given input file: the
// configured intermediate file name, next to the input.
func (p *Pipeline) IntermediatePath(inputPath string) string {
	return filepath.Join(filepath.Dir(inputPath), p.cfg.IntermediateFile)
}

// MinimizeInputPath is the file Minimize reads.
func (p *Pipeline) MinimizeInputPath() string {
	return filepath.Join(p.cfg.WorkDir, p.cfg.IntermediateFile)
}

// MinimalPath is the file Minimize writes.
func (p *Pipeline) MinimalPath() string {
	return filepath.Join(p.cfg.WorkDir, p.cfg.MinimalFile)
}

// track wraps a stage with run-history bookkeeping. Store failures are
// logged and never fail the stage.
func (p *Pipeline) track(ctx context.Context, stage model.Stage, res *Result, fn func() error) error {
	log := p.log.With(zap.String("stage", string(stage)), zap.String("input", res.InputPath))
	start := time.Now()

	if p.store != nil {
		run, err := p.store.StartRun(ctx, stage, res.InputPath, res.OutputPath)
		if err != nil {
			log.Warn("pipeline: failed to record run start", zap.Error(err))
		} else {
			res.RunID = run.ID
		}
	}

	fnErr := fn()

	if p.store != nil && res.RunID != "" {
		// Bookkeeping must survive a cancelled stage context.
		bg := context.WithoutCancel(ctx)
		var err error
		if fnErr != nil {
			err = p.store.FailRun(bg, res.RunID, res.Stats, fnErr.Error())
		} else {
			err = p.store.CompleteRun(bg, res.RunID, res.Stats)
		}
		if err != nil {
			log.Warn("pipeline: failed to record run result", zap.String("run_id", res.RunID), zap.Error(err))
		}
	}

	fields := []zap.Field{
		zap.String("output", res.OutputPath),
		zap.Int("rows_read", res.Stats.RowsRead),
		zap.Int("lookups", res.Stats.Lookups),
		zap.Int("matched", res.Stats.Matched),
		zap.Int("records_written", res.Stats.RecordsWritten),
		zap.Int("skipped", res.Stats.Skipped),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	}
	if fnErr != nil {
		log.Error("pipeline: stage failed", append(fields, zap.Error(fnErr))...)
		return fnErr
	}
	log.Info("pipeline: stage complete", fields...)
	return nil
}

func checkContext(ctx context.Context, rowsRead int) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrapf(err, "pipeline: stopped after %d rows", rowsRead)
	}
	return nil
}
