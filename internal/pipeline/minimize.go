package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/internal/tabular"
)

// Minimize runs stage B over the augmented file in the work directory and
// writes one minimal record per eligible row.
func (p *Pipeline) Minimize(ctx context.Context) (*Result, error) {
	return p.MinimizeFile(ctx, p.MinimizeInputPath())
}

// MinimizeFile runs stage B over inputPath, writing to MinimalPath.
func (p *Pipeline) MinimizeFile(ctx context.Context, inputPath string) (*Result, error) {
	res := &Result{InputPath: inputPath, OutputPath: p.MinimalPath()}
	err := p.track(ctx, model.StageMinimize, res, func() error {
		return p.minimize(ctx, res)
	})
	return res, err
}

func (p *Pipeline) minimize(ctx context.Context, res *Result) error {
	in, err := tabular.Open(ctx, res.InputPath)
	if err != nil {
		return eris.Wrap(err, "pipeline: open augmented input")
	}
	defer in.Close() //nolint:errcheck

	out, err := tabular.CreateRecordWriter(res.OutputPath)
	if err != nil {
		return eris.Wrap(err, "pipeline: create minimal output")
	}

	for {
		if err := checkContext(ctx, res.Stats.RowsRead); err != nil {
			_ = out.Close()
			return err
		}
		row, ok := in.Next()
		if !ok {
			break
		}
		res.Stats.RowsRead++

		rec, ok := p.policy.Reconcile(row, nil)
		if !ok {
			res.Stats.Skipped++
			p.log.Debug("pipeline: row has no identifier", zap.Int("row", res.Stats.RowsRead))
			continue
		}
		countMethod(&res.Stats, rec.ExtractionMethod)

		if err := out.Write(rec); err != nil {
			_ = out.Close()
			return eris.Wrap(err, "pipeline: write minimal output")
		}
		res.Stats.RecordsWritten++
	}

	if err := in.Err(); err != nil {
		_ = out.Close()
		return eris.Wrap(err, "pipeline: read augmented input")
	}
	return eris.Wrap(out.Close(), "pipeline: close minimal output")
}

// Run augments inputPath and minimizes the intermediate file it produced.
func (p *Pipeline) Run(ctx context.Context, inputPath string) (augmented, minimal *Result, err error) {
	augmented, err = p.Augment(ctx, inputPath)
	if err != nil {
		return augmented, nil, err
	}
	minimal, err = p.MinimizeFile(ctx, augmented.OutputPath)
	return augmented, minimal, err
}

// ReconcileRow resolves a single row in memory, looking it up first when
// lookup is set and the row needs it.
func (p *Pipeline) ReconcileRow(ctx context.Context, row model.Row, lookup bool) (model.SoftwareOrgRecord, bool) {
	var resolution *model.Resolution
	if lookup {
		if name, ok := p.policy.NeedsLookup(row); ok {
			r := p.resolver.Resolve(ctx, name)
			resolution = &r
		}
	}
	return p.policy.Reconcile(row, resolution)
}

func countMethod(stats *model.RunStats, m model.ExtractionMethod) {
	switch m {
	case model.MethodHumanCurated:
		stats.HumanCurated++
	case model.MethodByName:
		stats.ByName++
	}
}
