package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ror-cli/internal/model"
	"github.com/sells-group/ror-cli/internal/tabular"
)

// Augment runs stage A. Every input row is written to the intermediate file,
// truncated to the configured column count and extended with the proposed
// name and identifier. Only rows without a curated identifier that carry an
// organization name are looked up.
func (p *Pipeline) Augment(ctx context.Context, inputPath string) (*Result, error) {
	res := &Result{InputPath: inputPath, OutputPath: p.IntermediatePath(inputPath)}
	err := p.track(ctx, model.StageAugment, res, func() error {
		return p.augment(ctx, res)
	})
	return res, err
}

func (p *Pipeline) augment(ctx context.Context, res *Result) error {
	same, err := samePath(res.InputPath, res.OutputPath)
	if err != nil {
		return eris.Wrap(err, "pipeline: resolve paths")
	}
	if same {
		return eris.Wrapf(ErrInputIsOutput, "pipeline: %s", res.InputPath)
	}

	in, err := tabular.Open(ctx, res.InputPath)
	if err != nil {
		return eris.Wrap(err, "pipeline: open input")
	}
	defer in.Close() //nolint:errcheck

	header := in.Header().Truncate(p.cfg.MaxColumns)
	width := header.Len()

	out, err := tabular.CreateRowWriter(res.OutputPath, header.Append(model.ProposedColumns...).Names())
	if err != nil {
		return eris.Wrap(err, "pipeline: create intermediate")
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

		resolution := p.lookup(ctx, row, &res.Stats)
		if err := out.Write(append(row.Project(width), resolution.Columns()...)); err != nil {
			_ = out.Close()
			return eris.Wrap(err, "pipeline: write intermediate")
		}
		res.Stats.RecordsWritten++
	}

	if err := in.Err(); err != nil {
		_ = out.Close()
		return eris.Wrap(err, "pipeline: read input")
	}
	return eris.Wrap(out.Close(), "pipeline: close intermediate")
}

// lookup resolves a row's organization name when it needs one.
func (p *Pipeline) lookup(ctx context.Context, row model.Row, stats *model.RunStats) model.Resolution {
	name, ok := p.policy.NeedsLookup(row)
	if !ok {
		stats.Skipped++
		p.log.Debug("pipeline: no lookup needed", zap.Int("row", stats.RowsRead))
		return model.Resolution{}
	}

	stats.Lookups++
	resolution := p.resolver.Resolve(ctx, name)
	if !resolution.IsEmpty() {
		stats.Matched++
	}
	return resolution
}

// samePath reports whether a and b name the same file, comparing absolute
// paths and, when both exist, file identity.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
