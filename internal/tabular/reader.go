package tabular

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/ror-cli/internal/model"
)

// Reader yields header-bound rows from a CSV or XLSX file.
type Reader struct {
	header *model.Header
	rows   <-chan []string
	errs   <-chan error
	cancel context.CancelFunc
	file   *os.File
	err    error
}

// Open starts streaming the file at path and reads its header row. Files
// ending in .xlsx are read from the first sheet; anything else is parsed as
// CSV.
func Open(ctx context.Context, path string) (*Reader, error) {
	ctx, cancel := context.WithCancel(ctx)
	r := &Reader{cancel: cancel}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if _, err := os.Stat(path); err != nil {
			cancel()
			return nil, eris.Wrapf(err, "tabular: open %s", path)
		}
		r.rows, r.errs = StreamXLSX(ctx, path, XLSXOptions{})
	} else {
		f, err := os.Open(path)
		if err != nil {
			cancel()
			return nil, eris.Wrapf(err, "tabular: open %s", path)
		}
		r.file = f
		r.rows, r.errs = StreamCSV(ctx, f, CSVOptions{LazyQuotes: true})
	}

	header, ok := <-r.rows
	if !ok {
		err := <-r.errs
		_ = r.Close()
		if err != nil {
			return nil, eris.Wrapf(err, "tabular: read header of %s", path)
		}
		return nil, eris.Errorf("tabular: %s has no header row", path)
	}
	r.header = model.NewHeader(header)
	return r, nil
}

// Header returns the file's header.
func (r *Reader) Header() *model.Header { return r.header }

// Next returns the next row. It returns false once the file is exhausted or
// a read error occurred; check Err afterwards.
func (r *Reader) Next() (model.Row, bool) {
	values, ok := <-r.rows
	if !ok {
		if err, hasErr := <-r.errs; hasErr && err != nil && r.err == nil {
			r.err = err
		}
		return model.Row{}, false
	}
	return model.NewRow(r.header, values), true
}

// Err returns the first read error, if any.
func (r *Reader) Err() error { return r.err }

// Close stops the stream and releases the file.
func (r *Reader) Close() error {
	r.cancel()
	for range r.rows {
		// drain so the producer goroutine exits
	}
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return eris.Wrap(err, "tabular: close")
	}
	return nil
}
