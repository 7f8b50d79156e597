package tabular

import (
	"encoding/csv"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/ror-cli/internal/model"
)

// RowWriter writes raw string rows to a CSV file.
type RowWriter struct {
	f *os.File
	w *csv.Writer
}

// CreateRowWriter creates path and writes the header.
func CreateRowWriter(path string, header []string) (*RowWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: create %s", path)
	}
	w := &RowWriter{f: f, w: csv.NewWriter(f)}
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Write appends one row.
func (w *RowWriter) Write(row []string) error {
	return eris.Wrap(w.w.Write(row), "tabular: write row")
}

// Close flushes buffered rows and closes the file.
func (w *RowWriter) Close() error {
	return closeFlushed(w.f, w.w)
}

// RecordWriter writes SoftwareOrgRecords with a fixed header.
type RecordWriter struct {
	f   *os.File
	w   *csv.Writer
	enc *csvutil.Encoder
}

// CreateRecordWriter creates path and writes the minimal header, so an empty
// run still yields a valid file.
func CreateRecordWriter(path string) (*RecordWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tabular: create %s", path)
	}
	cw := csv.NewWriter(f)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(model.SoftwareOrgRecord{}); err != nil {
		_ = f.Close()
		return nil, eris.Wrap(err, "tabular: encode header")
	}
	return &RecordWriter{f: f, w: cw, enc: enc}, nil
}

// Write appends one record.
func (w *RecordWriter) Write(rec model.SoftwareOrgRecord) error {
	return eris.Wrap(w.enc.Encode(rec), "tabular: encode record")
}

// Close flushes buffered records and closes the file.
func (w *RecordWriter) Close() error {
	return closeFlushed(w.f, w.w)
}

func closeFlushed(f *os.File, w *csv.Writer) error {
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrap(err, "tabular: flush")
	}
	return eris.Wrap(f.Close(), "tabular: close")
}
