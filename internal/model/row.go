// Package model defines the records flowing through the resolution pipeline.
package model

import "strings"

// Input and intermediate column names.
const (
	ColResourceName  = "Resource_Name"
	ColParentOrgName = "Parent Org Name"
	ColCuratedROR    = "ROR and other mappings"
	ColResourceURL   = "Resource_URL"
	ColAlternateURLs = "Alternate_URLs"
	ColProposedName  = "proposed_name"
	ColProposedRORID = "proposed_ror_id"
)

// ProposedColumns are appended to every augmented row, in order.
var ProposedColumns = []string{ColProposedName, ColProposedRORID}

// Header is an ordered list of column names with a lookup index.
// Duplicate names resolve to their first position.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader builds a Header from column names. Names are trimmed for lookup
// but preserved verbatim for output.
func NewHeader(names []string) *Header {
	h := &Header{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
	}
	for i, n := range names {
		key := strings.TrimSpace(n)
		if _, ok := h.index[key]; !ok {
			h.index[key] = i
		}
	}
	return h
}

// Names returns the column names in order.
func (h *Header) Names() []string {
	return append([]string(nil), h.names...)
}

// Len returns the number of columns.
func (h *Header) Len() int { return len(h.names) }

// Index returns the position of a column.
func (h *Header) Index(col string) (int, bool) {
	i, ok := h.index[col]
	return i, ok
}

// Truncate returns a header limited to the first n columns.
func (h *Header) Truncate(n int) *Header {
	if n < 0 || n >= len(h.names) {
		return h
	}
	return NewHeader(h.names[:n])
}

// Append returns a header with extra columns added at the end.
func (h *Header) Append(cols ...string) *Header {
	names := make([]string, 0, len(h.names)+len(cols))
	names = append(names, h.names...)
	names = append(names, cols...)
	return NewHeader(names)
}

// Row is one input record: values aligned to a shared Header.
type Row struct {
	header *Header
	values []string
}

// NewRow binds values to a header. Missing trailing cells read as absent.
func NewRow(h *Header, values []string) Row {
	return Row{header: h, values: values}
}

// Header returns the row's header.
func (r Row) Header() *Header { return r.header }

// Get returns the raw value for a column. ok is false when the column is not
// in the header or the row has no cell for it.
func (r Row) Get(col string) (string, bool) {
	if r.header == nil {
		return "", false
	}
	i, ok := r.header.Index(col)
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Value returns the raw value for a column, or "" when absent.
func (r Row) Value(col string) string {
	v, _ := r.Get(col)
	return v
}

// Project aligns the row to the first n header columns, padding absent cells
// with empty strings and dropping the rest.
func (r Row) Project(n int) []string {
	out := make([]string, n)
	copy(out, r.values)
	return out
}
