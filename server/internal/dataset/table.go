package dataset

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// nullMarkers are raw cell values treated as missing, matching the
// conventional NA spellings produced by spreadsheet and dataframe exports.
var nullMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsNull reports whether a raw cell value counts as missing.
func IsNull(v string) bool {
	_, ok := nullMarkers[v]
	return ok
}

// Table is an immutable in-memory view of the postings file: named columns
// over rows of raw string cells. Rows may be shorter than the header; the
// missing trailing cells are null.
//
// A Table must not be modified after construction. All methods are safe for
// concurrent use.
type Table struct {
	// Source is the file the table was loaded from; empty for in-memory tables.
	Source string

	// Fingerprint is the hex BLAKE3 digest of the source bytes. Two tables with
	// the same fingerprint hold the same data.
	Fingerprint string

	// LoadedAt is when the table was built.
	LoadedAt time.Time

	header []string
	index  map[string]int
	rows   [][]string
}

// FromRecords builds a Table from a header and rows already in memory.
// The caller must not modify header or rows afterwards.
func FromRecords(header []string, rows [][]string) *Table {
	h := blake3.New()
	for _, rec := range append([][]string{header}, rows...) {
		for _, cell := range rec {
			h.Write([]byte(cell)) //nolint:errcheck
			h.Write([]byte{0x1f}) //nolint:errcheck
		}
		h.Write([]byte{0x1e}) //nolint:errcheck
	}
	return newTable(header, rows, hex.EncodeToString(h.Sum(nil)))
}

func newTable(header []string, rows [][]string, fingerprint string) *Table {
	index := make(map[string]int, len(header))
	for i, name := range header {
		// Duplicate names: the first column wins.
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	return &Table{
		Fingerprint: fingerprint,
		LoadedAt:    now(),
		header:      header,
		index:       index,
		rows:        rows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns a copy of the header in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Values returns the non-null raw values of column name in row order.
// The boolean is false when the column is absent from the table.
// The returned slice is freshly allocated and owned by the caller.
func (t *Table) Values(name string) ([]string, bool) {
	col, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if col >= len(row) || IsNull(row[col]) {
			continue
		}
		out = append(out, row[col])
	}
	return out, true
}
