// Package output renders record and tuple streams as text.
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// DelimitedWriter renders tuple rows as delimiter-separated text with
// a header row of column names written exactly once, before any data.
// An empty stream still yields the header line so downstream tooling
// sees a consistent column count.
//
// Tab output is joined verbatim, matching the native VCF convention.
// Any other delimiter goes through encoding/csv so values containing
// the delimiter are quoted.
type DelimitedWriter struct {
	w           *bufio.Writer
	csv         *csv.Writer
	delim       rune
	columns     []string
	labels      map[string]string
	wroteHeader bool
}

// NewDelimitedWriter creates a writer for the given delimiter and
// column names.
func NewDelimitedWriter(w io.Writer, delim rune, columns []string) *DelimitedWriter {
	dw := &DelimitedWriter{
		w:       bufio.NewWriter(w),
		delim:   delim,
		columns: columns,
	}
	if delim != '\t' {
		dw.csv = csv.NewWriter(dw.w)
		dw.csv.Comma = delim
	}
	return dw
}

// SetLabels installs a column relabeling map applied to the header
// row only; unmapped columns keep their original names.
func (dw *DelimitedWriter) SetLabels(labels map[string]string) {
	dw.labels = labels
}

// WriteHeader writes the header row. Safe to call more than once;
// only the first call emits anything.
func (dw *DelimitedWriter) WriteHeader() error {
	if dw.wroteHeader {
		return nil
	}
	dw.wroteHeader = true

	header := make([]string, len(dw.columns))
	for i, col := range dw.columns {
		if label, ok := dw.labels[col]; ok {
			header[i] = label
		} else {
			header[i] = col
		}
	}
	return dw.writeRow(header)
}

// WriteRow writes one data row, emitting the header first if it has
// not been written yet.
func (dw *DelimitedWriter) WriteRow(row []string) error {
	if err := dw.WriteHeader(); err != nil {
		return err
	}
	if len(row) != len(dw.columns) {
		return fmt.Errorf("row has %d values, header declares %d columns", len(row), len(dw.columns))
	}
	return dw.writeRow(row)
}

func (dw *DelimitedWriter) writeRow(row []string) error {
	if dw.csv != nil {
		return dw.csv.Write(row)
	}
	_, err := dw.w.WriteString(strings.Join(row, "\t") + "\n")
	return err
}

// Flush writes any buffered output, emitting the header first when
// the stream produced no rows at all.
func (dw *DelimitedWriter) Flush() error {
	if err := dw.WriteHeader(); err != nil {
		return err
	}
	if dw.csv != nil {
		dw.csv.Flush()
		if err := dw.csv.Error(); err != nil {
			return err
		}
	}
	return dw.w.Flush()
}

// WriteCounts renders a key-to-count mapping as tab-separated lines,
// sorted by key. The engine's maps are unordered; sorting here keeps
// command output stable.
func WriteCounts(w io.Writer, counts map[string]int) error {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bw := bufio.NewWriter(w)
	for _, k := range keys {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", k, counts[k]); err != nil {
			return err
		}
	}
	return bw.Flush()
}
