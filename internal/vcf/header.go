// Package vcf provides VCF file parsing functionality.
package vcf

import "strings"

// MetaLine is one ##key=value metadata declaration from the VCF header.
// Value holds everything after the first '=', unparsed.
type MetaLine struct {
	Key   string
	Value string
}

// Header holds the metadata and column layout of a VCF file.
// It is built once while consuming the leading lines and is
// immutable afterwards.
type Header struct {
	meta    []MetaLine
	columns []string
	samples []string
	lines   []string // raw header lines, for native re-emission
}

// Meta returns the metadata declarations in file order.
func (h *Header) Meta() []MetaLine {
	return h.meta
}

// Columns returns the column names from the #CHROM line, including
// the leading "#CHROM".
func (h *Header) Columns() []string {
	return h.columns
}

// Samples returns the declared sample names, in column order.
// Returns nil for a site-only file with no sample columns.
func (h *Header) Samples() []string {
	return h.samples
}

// SampleIndex returns the position of a sample name in the declared
// sample list, or -1 if the name is not declared.
func (h *Header) SampleIndex(name string) int {
	for i, s := range h.samples {
		if s == name {
			return i
		}
	}
	return -1
}

// Lines returns the raw header lines exactly as read, metadata lines
// first, the #CHROM line last.
func (h *Header) Lines() []string {
	return h.lines
}

// FieldCount returns the number of tab-delimited fields every data
// row must carry: 9 + the number of declared samples, or 8 for a
// site-only file without FORMAT and sample columns.
func (h *Header) FieldCount() int {
	return len(h.columns)
}

// addMeta records one ##-prefixed line.
func (h *Header) addMeta(line string) {
	h.lines = append(h.lines, line)

	body := strings.TrimPrefix(line, "##")
	key, value, _ := strings.Cut(body, "=")
	h.meta = append(h.meta, MetaLine{Key: key, Value: value})
}

// setColumns records the #CHROM line and extracts sample names from
// the columns after FORMAT (index 9+).
func (h *Header) setColumns(line string) {
	h.lines = append(h.lines, line)

	h.columns = strings.Split(line, "\t")
	if len(h.columns) > 9 {
		h.samples = h.columns[9:]
	}
}
