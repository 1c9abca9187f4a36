package output

import (
	"bufio"
	"io"

	"github.com/inodb/vcfq/internal/vcf"
)

// NativeWriter re-emits records in their original VCF form: the
// header lines verbatim, then one tab-delimited line per record,
// byte-for-byte identical to the input.
type NativeWriter struct {
	w           *bufio.Writer
	header      *vcf.Header
	wroteHeader bool
}

// NewNativeWriter creates a native-format writer for a parsed header.
func NewNativeWriter(w io.Writer, header *vcf.Header) *NativeWriter {
	return &NativeWriter{
		w:      bufio.NewWriter(w),
		header: header,
	}
}

// WriteHeader writes the original header lines once.
func (nw *NativeWriter) WriteHeader() error {
	if nw.wroteHeader {
		return nil
	}
	nw.wroteHeader = true

	for _, line := range nw.header.Lines() {
		if _, err := nw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecord writes one record, emitting the header first if it has
// not been written yet.
func (nw *NativeWriter) WriteRecord(r *vcf.Record) error {
	if err := nw.WriteHeader(); err != nil {
		return err
	}
	_, err := nw.w.WriteString(r.String() + "\n")
	return err
}

// Flush writes any buffered output, emitting the header first when
// no records matched.
func (nw *NativeWriter) Flush() error {
	if err := nw.WriteHeader(); err != nil {
		return err
	}
	return nw.w.Flush()
}
