package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RecordReader is the interface for sources that produce records.
// Both the file parser and the query engine's filter stage implement it.
type RecordReader interface {
	// Next reads the next record.
	// Returns nil, nil when there are no more records.
	Next() (*Record, error)
}

// Parser reads records from a VCF file.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     *Header
}

// NewParser creates a new VCF parser for the given file.
// Supports both plain VCF and gzipped VCF (.vcf.gz) files.
// Use "-" to read from stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	p := &Parser{file: file}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}

	// Seek back to beginning
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	// Check for gzip magic number (0x1f, 0x8b)
	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		p.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(p.gzipReader)
	} else {
		p.reader = bufio.NewReader(file)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader (e.g., stdin).
func NewParserFromReader(r io.Reader) (*Parser, error) {
	p := &Parser{
		reader: bufio.NewReader(r),
	}

	if err := p.parseHeader(); err != nil {
		return nil, err
	}

	return p, nil
}

// parseHeader consumes the leading metadata lines and the #CHROM
// column-header line.
func (p *Parser) parseHeader() error {
	h := &Header{}

	for {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read header: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "##") {
			h.addMeta(line)
			continue
		}

		if strings.HasPrefix(line, "#CHROM") {
			h.setColumns(line)
			if len(h.Columns()) < 8 {
				return &ParseError{
					Line:    p.lineNumber,
					Content: line,
					Message: fmt.Sprintf("column header declares %d columns, expected at least 8", len(h.Columns())),
				}
			}
			p.header = h
			return nil
		}

		// Non-header line encountered without #CHROM
		return &ParseError{
			Line:    p.lineNumber,
			Content: line,
			Message: "expected #CHROM header line",
		}
	}

	return &ParseError{
		Line:    p.lineNumber,
		Message: "no #CHROM header line found",
	}
}

// Next reads the next record from the VCF file.
// Returns nil, nil when there are no more records.
// After a *ParseError the stream remains positioned past the
// offending line, so callers running in skip-and-report mode can
// call Next again.
func (p *Parser) Next() (*Record, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("read record line: %w", err)
	}
	p.lineNumber++

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return p.Next() // Skip empty lines
	}

	return p.parseLine(line)
}

// parseLine parses a single VCF data line into a Record.
func (p *Parser) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != p.header.FieldCount() {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Content: line,
			Message: fmt.Sprintf("expected %d columns, found %d", p.header.FieldCount(), len(fields)),
		}
	}

	pos, err := strconv.ParseUint(fields[1], 10, 63)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Content: line,
			Message: fmt.Sprintf("invalid position: %s", fields[1]),
		}
	}

	r := &Record{
		Chrom:  fields[0],
		Pos:    int64(pos),
		ID:     fields[2],
		Ref:    fields[3],
		Alt:    fields[4],
		Filter: fields[6],
		Info:   parseInfo(fields[7]),
		raw:    fields,
	}

	if fields[5] != Missing {
		qual, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, &ParseError{
				Line:    p.lineNumber,
				Content: line,
				Message: fmt.Sprintf("invalid quality: %s", fields[5]),
			}
		}
		r.Qual = qual
		r.HasQual = true
	}

	// FORMAT + sample columns
	if len(fields) > 8 {
		r.Format = strings.Split(fields[8], ":")

		samples := p.header.Samples()
		r.Samples = make([]Sample, len(samples))
		for i, name := range samples {
			values := strings.Split(fields[9+i], ":")
			if len(values) != len(r.Format) {
				return nil, &ParseError{
					Line:    p.lineNumber,
					Content: line,
					Message: fmt.Sprintf("sample %s has %d fields, FORMAT declares %d", name, len(values), len(r.Format)),
				}
			}

			decoded := make(map[string]string, len(r.Format))
			for j, tag := range r.Format {
				decoded[tag] = values[j]
			}
			r.Samples[i] = Sample{Name: name, Fields: decoded}
		}
	}

	return r, nil
}

// parseInfo parses the INFO field into a map.
func parseInfo(info string) map[string]interface{} {
	result := make(map[string]interface{})
	if info == Missing {
		return result
	}

	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		} else {
			// Flag-type INFO field
			result[parts[0]] = true
		}
	}

	return result
}

// Header returns the parsed VCF header.
func (p *Parser) Header() *Header {
	return p.header
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	if p.gzipReader != nil {
		p.gzipReader.Close()
	}
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Content string
	Message string
}

func (e *ParseError) Error() string {
	if e.Content == "" {
		return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("vcf parse error at line %d: %s: %q", e.Line, e.Message, e.Content)
}
