package vcf

import (
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fixtureVCF = "##fileformat=VCFv4.2\n" +
	"##INFO=<ID=DP,Number=1,Type=Integer,Description=\"Total Depth\">\n" +
	"##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">\n" +
	"##FORMAT=<ID=DP,Number=1,Type=Integer,Description=\"Read Depth\">\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA001\tNA002\n" +
	"chr1\t1000\trs123\tA\tG\t99.9\tPASS\tDP=52;AF=0.5\tGT:DP\t0/1:30\t1/1:22\n" +
	"chr1\t2000\t.\tC\tT\t85.3\tPASS\tDP=40\tGT:DP\t0/1:18\t0/0:22\n" +
	"chr2\t3000\trs456\tG\tA\t45.2\tPASS\tDP=20;DB\tGT:DP\t0/1:9\t0/1:11\n" +
	"chr2\t4000\t.\tT\tC\t12.1\tLOWQUAL\tDP=7\tGT:DP\t./.:3\t0/1:4\n" +
	"chrX\t5000\trs789\tA\tT\t78.9\tPASS\tDP=33\tGT:DP\t1/1:15\t0/1:18\n"

func newFixtureParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParserFromReader(strings.NewReader(fixtureVCF))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return p
}

func readAll(t *testing.T, p *Parser) []*Record {
	t.Helper()
	var records []*Record
	for {
		r, err := p.Next()
		if err != nil {
			t.Fatalf("Error reading record: %v", err)
		}
		if r == nil {
			return records
		}
		records = append(records, r)
	}
}

func TestParser_Header(t *testing.T) {
	p := newFixtureParser(t)

	h := p.Header()
	if h == nil {
		t.Fatal("Expected header, got nil")
	}

	if got := len(h.Meta()); got != 4 {
		t.Errorf("Expected 4 metadata lines, got %d", got)
	}
	if h.Meta()[0].Key != "fileformat" {
		t.Errorf("Expected first meta key fileformat, got %s", h.Meta()[0].Key)
	}
	if h.Meta()[0].Value != "VCFv4.2" {
		t.Errorf("Expected first meta value VCFv4.2, got %s", h.Meta()[0].Value)
	}

	samples := h.Samples()
	if len(samples) != 2 || samples[0] != "NA001" || samples[1] != "NA002" {
		t.Errorf("Expected samples [NA001 NA002], got %v", samples)
	}

	if h.SampleIndex("NA002") != 1 {
		t.Errorf("Expected NA002 at index 1, got %d", h.SampleIndex("NA002"))
	}
	if h.SampleIndex("NA999") != -1 {
		t.Errorf("Expected -1 for undeclared sample, got %d", h.SampleIndex("NA999"))
	}

	if h.FieldCount() != 11 {
		t.Errorf("Expected field count 11, got %d", h.FieldCount())
	}

	lines := h.Lines()
	if len(lines) != 5 {
		t.Fatalf("Expected 5 raw header lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[4], "#CHROM\t") {
		t.Errorf("Expected last raw line to be #CHROM line, got %q", lines[4])
	}
}

func TestParser_Records(t *testing.T) {
	p := newFixtureParser(t)
	records := readAll(t, p)

	if len(records) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(records))
	}

	r := records[0]
	if r.Chrom != "chr1" {
		t.Errorf("Expected chrom chr1, got %s", r.Chrom)
	}
	if r.Pos != 1000 {
		t.Errorf("Expected pos 1000, got %d", r.Pos)
	}
	if r.ID != "rs123" {
		t.Errorf("Expected id rs123, got %s", r.ID)
	}
	if r.Ref != "A" || r.Alt != "G" {
		t.Errorf("Expected A>G, got %s>%s", r.Ref, r.Alt)
	}
	if !r.HasQual || r.Qual != 99.9 {
		t.Errorf("Expected qual 99.9, got %v (has=%v)", r.Qual, r.HasQual)
	}
	if r.Filter != "PASS" {
		t.Errorf("Expected filter PASS, got %s", r.Filter)
	}
	if r.Info["DP"] != "52" {
		t.Errorf("Expected INFO DP=52, got %v", r.Info["DP"])
	}
	if !r.IsSNV() {
		t.Error("chr1:1000 A>G should be classified as SNV")
	}
}

func TestParser_InfoFlag(t *testing.T) {
	p := newFixtureParser(t)
	records := readAll(t, p)

	// chr2:3000 carries the bare DB flag
	r := records[2]
	if r.Info["DB"] != true {
		t.Errorf("Expected DB flag true, got %v", r.Info["DB"])
	}
	if r.Info["DP"] != "20" {
		t.Errorf("Expected DP=20, got %v", r.Info["DP"])
	}
}

func TestParser_Samples(t *testing.T) {
	p := newFixtureParser(t)
	records := readAll(t, p)

	r := records[0]
	if len(r.Format) != 2 || r.Format[0] != "GT" || r.Format[1] != "DP" {
		t.Errorf("Expected FORMAT [GT DP], got %v", r.Format)
	}
	if len(r.Samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(r.Samples))
	}

	gt, ok := r.Samples[0].Get("GT")
	if !ok || gt != "0/1" {
		t.Errorf("Expected NA001 GT 0/1, got %q (ok=%v)", gt, ok)
	}
	dp, ok := r.Samples[1].Get("DP")
	if !ok || dp != "22" {
		t.Errorf("Expected NA002 DP 22, got %q (ok=%v)", dp, ok)
	}
	if r.Samples[0].Name != "NA001" {
		t.Errorf("Expected sample name NA001, got %s", r.Samples[0].Name)
	}
}

func TestParser_MissingQual(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t100\t.\tA\tG\t.\tPASS\tDP=10\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	r, err := p.Next()
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if r.HasQual {
		t.Error("Expected HasQual false for missing quality")
	}
	if r.Qual != 0 {
		t.Errorf("Expected zero qual for missing quality, got %v", r.Qual)
	}
}

func TestParser_SiteOnlyFile(t *testing.T) {
	input := "##fileformat=VCFv4.2\n" +
		"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t100\t.\tA\tG\t50\tPASS\tDP=10\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	if p.Header().FieldCount() != 8 {
		t.Errorf("Expected field count 8, got %d", p.Header().FieldCount())
	}
	if p.Header().Samples() != nil {
		t.Errorf("Expected no samples, got %v", p.Header().Samples())
	}

	r, err := p.Next()
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}
	if r.Format != nil || r.Samples != nil {
		t.Error("Expected no FORMAT or samples on site-only record")
	}
}

func TestParser_RoundTrip(t *testing.T) {
	p := newFixtureParser(t)
	records := readAll(t, p)

	dataLines := strings.Split(strings.TrimSuffix(fixtureVCF, "\n"), "\n")[5:]
	if len(dataLines) != len(records) {
		t.Fatalf("Fixture has %d data lines, parsed %d records", len(dataLines), len(records))
	}

	for i, r := range records {
		if r.String() != dataLines[i] {
			t.Errorf("Record %d does not round-trip:\n got %q\nwant %q", i, r.String(), dataLines[i])
		}
	}
}

func TestParser_BlankLinesSkipped(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"\n" +
		"chr1\t100\t.\tA\tG\t50\tPASS\t.\n" +
		"\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	records := readAll(t, p)
	if len(records) != 1 {
		t.Errorf("Expected 1 record, got %d", len(records))
	}
}

func TestParser_FieldCountMismatch(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA001\n" +
		"chr1\t100\t.\tA\tG\t50\tPASS\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	_, err = p.Next()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Errorf("Expected error at line 2, got %d", perr.Line)
	}
	if !strings.Contains(perr.Message, "columns") {
		t.Errorf("Expected column count message, got %q", perr.Message)
	}
	if perr.Content == "" {
		t.Error("Expected offending line content in error")
	}
}

func TestParser_InvalidPosition(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\tabc\t.\tA\tG\t50\tPASS\t.\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	_, err = p.Next()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if !strings.Contains(perr.Message, "position") {
		t.Errorf("Expected position message, got %q", perr.Message)
	}
}

func TestParser_SampleArityMismatch(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tNA001\n" +
		"chr1\t100\t.\tA\tG\t50\tPASS\t.\tGT:DP\t0/1\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	_, err = p.Next()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if !strings.Contains(perr.Message, "FORMAT") {
		t.Errorf("Expected FORMAT arity message, got %q", perr.Message)
	}
}

func TestParser_ContinuesAfterParseError(t *testing.T) {
	input := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
		"chr1\t100\t.\tA\tG\t50\tPASS\t.\n" +
		"chr1\tbad\t.\tC\tT\t60\tPASS\t.\n" +
		"chr1\t300\t.\tG\tA\t70\tPASS\t.\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}

	r, err := p.Next()
	if err != nil || r == nil || r.Pos != 100 {
		t.Fatalf("Expected first record at 100, got %v, %v", r, err)
	}

	_, err = p.Next()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError for bad line, got %v", err)
	}

	// Skip-and-report mode resumes past the offending line
	r, err = p.Next()
	if err != nil || r == nil || r.Pos != 300 {
		t.Fatalf("Expected third record at 300 after error, got %v, %v", r, err)
	}
}

func TestParser_NoHeader(t *testing.T) {
	input := "chr1\t100\t.\tA\tG\t50\tPASS\t.\n"

	_, err := NewParserFromReader(strings.NewReader(input))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError for missing header, got %v", err)
	}
}

func TestParser_TruncatedColumnHeader(t *testing.T) {
	input := "#CHROM\tPOS\tID\n" +
		"chr1\t100\t.\n"

	_, err := NewParserFromReader(strings.NewReader(input))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError for truncated column header, got %v", err)
	}
	if !strings.Contains(perr.Message, "at least 8") {
		t.Errorf("Expected column minimum message, got %q", perr.Message)
	}
}

func TestParser_EmptyInput(t *testing.T) {
	_, err := NewParserFromReader(strings.NewReader(""))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError for empty input, got %v", err)
	}
	if !strings.Contains(perr.Message, "#CHROM") {
		t.Errorf("Expected missing #CHROM message, got %q", perr.Message)
	}
}

func TestParser_GzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.vcf.gz")

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(fixtureVCF)); err != nil {
		t.Fatalf("Failed to write gzip data: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("Failed to close gzip writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Failed to close temp file: %v", err)
	}

	p, err := NewParser(path)
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer p.Close()

	records := readAll(t, p)
	if len(records) != 5 {
		t.Errorf("Expected 5 records from gzip file, got %d", len(records))
	}
}
