package vcf

import "strings"

// Missing is the sentinel used by VCF for absent values.
const Missing = "."

// Sample holds the decoded genotype fields of one sample column,
// keyed by the FORMAT tags of its record.
type Sample struct {
	Name   string
	Fields map[string]string
}

// Get returns the value of a FORMAT tag and whether it is present.
func (s *Sample) Get(tag string) (string, bool) {
	v, ok := s.Fields[tag]
	return v, ok
}

// Record represents a single data row from a VCF file.
type Record struct {
	Chrom   string                 // Chromosome name (e.g., "12", "chr12")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier ("." = unnamed)
	Ref     string                 // Reference allele
	Alt     string                 // Alternate allele
	Qual    float64                // Quality score; only valid when HasQual
	HasQual bool                   // False when QUAL is the "." sentinel
	Filter  string                 // Filter status (PASS or filter names)
	Info    map[string]interface{} // INFO field key-value pairs; flags map to true
	Format  []string               // FORMAT tags, in declared order
	Samples []Sample               // One entry per declared sample

	// raw holds the original tab-split fields so the record can be
	// re-serialized byte-for-byte.
	raw []string
}

// Fields returns the original tab-delimited fields of the record.
func (r *Record) Fields() []string {
	return r.raw
}

// String returns the record in its native tab-delimited form,
// byte-for-byte identical to the input line.
func (r *Record) String() string {
	return strings.Join(r.raw, "\t")
}

// IsSNV returns true if the record is a single nucleotide variant.
func (r *Record) IsSNV() bool {
	return len(r.Ref) == 1 && len(r.Alt) == 1
}

// IsIndel returns true if the record is an insertion or deletion.
func (r *Record) IsIndel() bool {
	return len(r.Ref) != len(r.Alt)
}

// IsInsertion returns true if the record is an insertion.
func (r *Record) IsInsertion() bool {
	return len(r.Alt) > len(r.Ref)
}

// IsDeletion returns true if the record is a deletion.
func (r *Record) IsDeletion() bool {
	return len(r.Ref) > len(r.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r *Record) NormalizeChrom() string {
	if len(r.Chrom) > 3 && r.Chrom[:3] == "chr" {
		return r.Chrom[3:]
	}
	return r.Chrom
}

// SplitMultiAllelic splits a multi-allelic record into one record per
// alternate allele. Single-allele records are returned unchanged.
// The split records share INFO, FORMAT and sample data and lose their
// raw form, so they no longer round-trip byte-for-byte.
func SplitMultiAllelic(r *Record) []*Record {
	alts := strings.Split(r.Alt, ",")
	if len(alts) == 1 {
		return []*Record{r}
	}

	records := make([]*Record, len(alts))
	for i, alt := range alts {
		split := *r
		split.Alt = alt
		split.raw = nil
		records[i] = &split
	}

	return records
}
