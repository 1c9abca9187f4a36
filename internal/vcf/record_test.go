package vcf

import "testing"

func TestRecord_Classification(t *testing.T) {
	tests := []struct {
		name        string
		ref, alt    string
		isSNV       bool
		isIndel     bool
		isInsertion bool
		isDeletion  bool
	}{
		{"snv", "A", "G", true, false, false, false},
		{"insertion", "A", "AGG", false, true, true, false},
		{"deletion", "AGG", "A", false, true, false, true},
		{"mnv", "AT", "GC", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{Ref: tt.ref, Alt: tt.alt}
			if r.IsSNV() != tt.isSNV {
				t.Errorf("IsSNV() = %v, want %v", r.IsSNV(), tt.isSNV)
			}
			if r.IsIndel() != tt.isIndel {
				t.Errorf("IsIndel() = %v, want %v", r.IsIndel(), tt.isIndel)
			}
			if r.IsInsertion() != tt.isInsertion {
				t.Errorf("IsInsertion() = %v, want %v", r.IsInsertion(), tt.isInsertion)
			}
			if r.IsDeletion() != tt.isDeletion {
				t.Errorf("IsDeletion() = %v, want %v", r.IsDeletion(), tt.isDeletion)
			}
		})
	}
}

func TestRecord_NormalizeChrom(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"chr12", "12"},
		{"12", "12"},
		{"chrX", "X"},
		{"chr", "chr"},
	}

	for _, tt := range tests {
		r := &Record{Chrom: tt.chrom}
		if got := r.NormalizeChrom(); got != tt.want {
			t.Errorf("NormalizeChrom(%s) = %s, want %s", tt.chrom, got, tt.want)
		}
	}
}

func TestSplitMultiAllelic(t *testing.T) {
	r := &Record{
		Chrom: "chr1",
		Pos:   1000,
		Ref:   "A",
		Alt:   "G,T",
	}

	split := SplitMultiAllelic(r)
	if len(split) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(split))
	}
	if split[0].Alt != "G" || split[1].Alt != "T" {
		t.Errorf("Expected alleles G and T, got %s and %s", split[0].Alt, split[1].Alt)
	}
	if split[0].Pos != 1000 || split[1].Chrom != "chr1" {
		t.Error("Expected shared coordinates on split records")
	}
}

func TestSplitMultiAllelic_SingleAllele(t *testing.T) {
	r := &Record{Chrom: "chr1", Pos: 1000, Ref: "A", Alt: "G"}

	split := SplitMultiAllelic(r)
	if len(split) != 1 || split[0] != r {
		t.Error("Expected single-allele record returned unchanged")
	}
}
