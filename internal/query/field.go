package query

import (
	"strconv"
	"strings"

	"github.com/inodb/vcfq/internal/vcf"
)

// fieldKind identifies which part of a record a selector addresses.
type fieldKind int

const (
	kindChrom fieldKind = iota
	kindPos
	kindID
	kindRef
	kindAlt
	kindQual
	kindFilter
	kindInfoRaw
	kindFormat
	kindInfoKey
	kindSampleTag
)

// Field is a compiled selector for one record field. Selectors use
// the native column-header names (CHROM, POS, ID, REF, ALT, QUAL,
// FILTER, INFO, FORMAT), INFO.<key> for INFO entries, and
// <sample>.<tag> for genotype fields of a declared sample.
type Field struct {
	Name      string // selector as written
	kind      fieldKind
	key       string // INFO key or FORMAT tag
	sampleIdx int
}

// Schema resolves field selectors against the sample names a header
// declares. Resolution happens once, before any record is processed.
type Schema struct {
	samples []string
}

// NewSchema builds a schema from a parsed header.
func NewSchema(h *vcf.Header) *Schema {
	return &Schema{samples: h.Samples()}
}

// coreFields maps the fixed column names to their kinds.
var coreFields = map[string]fieldKind{
	"CHROM":  kindChrom,
	"POS":    kindPos,
	"ID":     kindID,
	"REF":    kindRef,
	"ALT":    kindAlt,
	"QUAL":   kindQual,
	"FILTER": kindFilter,
	"INFO":   kindInfoRaw,
	"FORMAT": kindFormat,
}

// Resolve compiles a field selector, returning an UnknownFieldError
// for names that do not exist on the schema.
func (s *Schema) Resolve(name string) (*Field, error) {
	if kind, ok := coreFields[name]; ok {
		return &Field{Name: name, kind: kind}, nil
	}

	prefix, rest, found := strings.Cut(name, ".")
	if !found || rest == "" {
		return nil, &UnknownFieldError{Name: name}
	}

	if prefix == "INFO" {
		return &Field{Name: name, kind: kindInfoKey, key: rest}, nil
	}

	if idx := s.sampleIndex(prefix); idx >= 0 {
		return &Field{Name: name, kind: kindSampleTag, key: rest, sampleIdx: idx}, nil
	}

	return nil, &UnknownFieldError{Name: name, Detail: "not a core column, INFO.<key>, or declared sample"}
}

// ResolveAll compiles a list of selectors, preserving order.
func (s *Schema) ResolveAll(names []string) ([]*Field, error) {
	fields := make([]*Field, len(names))
	for i, name := range names {
		f, err := s.Resolve(name)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

func (s *Schema) sampleIndex(name string) int {
	for i, sample := range s.samples {
		if sample == name {
			return i
		}
	}
	return -1
}

// value is the evaluated form of a field on one record. A missing
// value (QUAL sentinel, absent INFO key, absent FORMAT tag) has
// present=false and compares false against everything.
type value struct {
	text    string
	num     float64
	isNum   bool
	present bool
}

func textValue(s string) value {
	v := value{text: s, present: true}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		v.num = n
		v.isNum = true
	}
	return v
}

func numValue(n float64, text string) value {
	return value{text: text, num: n, isNum: true, present: true}
}

func missingValue() value {
	return value{}
}

// rawField returns the record's original text for one column.
// Records built by SplitMultiAllelic carry no raw form, so this can
// come back empty.
func rawField(r *vcf.Record, i int) (string, bool) {
	fields := r.Fields()
	if i < len(fields) {
		return fields[i], true
	}
	return "", false
}

// eval extracts the field's value from a record.
func (f *Field) eval(r *vcf.Record) value {
	switch f.kind {
	case kindChrom:
		return textValue(r.Chrom)
	case kindPos:
		if s, ok := rawField(r, 1); ok {
			return numValue(float64(r.Pos), s)
		}
		return numValue(float64(r.Pos), strconv.FormatInt(r.Pos, 10))
	case kindID:
		return textValue(r.ID)
	case kindRef:
		return textValue(r.Ref)
	case kindAlt:
		return textValue(r.Alt)
	case kindQual:
		if !r.HasQual {
			return missingValue()
		}
		if s, ok := rawField(r, 5); ok {
			return numValue(r.Qual, s)
		}
		return numValue(r.Qual, strconv.FormatFloat(r.Qual, 'g', -1, 64))
	case kindFilter:
		return textValue(r.Filter)
	case kindInfoRaw:
		s, ok := rawField(r, 7)
		if !ok {
			return missingValue()
		}
		return textValue(s)
	case kindFormat:
		s, ok := rawField(r, 8)
		if !ok {
			return missingValue()
		}
		return textValue(s)
	case kindInfoKey:
		raw, ok := r.Info[f.key]
		if !ok {
			return missingValue()
		}
		if s, ok := raw.(string); ok {
			return textValue(s)
		}
		// Flag-type INFO entry
		return textValue("true")
	case kindSampleTag:
		if f.sampleIdx >= len(r.Samples) {
			return missingValue()
		}
		s, ok := r.Samples[f.sampleIdx].Get(f.key)
		if !ok {
			return missingValue()
		}
		return textValue(s)
	}
	return missingValue()
}

// Render returns the field's textual form for projection. A field
// absent on the record is an error, not a silent blank. QUAL is the
// one exception: its column always exists, so the "." sentinel
// projects as itself.
func (f *Field) Render(r *vcf.Record) (string, error) {
	if f.kind == kindQual {
		if s, ok := rawField(r, 5); ok {
			return s, nil
		}
		if !r.HasQual {
			return vcf.Missing, nil
		}
		return strconv.FormatFloat(r.Qual, 'g', -1, 64), nil
	}

	v := f.eval(r)
	if !v.present {
		return "", &UnknownFieldError{
			Name:   f.Name,
			Detail: "absent on record " + r.Chrom + ":" + strconv.FormatInt(r.Pos, 10),
		}
	}
	return v.text, nil
}

// Key returns the field's textual form for grouping. Missing values
// group under the "." sentinel.
func (f *Field) Key(r *vcf.Record) string {
	v := f.eval(r)
	if !v.present {
		return vcf.Missing
	}
	return v.text
}
