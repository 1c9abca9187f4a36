package query

import (
	"errors"

	"go.uber.org/zap"

	"github.com/inodb/vcfq/internal/vcf"
)

// Engine runs filter, projection and aggregation passes over a
// record stream. The zero policy aborts on the first malformed
// record; skip-and-report mode must be enabled explicitly and
// reports every skipped line through the logger.
type Engine struct {
	skipMalformed bool
	skipped       int
	logger        *zap.Logger
}

// NewEngine creates an engine with the default strict policy.
func NewEngine() *Engine {
	return &Engine{
		logger: zap.NewNop(),
	}
}

// SetSkipMalformed enables skip-and-report mode. Malformed records
// are logged and skipped instead of aborting the stream.
func (e *Engine) SetSkipMalformed(skip bool) {
	e.skipMalformed = skip
}

// SetLogger sets the logger for skip reports.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// Skipped returns the number of malformed records skipped so far.
func (e *Engine) Skipped() int {
	return e.skipped
}

// Each pulls every record from src and passes it to fn, applying the
// engine's malformed-record policy at the pull point. Stops on the
// first error from fn.
func (e *Engine) Each(src vcf.RecordReader, fn func(*vcf.Record) error) error {
	for {
		r, err := src.Next()
		if err != nil {
			var perr *vcf.ParseError
			if e.skipMalformed && errors.As(err, &perr) {
				e.skipped++
				e.logger.Warn("skipping malformed record",
					zap.Int("line", perr.Line),
					zap.String("content", perr.Content),
					zap.String("reason", perr.Message))
				continue
			}
			return err
		}
		if r == nil {
			return nil
		}
		if err := fn(r); err != nil {
			return err
		}
	}
}

// FilterReader is a lazy, order-preserving filter stage. It
// implements vcf.RecordReader so stages compose.
type FilterReader struct {
	src  vcf.RecordReader
	pred Predicate
}

// Filter wraps src so that Next only yields records matching pred.
func Filter(src vcf.RecordReader, pred Predicate) *FilterReader {
	return &FilterReader{src: src, pred: pred}
}

// Next returns the next matching record, nil at end of stream.
// Errors from the source pass through untouched so the caller's
// malformed-record policy still applies.
func (f *FilterReader) Next() (*vcf.Record, error) {
	for {
		r, err := f.src.Next()
		if err != nil || r == nil {
			return r, err
		}
		if f.pred(r) {
			return r, nil
		}
	}
}

// Project renders a record as an ordered tuple following the field
// order. A field absent on the record is an error.
func Project(r *vcf.Record, fields []*Field) ([]string, error) {
	row := make([]string, len(fields))
	for i, f := range fields {
		v, err := f.Render(r)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// CountBy consumes the stream and tallies records by the key field.
// Map iteration order is unspecified; callers needing determinism
// must sort the keys.
func (e *Engine) CountBy(src vcf.RecordReader, key *Field) (map[string]int, error) {
	counts := make(map[string]int)
	err := e.Each(src, func(r *vcf.Record) error {
		counts[key.Key(r)]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// LabeledPredicate pairs a tally label with its predicate.
type LabeledPredicate struct {
	Label string
	Pred  Predicate
}

// CountWhere consumes the stream and tallies how many records match
// each labeled predicate. Every predicate is evaluated against every
// record independently, so a record may count toward several labels;
// labels are not a partition unless their predicates are
// complementary. Labels with no matches still appear with count 0.
func (e *Engine) CountWhere(src vcf.RecordReader, preds []LabeledPredicate) (map[string]int, error) {
	counts := make(map[string]int, len(preds))
	for _, lp := range preds {
		counts[lp.Label] = 0
	}

	err := e.Each(src, func(r *vcf.Record) error {
		for _, lp := range preds {
			if lp.Pred(r) {
				counts[lp.Label]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}
