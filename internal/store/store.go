// Package store loads filtered record streams into a DuckDB database
// for ad-hoc SQL queries.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vcfq/internal/vcf"
)

// Store manages a DuckDB connection holding exported variant records.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates the variants table if it doesn't exist.
// QUAL is nullable: the "." sentinel maps to SQL NULL so threshold
// queries exclude unknown-quality records the same way the predicate
// language does. Duplicate sites are legal in VCF, so there is no
// primary key.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variants (
		chrom VARCHAR NOT NULL,
		pos BIGINT NOT NULL,
		id VARCHAR,
		ref VARCHAR NOT NULL,
		alt VARCHAR NOT NULL,
		qual DOUBLE,
		filter VARCHAR,
		info VARCHAR,
		format VARCHAR,
		samples VARCHAR
	)`)
	return err
}

// InsertRecord appends one record to the variants table. INFO,
// FORMAT and the sample columns are stored in their raw text form.
func (s *Store) InsertRecord(r *vcf.Record) error {
	fields := r.Fields()

	var qual sql.NullFloat64
	if r.HasQual {
		qual = sql.NullFloat64{Float64: r.Qual, Valid: true}
	}

	var id sql.NullString
	if r.ID != vcf.Missing {
		id = sql.NullString{String: r.ID, Valid: true}
	}

	info := vcf.Missing
	if len(fields) > 7 {
		info = fields[7]
	}

	var format, samples sql.NullString
	if len(fields) > 8 {
		format = sql.NullString{String: fields[8], Valid: true}
	}
	if len(fields) > 9 {
		samples = sql.NullString{String: strings.Join(fields[9:], "\t"), Valid: true}
	}

	_, err := s.db.Exec(`INSERT INTO variants
		(chrom, pos, id, ref, alt, qual, filter, info, format, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Chrom, r.Pos, id, r.Ref, r.Alt, qual, r.Filter, info, format, samples)
	if err != nil {
		return fmt.Errorf("insert variant %s:%d: %w", r.Chrom, r.Pos, err)
	}
	return nil
}

// Count returns the number of exported records.
func (s *Store) Count() (int64, error) {
	var count int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM variants`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count variants: %w", err)
	}
	return count, nil
}

// CountByChrom returns per-chromosome record counts.
func (s *Store) CountByChrom() (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT chrom, COUNT(*) FROM variants GROUP BY chrom`)
	if err != nil {
		return nil, fmt.Errorf("count by chromosome: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var chrom string
		var n int64
		if err := rows.Scan(&chrom, &n); err != nil {
			return nil, err
		}
		counts[chrom] = n
	}
	return counts, rows.Err()
}
