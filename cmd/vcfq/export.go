package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vcfq/internal/query"
	"github.com/inodb/vcfq/internal/store"
	"github.com/inodb/vcfq/internal/vcf"
)

func newExportCmd() *cobra.Command {
	var (
		exprs         []string
		outputPath    string
		skipMalformed bool
	)

	cmd := &cobra.Command{
		Use:   "export [flags] <input>",
		Short: "Export records to a DuckDB database",
		Long: `Export loads the (optionally filtered) record stream into the
variants table of a DuckDB database for ad-hoc SQL. QUAL's "."
sentinel becomes SQL NULL, so threshold queries behave like the
predicate language: unknown quality matches no threshold.`,
		Example: `  vcfq export --output variants.duckdb input.vcf
  vcfq export -e "FILTER == PASS" --output pass.duckdb input.vcf.gz
  duckdb variants.duckdb "SELECT chrom, COUNT(*) FROM variants GROUP BY chrom"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return fmt.Errorf("--output is required")
			}
			if !cmd.Flags().Changed("skip-malformed") {
				skipMalformed = viper.GetBool("filter.skip_malformed")
			}
			return runExport(args[0], exprs, outputPath, skipMalformed)
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "Only export records matching this expression; repeat to AND several")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip and report malformed records instead of aborting")

	return cmd
}

func runExport(input string, exprs []string, outputPath string, skipMalformed bool) error {
	// Ensure output has a database extension
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath += ".duckdb"
	}

	// Remove existing output file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("remove existing file: %w", err)
		}
	}

	parser, err := vcf.NewParser(input)
	if err != nil {
		return err
	}
	defer parser.Close()

	schema := query.NewSchema(parser.Header())
	pred, err := query.CompileAll(exprs, schema)
	if err != nil {
		return err
	}

	s, err := store.Open(outputPath)
	if err != nil {
		return err
	}
	defer s.Close()

	engine := query.NewEngine()
	engine.SetSkipMalformed(skipMalformed)
	engine.SetLogger(logger)

	var inserted int
	err = engine.Each(query.Filter(parser, pred), func(r *vcf.Record) error {
		if err := s.InsertRecord(r); err != nil {
			return err
		}
		inserted++
		if inserted%10000 == 0 {
			fmt.Fprintf(os.Stderr, "  Exported %d records...\n", inserted)
		}
		return nil
	})
	if err != nil {
		return err
	}

	count, err := s.Count()
	if err != nil {
		return err
	}

	var sizeStr string
	if stat, err := os.Stat(outputPath); err == nil {
		sizeStr = fmt.Sprintf("%.2f MB", float64(stat.Size())/(1024*1024))
	} else {
		sizeStr = "unknown"
	}

	fmt.Fprintf(os.Stderr, "Export complete!\n")
	fmt.Fprintf(os.Stderr, "  Records: %d\n", count)
	if skipped := engine.Skipped(); skipped > 0 {
		fmt.Fprintf(os.Stderr, "  Skipped: %d malformed\n", skipped)
	}
	fmt.Fprintf(os.Stderr, "  Output size: %s\n", sizeStr)
	fmt.Fprintf(os.Stderr, "  Output file: %s\n", outputPath)

	return nil
}
