package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vcfq/internal/output"
	"github.com/inodb/vcfq/internal/query"
	"github.com/inodb/vcfq/internal/vcf"
)

func newFilterCmd() *cobra.Command {
	var (
		exprs         []string
		fields        []string
		labels        []string
		delim         string
		outputPath    string
		skipMalformed bool
	)

	cmd := &cobra.Command{
		Use:   "filter [flags] <input>",
		Short: "Filter records with predicate expressions",
		Long: `Filter emits the records matching every -e expression, in input
order. Without --fields the output is the original VCF, header
included; with --fields each match is projected to the named fields
instead.

Expressions compare record fields: the core columns by name (CHROM,
POS, QUAL, ...), INFO entries as INFO.<key>, and genotype fields as
<sample>.<tag>. Operators: == != > >= < <=, "between lo and hi",
len(FIELD), combined with && and || (and/or also work).`,
		Example: `  vcfq filter -e "QUAL > 50" input.vcf
  vcfq filter -e "CHROM == chr1 && QUAL > 80" input.vcf
  vcfq filter -e "len(REF) == 1 and len(ALT) == 1" input.vcf
  vcfq filter -e "FILTER == PASS" --fields CHROM,POS,REF,ALT input.vcf
  vcfq filter -e "NA001.GT == 0/1" -o het.vcf input.vcf.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delimiter") {
				delim = viper.GetString("output.delimiter")
			}
			if !cmd.Flags().Changed("skip-malformed") {
				skipMalformed = viper.GetBool("filter.skip_malformed")
			}
			return runFilter(args[0], exprs, fields, labels, delim, outputPath, skipMalformed)
		},
	}

	cmd.Flags().StringArrayVarP(&exprs, "expr", "e", nil, "Predicate expression; repeat to AND several")
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "Project matches to these fields instead of native output")
	cmd.Flags().StringSliceVar(&labels, "labels", nil, "Relabel projected columns (OLD=NEW)")
	cmd.Flags().StringVarP(&delim, "delimiter", "d", "tab", "Projected output delimiter: tab, comma, or a single character")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip and report malformed records instead of aborting")

	return cmd
}

func runFilter(input string, exprs, fields, labelPairs []string, delim, outputPath string, skipMalformed bool) error {
	parser, err := vcf.NewParser(input)
	if err != nil {
		return err
	}
	defer parser.Close()

	// Predicates and projections compile against the header before
	// any record is read.
	schema := query.NewSchema(parser.Header())
	pred, err := query.CompileAll(exprs, schema)
	if err != nil {
		return err
	}

	labels, err := parseLabels(labelPairs)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	engine := query.NewEngine()
	engine.SetSkipMalformed(skipMalformed)
	engine.SetLogger(logger)

	matches := query.Filter(parser, pred)

	if len(fields) == 0 {
		w := output.NewNativeWriter(out, parser.Header())
		if err := engine.Each(matches, w.WriteRecord); err != nil {
			return err
		}
		return w.Flush()
	}

	projection, err := schema.ResolveAll(fields)
	if err != nil {
		return err
	}

	d, err := parseDelimiter(delim)
	if err != nil {
		return err
	}

	w := output.NewDelimitedWriter(out, d, fields)
	w.SetLabels(labels)

	err = engine.Each(matches, func(r *vcf.Record) error {
		row, err := query.Project(r, projection)
		if err != nil {
			return err
		}
		return w.WriteRow(row)
	})
	if err != nil {
		return err
	}
	return w.Flush()
}
