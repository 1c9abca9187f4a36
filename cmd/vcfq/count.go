package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vcfq/internal/output"
	"github.com/inodb/vcfq/internal/query"
	"github.com/inodb/vcfq/internal/vcf"
)

func newCountCmd() *cobra.Command {
	var (
		byField       string
		whereExprs    []string
		outputPath    string
		skipMalformed bool
	)

	cmd := &cobra.Command{
		Use:   "count [flags] <input>",
		Short: "Count records by field value or labeled predicates",
		Long: `Count consumes the whole stream and writes key<TAB>count lines,
sorted by key.

With --by, records are grouped by a field value. With --where, each
LABEL=EXPR tally is evaluated independently against every record, so
a record may count toward several labels; labels are not a partition
unless their expressions are complementary.`,
		Example: `  vcfq count --by CHROM input.vcf
  vcfq count --by FILTER input.vcf
  vcfq count --where "high=QUAL > 50" --where "low=QUAL <= 50" input.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if byField == "" && len(whereExprs) == 0 {
				return fmt.Errorf("one of --by or --where is required")
			}
			if byField != "" && len(whereExprs) > 0 {
				return fmt.Errorf("--by and --where are mutually exclusive")
			}
			if !cmd.Flags().Changed("skip-malformed") {
				skipMalformed = viper.GetBool("filter.skip_malformed")
			}
			return runCount(args[0], byField, whereExprs, outputPath, skipMalformed)
		},
	}

	cmd.Flags().StringVar(&byField, "by", "", "Group records by this field")
	cmd.Flags().StringArrayVar(&whereExprs, "where", nil, "Labeled tally as LABEL=EXPR; repeatable")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&skipMalformed, "skip-malformed", false, "Skip and report malformed records instead of aborting")

	return cmd
}

func runCount(input, byField string, whereExprs []string, outputPath string, skipMalformed bool) error {
	parser, err := vcf.NewParser(input)
	if err != nil {
		return err
	}
	defer parser.Close()

	schema := query.NewSchema(parser.Header())

	engine := query.NewEngine()
	engine.SetSkipMalformed(skipMalformed)
	engine.SetLogger(logger)

	var counts map[string]int
	if byField != "" {
		key, err := schema.Resolve(byField)
		if err != nil {
			return err
		}
		counts, err = engine.CountBy(parser, key)
		if err != nil {
			return err
		}
	} else {
		preds := make([]query.LabeledPredicate, 0, len(whereExprs))
		for _, pair := range whereExprs {
			label, expr, found := cutPair(pair)
			if !found {
				return fmt.Errorf("invalid tally %q: expected LABEL=EXPR", pair)
			}
			pred, err := query.Compile(expr, schema)
			if err != nil {
				return err
			}
			preds = append(preds, query.LabeledPredicate{Label: label, Pred: pred})
		}
		counts, err = engine.CountWhere(parser, preds)
		if err != nil {
			return err
		}
	}

	out, closeOut, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	return output.WriteCounts(out, counts)
}
