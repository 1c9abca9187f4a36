package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool

	// logger is installed by initConfig; commands use it for skip
	// reports and progress. Nop unless --verbose is set.
	logger = zap.NewNop()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vcfq",
		Short: "Filter, count and transform VCF files",
		Long: `vcfq is a single-pass query engine for VCF files.

It reads plain or gzipped VCF (use '-' for stdin), filters records
with predicate expressions, tallies them by field, rewrites them as
delimited text, or exports them to a DuckDB database. Processing is
streaming: arbitrarily large inputs run in bounded memory except for
the counting commands, which hold one counter per distinct key.`,
		Example: `  vcfq filter -e "QUAL > 50" input.vcf
  vcfq count --by CHROM input.vcf.gz
  vcfq transform -d comma --labels CHROM=chromosome input.vcf
  cat input.vcf | vcfq filter -e "FILTER == PASS" -`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.vcfq.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	cobra.OnInitialize(initConfig)

	root.AddCommand(newFilterCmd())
	root.AddCommand(newCountCmd())
	root.AddCommand(newTransformCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads in the config file and sets up logging.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".vcfq")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetDefault("output.delimiter", "tab")
	viper.SetDefault("filter.skip_malformed", false)

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	if verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
}

// parseDelimiter maps a delimiter flag value to its rune.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "tab", "\t":
		return '\t', nil
	case "comma", ",":
		return ',', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("invalid delimiter %q: use tab, comma, or a single character", s)
	}
	return runes[0], nil
}

// parseLabels parses OLD=NEW relabeling pairs.
func parseLabels(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	labels := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		old, renamed, found := cutPair(pair)
		if !found {
			return nil, fmt.Errorf("invalid label %q: expected OLD=NEW", pair)
		}
		labels[old] = renamed
	}
	return labels, nil
}

func cutPair(s string) (string, string, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '=' {
			return s[:i], s[i+1:], i > 0 && i < len(s)-1
		}
	}
	return "", "", false
}

// openOutput opens the output destination, stdout when path is empty.
func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, f.Close, nil
}
