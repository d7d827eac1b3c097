// Package cli implements the command-line interface for salesetl.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"salesetl/internal/config"
	"salesetl/internal/logging"
	"salesetl/pkg/version"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	rawDir    string
	outputDir string

	// Global config
	cfg *config.Pipeline

	rootCmd = &cobra.Command{
		Use:   "salesetl",
		Short: "Retail sales cleaning, classification and RFM segmentation",
		Long: `salesetl reads the raw customer, employee, store, product and yearly
sales extracts of a coffee shop chain, cleans them, separates bulk (B2B)
buyers from retail (B2C) customers, rebuilds orders, computes sales
aggregates and scores retail customers into RFM segments.

Every table is written as CSV under the output directory and verified by
reading it back. Tables can optionally be published to a SQL warehouse and
segments to Redis.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./salesetl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rawDir, "raw-dir", "",
		"directory holding the raw extracts")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "",
		"root directory for data/, b2b/, b2c/ and findings/")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(segmentCmd)
	rootCmd.AddCommand(inspectCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if rawDir != "" {
		cfg.Inputs.RawDir = rawDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	return nil
}

// printIssues writes one line per issue and reports whether any is an error.
func printIssues(w io.Writer, issues []config.Issue) bool {
	for _, iss := range issues {
		fmt.Fprintf(w, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	return config.HasErrors(issues)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if printIssues(cmd.ErrOrStderr(), config.ValidatePipeline(*cfg)) {
			return fmt.Errorf("configuration is invalid")
		}
		cmd.Println("configuration is valid")
		return nil
	},
}
