package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salesetl/internal/inspect"
)

var (
	inspectDelimiter string
	inspectJSON      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.csv>...",
	Short: "Profile raw extracts before a run",
	Long: `Sniff the delimiter, infer a type per column and match each file against
the raw input schemas. Missing columns and columns whose data cannot be
coerced to the expected type are listed; the command fails when any file
has them. The configured header_map is applied to the headers.

Example:
  salesetl inspect raw/customer.csv raw/sales/*.csv
  salesetl inspect --delimiter ';' --json export.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDelimiter, "delimiter", "",
		`field delimiter ("\t" for tab); sniffed when empty`)
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print reports as JSON")
}

func runInspect(cmd *cobra.Command, args []string) error {
	delim, err := inspect.DecodeDelimiter(inspectDelimiter)
	if err != nil {
		return err
	}
	opt := inspect.Options{Delimiter: delim, HeaderMap: cfg.Inputs.HeaderMap}

	reports := make([]inspect.Report, 0, len(args))
	bad := 0
	for _, path := range args {
		rep, err := inspect.File(cmd.Context(), path, opt)
		if err != nil {
			return err
		}
		if len(rep.Missing) > 0 || len(rep.Mismatches()) > 0 {
			bad++
		}
		reports = append(reports, rep)
	}

	if inspectJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, rep := range reports {
			printReport(cmd, rep)
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d files do not fit their raw schema", bad, len(reports))
	}
	return nil
}

func printReport(cmd *cobra.Command, rep inspect.Report) {
	schemaName := rep.Schema
	if schemaName == "" {
		schemaName = "(no match)"
	}
	cmd.Printf("%s: %d rows, %d skipped, delimiter %q, schema %s\n",
		rep.Path, rep.Rows, rep.Skipped, rep.Delimiter, schemaName)
	if len(rep.Missing) > 0 {
		cmd.Printf("  missing: %s\n", strings.Join(rep.Missing, ", "))
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  COLUMN\tTYPE\tEXPECTED\tNULLS\tNOTE")
	mismatched := map[string]bool{}
	for _, name := range rep.Mismatches() {
		mismatched[name] = true
	}
	for _, c := range rep.Columns {
		var notes []string
		if c.Layout != "" {
			notes = append(notes, "layout "+c.Layout)
		}
		if c.CommaDecimal {
			notes = append(notes, "comma decimal")
		}
		if mismatched[c.Name] {
			notes = append(notes, "MISMATCH")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t%s\n", c.Name, c.Type, c.Expected, c.Nulls, strings.Join(notes, "; "))
	}
	tw.Flush()
}
