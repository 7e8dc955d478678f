package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/HugoGarcez/agentpromp/tools/braces"
	"github.com/spf13/cobra"
)

var (
	bracesLines []int
	bracesFrom  int
	bracesTo    int
	bracesCode  bool
)

var bracesCmd = &cobra.Command{
	Use:   "braces",
	Short: "Inspect curly-brace nesting of a source file",
}

var bracesCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Report brace depth and imbalance",
	Long: `Scan FILE and report stray closing braces and braces left open.

--line prints the depth and the open braces at the end of the given lines,
--from/--to trace every line of a range. By default every brace byte counts;
--code skips braces in string literals and comments.

Exits non-zero when the file is unbalanced.`,
	Args: cobra.ExactArgs(1),
	RunE: runBracesCheck,
}

func init() {
	bracesCheckCmd.Flags().IntSliceVar(&bracesLines, "line", nil, "Line to snapshot (repeatable)")
	bracesCheckCmd.Flags().IntVar(&bracesFrom, "from", 0, "First line of the trace range")
	bracesCheckCmd.Flags().IntVar(&bracesTo, "to", 0, "Last line of the trace range")
	bracesCheckCmd.Flags().BoolVar(&bracesCode, "code", false, "Ignore braces in strings and comments")

	bracesCmd.AddCommand(bracesCheckCmd)
}

func runBracesCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	opts := braces.Options{TargetLines: bracesLines, From: bracesFrom, To: bracesTo}
	if bracesCode {
		opts.Mode = braces.ModeCode
	}

	report, err := braces.Scan(f, opts)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", path, err)
	}

	printBracesReport(cmd.OutOrStdout(), path, report)

	if pos, bad := report.FirstProblem(); bad {
		return fmt.Errorf("%s is unbalanced, first problem at %s", path, pos)
	}
	return nil
}

func printBracesReport(w io.Writer, path string, report *braces.Report) {
	fmt.Fprintf(w, "%s: %d lines, max depth %d, %s mode\n", path, report.Lines, report.MaxDepth, report.Mode)

	for _, s := range report.Snapshots {
		fmt.Fprintf(w, "  line %d: depth %d", s.Line, s.Depth)
		if len(s.Open) > 0 {
			fmt.Fprintf(w, ", open at %s", joinPositions(s.Open))
		}
		fmt.Fprintln(w)
	}

	for _, p := range report.Unexpected {
		fmt.Fprintf(w, "  unexpected '}' at %s\n", p)
	}
	for _, p := range report.Unclosed {
		fmt.Fprintf(w, "  unclosed '{' from %s\n", p)
	}
	if report.Unterminated != nil {
		fmt.Fprintf(w, "  comment or template literal from %s never ends\n", report.Unterminated)
	}

	if report.Balanced() {
		fmt.Fprintln(w, "balanced")
	} else {
		fmt.Fprintf(w, "UNBALANCED: %d unexpected, %d unclosed\n", len(report.Unexpected), len(report.Unclosed))
	}
}

func joinPositions(ps []braces.Position) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
