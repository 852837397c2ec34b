package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"perfeval/internal/domain/evaluation"
	"perfeval/internal/platform/logging"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute an evaluation summary from a YAML snapshot",
		Long: `Reads a snapshot (period, weights, records, assignments, evaluators and
approvals) and prints the resulting summary. No database is required.`,
		RunE: runScore,
	}
	cmd.Flags().StringP("file", "f", "", "Snapshot YAML file (required)")
	cmd.Flags().String("format", "text", "Output format: text or json")
	cmd.Flags().String("pdf", "", "Also write the summary as a PDF to this path")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")
	pdfPath, _ := cmd.Flags().GetString("pdf")
	if format != "text" && format != "json" {
		return fmt.Errorf("--format must be text or json, got %q", format)
	}

	in, err := evaluation.ReadSnapshotFile(path)
	if err != nil {
		return err
	}
	logger := logging.New(cmd.ErrOrStderr(), "development", "warn")
	summary, buildErr := evaluation.NewBuilder(logger).Build(in)

	if pdfPath != "" {
		if err := writeSummaryPDF(pdfPath, in.Period, summary); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", pdfPath)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(summary)
	} else {
		err = printSummary(out, in.Period, summary)
	}
	if err != nil {
		return err
	}
	if buildErr != nil {
		return fmt.Errorf("scoring %s: %w", path, buildErr)
	}
	return nil
}

func writeSummaryPDF(path string, period evaluation.Period, summary evaluation.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating pdf: %w", err)
	}
	if err := evaluation.RenderSummaryPDF(f, period, summary); err != nil {
		f.Close()
		return fmt.Errorf("rendering pdf: %w", err)
	}
	return f.Close()
}

func printSummary(w io.Writer, period evaluation.Period, summary evaluation.Summary) error {
	name := period.Name
	if name == "" {
		name = period.ID
	}
	fmt.Fprintf(w, "Period:   %s\n", name)
	fmt.Fprintf(w, "Employee: %s\n\n", summary.EmployeeID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SECTION\tSCORE\tGRADE\tSUBMITTED\tSTATUS")
	fmt.Fprintf(tw, "self\t%s\t%s\t-\t%s\n",
		evaluation.FormatScore(summary.Self.TotalScore), evaluation.FormatGrade(summary.Self.Grade), summary.Self.Status)
	fmt.Fprintf(tw, "primary\t%s\t%s\t%t\t%s\n",
		evaluation.FormatScore(summary.Primary.TotalScore), evaluation.FormatGrade(summary.Primary.Grade), summary.Primary.IsSubmitted, summary.Primary.Status)
	fmt.Fprintf(tw, "secondary\t%s\t%s\t%t\t%s\n",
		evaluation.FormatScore(summary.Secondary.TotalScore), evaluation.FormatGrade(summary.Secondary.Grade), summary.Secondary.IsSubmitted, summary.Secondary.Status)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(summary.Secondary.Evaluators) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nSecondary evaluators:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tNUMBER\tASSIGNED\tCOMPLETED\tSUBMITTED\tSTATUS")
	for _, ev := range summary.Secondary.Evaluators {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%t\t%s\n",
			ev.EvaluatorID, ev.EvaluatorName, ev.EvaluatorEmployeeNumber,
			ev.AssignedWbsCount, ev.CompletedEvaluationCount, ev.IsSubmitted, ev.Status)
	}
	return tw.Flush()
}
