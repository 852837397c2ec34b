package evaluation

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// RenderSummaryPDF writes a one-page evaluation summary. Missing scores and
// grades print as "not yet available", never as zero.
func RenderSummaryPDF(w io.Writer, period Period, summary Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Evaluation Summary")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", fallback(period.Name, period.ID)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", summary.EmployeeID))
	pdf.Ln(12)

	section := func(title string, score *float64, grade *string, status Status, submitted *bool) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 12)
		pdf.Cell(0, 7, "Score: "+FormatScore(score))
		pdf.Ln(6)
		pdf.Cell(0, 7, "Grade: "+FormatGrade(grade))
		pdf.Ln(6)
		pdf.Cell(0, 7, "Status: "+string(status))
		pdf.Ln(6)
		if submitted != nil {
			pdf.Cell(0, 7, fmt.Sprintf("Submitted: %t", *submitted))
			pdf.Ln(6)
		}
		pdf.Ln(4)
	}

	section("Self evaluation", summary.Self.TotalScore, summary.Self.Grade, summary.Self.Status, nil)
	section("Primary downward evaluation", summary.Primary.TotalScore, summary.Primary.Grade, summary.Primary.Status, &summary.Primary.IsSubmitted)
	section("Secondary downward evaluation", summary.Secondary.TotalScore, summary.Secondary.Grade, summary.Secondary.Status, &summary.Secondary.IsSubmitted)

	if len(summary.Secondary.Evaluators) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		for _, header := range []struct {
			label string
			width float64
		}{{"Evaluator", 60}, {"Number", 30}, {"Assigned", 25}, {"Completed", 25}, {"Submitted", 25}} {
			pdf.CellFormat(header.width, 7, header.label, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 11)
		for _, ev := range summary.Secondary.Evaluators {
			pdf.CellFormat(60, 7, ev.EvaluatorName, "1", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, ev.EvaluatorEmployeeNumber, "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%d", ev.AssignedWbsCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%d", ev.CompletedEvaluationCount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 7, fmt.Sprintf("%t", ev.IsSubmitted), "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	return pdf.Output(w)
}

func FormatScore(score *float64) string {
	if score == nil {
		return "not yet available"
	}
	return fmt.Sprintf("%.2f", *score)
}

func FormatGrade(grade *string) string {
	if grade == nil {
		return "not yet available"
	}
	return *grade
}
