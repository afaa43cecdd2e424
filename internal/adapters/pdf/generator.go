// Package pdf renders a one page churn prediction report: the submitted
// customer fields followed by the prediction, churn probability and the
// suggested retention discount.
package pdf

import (
	"io"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/csg33k/churn-advisor/internal/domain"
)

// GenerateReport writes the report for one prediction to w.
func GenerateReport(payload domain.FormPayload, p *domain.Prediction, generatedAt time.Time, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle("Churn Prediction Report", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	marginL, marginT, marginR, marginB := pdf.GetMargins()
	contentW := pageW - marginL - marginR

	// ── Header bar ───────────────────────────────────────────────────────────
	pdf.SetFillColor(30, 30, 30)
	pdf.Rect(marginL, marginT, contentW, 10, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, "CUSTOMER CHURN PREDICTION", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginL+2, marginT+1.5)
	pdf.CellFormat(contentW-4, 7, generatedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	y := marginT + 14

	// ── Result section ───────────────────────────────────────────────────────
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(contentW, 5.5, "RESULT", "LRT", 1, "L", true, 0, "")
	y += 5.5

	third := contentW / 3
	pdf.SetXY(marginL, y)
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(third, 5, "Prediction", "L", 0, "L", false, 0, "")
	pdf.CellFormat(third, 5, "Churn Probability", "", 0, "L", false, 0, "")
	pdf.CellFormat(third, 5, "Suggested Discount", "R", 1, "L", false, 0, "")
	y += 5

	pdf.SetXY(marginL, y)
	pdf.SetFont("Helvetica", "B", 14)
	if p.IsChurn() {
		pdf.SetTextColor(192, 0, 0)
	} else {
		pdf.SetTextColor(0, 128, 0)
	}
	pdf.CellFormat(third, 9, p.Label(), "LB", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(third, 9, domain.FormatPercent(p.Probability), "B", 0, "L", false, 0, "")
	pdf.CellFormat(third, 9, domain.FormatPercent(p.SuggestedDiscount), "RB", 1, "L", false, 0, "")
	y += 9 + 6

	// ── Submitted fields table ───────────────────────────────────────────────
	keyW := contentW * 0.45
	valW := contentW - keyW

	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	pdf.SetXY(marginL, y)
	pdf.CellFormat(keyW, 7, "Field", "1", 0, "L", true, 0, "")
	pdf.CellFormat(valW, 7, "Submitted Value", "1", 1, "L", true, 0, "")
	y += 7
	pdf.SetTextColor(0, 0, 0)

	rowH := 6.0
	pdf.SetFont("Helvetica", "", 8.5)
	for i, k := range sortedKeys(payload) {
		if i%2 == 0 {
			pdf.SetFillColor(250, 250, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetX(marginL)
		pdf.CellFormat(keyW, rowH, tr(k), "1", 0, "L", true, 0, "")
		pdf.CellFormat(valW, rowH, tr(payload[k]), "1", 1, "L", true, 0, "")
	}

	// ── Footer ─────────────────────────────────────────────────────────────────
	pdf.SetXY(marginL, pageH-marginB-6)
	pdf.SetFont("Helvetica", "I", 7.5)
	pdf.SetTextColor(130, 130, 130)
	pdf.CellFormat(contentW, 5, "Generated by Churn Advisor", "", 0, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	return pdf.Output(w)
}

func sortedKeys(p domain.FormPayload) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
