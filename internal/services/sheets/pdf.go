package sheets

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/chartnote/chartnote/internal/models"
)

// RenderRationaleReport renders a sheet's rationales as a printable PDF.
// Each processed row gets its edited commentary, falling back to the
// generated text when no edit exists.
func RenderRationaleReport(sheet *models.Sheet, rationales []*models.RowRationale) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(sheet.FileName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Trade Rationale Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Sheet: %s", sheet.FileName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Upload date: %s", sheet.UploadDate), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Rows: %d, with rationale: %d", len(sheet.RowsData), len(rationales)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, rationale := range rationales {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Row %d", rationale.RowIndex+1), "", 1, "L", false, 0, "")

		if rationale.RowIndex >= 0 && rationale.RowIndex < len(sheet.RowsData) {
			pdf.SetFont("Helvetica", "I", 9)
			row := sheet.RowsData[rationale.RowIndex]
			for _, column := range row.Columns {
				value := row.Values[column]
				pdf.MultiCell(0, 5, fmt.Sprintf("%s: %v", column, value), "", "L", false)
			}
			pdf.Ln(1)
		}

		text := rationale.EditableRationale
		if text == "" {
			text = rationale.RationaleText
		}

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, text, "", "L", false)
		pdf.Ln(4)
	}

	if len(rationales) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 8, "No rationales generated yet.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}

	return buf.Bytes(), nil
}
