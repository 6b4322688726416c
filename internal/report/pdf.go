package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/akyairhashvil/tasktrack/internal/config"
)

// WritePDF renders s as an A4 report.
func WritePDF(w io.Writer, s Summary, r Range, title string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("%s - %s",
		r.From.Format(config.CSVDateLayout), r.To.Format(config.CSVDateLayout)))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Total: %.1f h en %d registros", s.TotalHours, s.Entries)))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Promedio por usuario: %d h", s.AverageHoursPerUser)))
	pdf.Ln(7)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Promedio por tarea: %d h", s.AverageHoursPerTask)))
	pdf.Ln(12)

	writeTable(pdf, tr, "Por usuario", "Usuario", Ranked(s.ByUser))
	writeTable(pdf, tr, "Por tarea", "Tarea", Ranked(s.ByTask))

	days := make([]GroupTotal, 0, len(s.ByDay))
	for _, d := range s.ByDay {
		days = append(days, GroupTotal{Name: d.Label, Minutes: d.Minutes, Hours: d.Hours})
	}
	writeTable(pdf, tr, "Por día", "Día", days)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, heading, column string, rows []GroupTotal) {
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, tr(heading))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(130, 8, tr(column), "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Horas", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	if len(rows) == 0 {
		pdf.CellFormat(170, 8, "-", "1", 1, "C", false, 0, "")
	}
	for _, row := range rows {
		pdf.CellFormat(130, 8, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.1f", row.Hours), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)
}
