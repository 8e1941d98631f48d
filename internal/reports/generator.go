package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

func renderCSV(target int, rows []DayRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "meals_logged", "calories", "protein", "carbs", "fats", "target_calories", "remaining_calories"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{
			row.Date,
			strconv.Itoa(row.MealsLogged),
			formatMacro(row.Calories),
			formatMacro(row.Protein),
			formatMacro(row.Carbs),
			formatMacro(row.Fats),
			strconv.Itoa(target),
			strconv.Itoa(target - int(row.Calories)),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func renderPDF(from, to string, target int, rows []DayRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Daily Nutrition Report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", from, to))
	pdf.Ln(6)
	pdf.Cell(0, 8, fmt.Sprintf("Daily target: %d kcal", target))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(26, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(18, 6, "Meals", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Calories", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Protein", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Carbs", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Fats", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Remaining", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		pdf.CellFormat(26, 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 6, strconv.Itoa(row.MealsLogged), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, formatMacro(row.Calories), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, formatMacro(row.Protein), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, formatMacro(row.Carbs), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, formatMacro(row.Fats), "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, strconv.Itoa(target-int(row.Calories)), "1", 1, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func formatMacro(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
