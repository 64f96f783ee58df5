package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet XLSX exports are written to.
const SheetName = "Transactions"

var columnWidths = map[string]float64{
	"A": 12,
	"B": 8,
	"C": 12,
	"D": 20,
	"E": 40,
	"F": 16,
	"G": 10,
}

// WriteXLSX writes txns as a single-sheet workbook with the same columns as
// WriteCSV. Amounts are stored as numbers.
func WriteXLSX(w io.Writer, txns []model.Transaction, categories []model.Category, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#6C5CE7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, h := range Header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetName, "A1", "G1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range Rows(txns, categories, loc) {
		row := i + 2
		values := []any{r.Date, r.Time, nil, r.Category, r.Note, r.PaymentMethod, r.Recurring}
		for col, v := range values {
			if v == nil {
				continue
			}
			if err := f.SetCellValue(SheetName, fmt.Sprintf("%c%d", 'A'+col, row), v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}

		amountCell := fmt.Sprintf("C%d", row)
		if err := f.SetCellFloat(SheetName, amountCell, r.Amount.InexactFloat64(), -1, 64); err != nil {
			return fmt.Errorf("failed to write amount on row %d: %w", row, err)
		}
		if err := f.SetCellStyle(SheetName, amountCell, amountCell, amountStyle); err != nil {
			return fmt.Errorf("failed to style amount on row %d: %w", row, err)
		}
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
