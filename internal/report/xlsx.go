package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/contract-diff/internal/diff"
)

// Sheet names of the XLSX report.
const (
	SheetPayoutChanges = "Payout Changes"
	SheetBasicInfo     = "Basic Information"
	SheetLineChanges   = "Line Changes"
)

// XLSX writes the result as a workbook with one sheet per table.
func XLSX(w io.Writer, res *diff.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"; reuse it for the first table.
	if err := f.SetSheetName("Sheet1", SheetPayoutChanges); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	payoutRows := make([][]any, 0, len(res.SignificantChanges))
	for _, c := range res.SignificantChanges {
		var delta any
		if c.Delta != nil {
			delta = float64(c.Delta.Cents) / 100
		}
		payoutRows = append(payoutRows, []any{c.Section, c.Condition, c.OldValue, c.NewValue, c.Change, delta})
	}
	if err := writeSheet(f, SheetPayoutChanges,
		[]string{"Section", "Condition", "Old Payout", "New Payout", "Change", "Delta (USD)"},
		payoutRows, []float64{18, 28, 24, 24, 60, 12}); err != nil {
		return err
	}

	infoRows := make([][]any, 0, len(res.BasicInformation))
	for _, a := range res.BasicInformation {
		infoRows = append(infoRows, []any{string(a.Aspect), a.OldValue, a.NewValue, string(a.Status)})
	}
	if _, err := f.NewSheet(SheetBasicInfo); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := writeSheet(f, SheetBasicInfo,
		[]string{"Aspect", "Old Contract", "New Contract", "Status"},
		infoRows, []float64{22, 32, 32, 12}); err != nil {
		return err
	}

	if len(res.LineChanges) > 0 {
		lineRows := make([][]any, 0, len(res.LineChanges))
		for _, c := range res.LineChanges {
			lineRows = append(lineRows, []any{c.Line, c.OldValue, c.NewValue, c.Change})
		}
		if _, err := f.NewSheet(SheetLineChanges); err != nil {
			return fmt.Errorf("xlsx sheet: %w", err)
		}
		if err := writeSheet(f, SheetLineChanges,
			[]string{"Line", "Old Contract", "New Contract", "Change"},
			lineRows, []float64{8, 48, 48, 40}); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, widths []float64) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
	}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, width)
	}
	return nil
}
