// Package statement renders patient account statements as xlsx workbooks.
package statement

import (
	"bytes"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/xuri/excelize/v2"

	"poms/internal/core"
)

// SheetName is the single worksheet of a statement.
const SheetName = "Statement"

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BillHeader labels the bill table columns.
var BillHeader = []string{"Bill ID", "Date", "Description", "Amount", "Status"}

// headerRow is the row holding BillHeader; bills follow it.
const headerRow = 6

// Filename suggests a download name for the patient's statement.
func Filename(summary core.AccountSummary) string {
	return fmt.Sprintf("statement_patient_%d.xlsx", summary.PatientID)
}

// Render builds the workbook for an account summary. Bills keep the order of
// the summary, newest first.
func Render(summary core.AccountSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	rows := [][]any{
		{"Patient", fmt.Sprintf("%s (ID %d)", summary.PatientName, summary.PatientID)},
		{"Total Billed", summary.TotalBilled},
		{"Total Paid", summary.TotalPaid},
		{"Outstanding", summary.Outstanding},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, bold); err != nil {
			return nil, fmt.Errorf("style summary: %w", err)
		}
	}
	if err := f.SetCellValue(SheetName, "C4", "₹"+humanize.Commaf(summary.Outstanding)); err != nil {
		return nil, fmt.Errorf("write outstanding: %w", err)
	}

	start, _ := excelize.CoordinatesToCellName(1, headerRow)
	end, _ := excelize.CoordinatesToCellName(len(BillHeader), headerRow)
	if err := f.SetSheetRow(SheetName, start, &BillHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, start, end, header); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	for i, b := range summary.Bills {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		row := []any{b.ID, b.Date, b.Description, b.Amount, string(b.Status)}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write bill %d: %w", b.ID, err)
		}
	}
	if err := f.SetColWidth(SheetName, "C", "C", 60); err != nil {
		return nil, fmt.Errorf("set width: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
