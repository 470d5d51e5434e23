// ABOUTME: XLSX rendering of an estimate using excelize
// ABOUTME: Header block, one row per line item and a TOTAL row

package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/2389/lot-admin/internal/model"
)

// SheetName is the worksheet holding the estimate.
const SheetName = "Estimate"

// ContentTypeXLSX is the MIME type of a spreadsheet download.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Columns of the line item table, in order.
var Columns = []string{"Product Name", "Category", "Quantity", "Unit Price", "Total Price"}

// headerRows is the number of rows above the column headings (four info rows and a blank).
const headerRows = 5

// Spreadsheet renders e as an XLSX workbook.
func Spreadsheet(e model.Estimate) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	info := []string{
		"Estimate ID: " + e.ID,
		"Customer: " + e.Customer.Label(),
		"Date: " + formatDate(e),
		"Status: " + strings.ToUpper(string(e.Status)),
	}
	for i, line := range info {
		if err := f.SetCellValue(SheetName, cell(1, i+1), line); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	headingRow := headerRows + 1
	for i, name := range Columns {
		if err := f.SetCellValue(SheetName, cell(i+1, headingRow), name); err != nil {
			return nil, fmt.Errorf("writing column heading: %w", err)
		}
	}

	row := headingRow
	for _, item := range e.Items {
		row++
		values := []any{
			item.DisplayName(),
			item.DisplayCategory(),
			item.Quantity,
			item.Price.InexactFloat64(),
			item.LineTotal().InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell(1, row), &values); err != nil {
			return nil, fmt.Errorf("writing line item: %w", err)
		}
	}

	row++
	totalRow := row
	if err := f.SetCellValue(SheetName, cell(1, totalRow), "TOTAL"); err != nil {
		return nil, fmt.Errorf("writing total label: %w", err)
	}
	if err := f.SetCellValue(SheetName, cell(5, totalRow), e.Total().InexactFloat64()); err != nil {
		return nil, fmt.Errorf("writing total: %w", err)
	}

	if err := applyStyles(f, headingRow, totalRow); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func applyStyles(f *excelize.File, headingRow, totalRow int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating heading style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}
	boldMoney, err := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating total style: %w", err)
	}

	if err := f.SetCellStyle(SheetName, cell(1, headingRow), cell(len(Columns), headingRow), bold); err != nil {
		return fmt.Errorf("styling headings: %w", err)
	}
	if totalRow > headingRow+1 {
		if err := f.SetCellStyle(SheetName, cell(4, headingRow+1), cell(5, totalRow-1), money); err != nil {
			return fmt.Errorf("styling prices: %w", err)
		}
	}
	if err := f.SetCellStyle(SheetName, cell(1, totalRow), cell(1, totalRow), bold); err != nil {
		return fmt.Errorf("styling total label: %w", err)
	}
	if err := f.SetCellStyle(SheetName, cell(5, totalRow), cell(5, totalRow), boldMoney); err != nil {
		return fmt.Errorf("styling total: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", "A", 32); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "E", 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}
	return nil
}

// cell converts 1-based column and row numbers to an A1 reference.
func cell(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		// Only reachable with non-positive coordinates, which this package never builds.
		panic(err)
	}
	return name
}

func formatDate(e model.Estimate) string {
	if e.CreatedAt.IsZero() {
		return "Unknown"
	}
	return e.CreatedAt.Format("Jan 2, 2006")
}
