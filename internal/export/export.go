// Package export writes a batch of card records as a spreadsheet.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"cardreader/internal/models"
)

const (
	SheetName = "Cards"

	XLSXFileName    = "Card_Data.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	CSVFileName     = "Card_Data.csv"
	CSVContentType  = "text/csv"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("no records to export")

// Columns is the header row, in CardRecord field order.
var Columns = []string{"Name", "Designation", "Email", "Mobile", "Address", "Airline", "SourceFileName"}

func row(r models.CardRecord) []string {
	return []string{r.Name, r.Designation, r.Email, r.Mobile, r.Address, r.Airline, r.SourceFileName}
}

// XLSX writes one "Cards" sheet with a header row and one row per record.
func XLSX(w io.Writer, records []models.CardRecord) error {
	if len(records) == 0 {
		return ErrEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = excelize.Cell{StyleID: bold, Value: c}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cells := row(rec)
		values := make([]interface{}, len(cells))
		for j, v := range cells {
			values[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// CSV writes the same table as comma separated values.
func CSV(w io.Writer, records []models.CardRecord) error {
	if len(records) == 0 {
		return ErrEmpty
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
