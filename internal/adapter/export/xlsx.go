// Package export writes reports as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iho/qatledger/internal/domain"
	"github.com/iho/qatledger/internal/usecase"
)

// ContentTypeXLSX is the MIME type of the files written here.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	sheetReceivables = "Receivables"
	sheetPayables    = "Payables"
)

// WriteDebts writes the debts report as a workbook with one sheet per
// direction. Each row is a party; each currency has its own column and is
// left blank when nothing is owed in it.
func WriteDebts(w io.Writer, report *usecase.DebtsReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetReceivables); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetPayables); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := writeDebtSheet(f, sheetReceivables, report.Receivables); err != nil {
		return err
	}
	if err := writeDebtSheet(f, sheetPayables, report.Payables); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeDebtSheet(f *excelize.File, sheet string, rows []domain.PartyDebt) error {
	currencies := domain.Currencies()

	headers := []any{"Party", "Phone", "Region"}
	for _, c := range currencies {
		headers = append(headers, string(c))
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		values := []any{row.Party.Name, row.Party.Phone, row.Party.Region}

		owed := make(map[domain.Currency]float64, len(row.Debts))
		for _, d := range row.Debts {
			owed[d.Currency] = d.Amount.InexactFloat64()
		}
		for _, c := range currencies {
			if v, ok := owed[c]; ok {
				values = append(values, v)
			} else {
				values = append(values, nil)
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "C", 16); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "D", "F", 14)
}
