package export

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
)

const (
	sheetSubscriptions = "Subscriptions"
	sheetLoans         = "Loans"
)

func writeXLSX(w io.Writer, b Backup) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetSubscriptions); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetLoans); err != nil {
		return fmt.Errorf("adding sheet: %w", err)
	}

	if err := fillSheet(f, sheetSubscriptions, subscriptionHeader, subscriptionRows(b.Subscriptions, plainAmount, identity)); err != nil {
		return err
	}
	if err := fillSheet(f, sheetLoans, loanHeader, loanRows(b.Loans, plainAmount, identity)); err != nil {
		return err
	}
	return f.Write(w)
}

func fillSheet(f *excelize.File, sheet string, header table.Row, rows []table.Row) error {
	write := func(rowNum int, row table.Row) error {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		copy(values, row)
		return f.SetSheetRow(sheet, cell, &values)
	}

	if err := write(1, header); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	for i, row := range rows {
		if err := write(i+2, row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
