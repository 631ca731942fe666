package utils

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"carbonlens/web/models"
)

const signupSheet = "Signups"

var signupHeaders = []any{"ID", "Created at", "Email", "Company", "Tier", "Action", "Price", "Currency", "Succeeded", "Stage", "Error", "Checkout session"}

// WriteSignupsXLSX renders attempts as a single-sheet workbook.
func WriteSignupsXLSX(w io.Writer, attempts []models.SignupAttempt) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", signupSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(signupSheet, "A1", &signupHeaders); err != nil {
		return err
	}
	for i, a := range attempts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			a.ID,
			a.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			a.Email,
			a.CompanyName,
			string(a.Tier),
			a.Action,
			a.Price,
			a.Currency,
			a.Succeeded,
			a.Stage,
			a.Error,
			a.SessionID,
		}
		if err := f.SetSheetRow(signupSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(signupSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	_, err := f.WriteTo(w)
	return err
}
