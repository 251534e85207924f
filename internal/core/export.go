package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"dealerdash/internal/models"
)

// RecapCSVHeader is the fixed export header. Column order is part of the
// report contract; downstream dealer tooling parses by position.
var RecapCSVHeader = []string{
	"Created Date",
	"First Name",
	"Last Name",
	"Address",
	"City",
	"State",
	"ZipCode",
	"Email",
	"Phone",
	"Credit Range",
	"Auto Year",
	"Auto Make",
	"Auto Model",
}

// ErrNoRows guards against emitting an empty export file; the controller
// short-circuits before calling ExportCSV, this is the backstop.
var ErrNoRows = fmt.Errorf("no rows to export")

// ExportCSV serializes recap rows into a downloadable CSV. The export
// view carries address line 1 only; line 2 and zip+4 stay on-screen.
func ExportCSV(rows []models.RecapRow, reportDate time.Time) ([]byte, string, error) {
	if len(rows) == 0 {
		return nil, "", ErrNoRows
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(RecapCSVHeader); err != nil {
		return nil, "", err
	}
	for _, row := range rows {
		record := []string{
			row.CreatedDate.Format("2006-01-02 15:04:05"),
			row.FirstName,
			row.LastName,
			row.Address1,
			row.City,
			row.State,
			row.Zip,
			row.Email,
			row.Cellphone,
			row.CreditRange,
			row.CarYear,
			row.CarMake,
			row.CarModel,
		}
		if err := w.Write(record); err != nil {
			return nil, "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), ExportFilename(reportDate), nil
}

// ExportFilename builds the attachment name from the report's start
// date. Dashes instead of slashes so the name stays filesystem-safe.
func ExportFilename(reportDate time.Time) string {
	return fmt.Sprintf("Daily-Recap-Report-%s.csv", reportDate.Format("01-02-2006"))
}
