package report

import (
	"io"

	"github.com/certik/femhub-notebook/internal/errors"

	"github.com/xuri/excelize/v2"
)

const usageSheet = "Usage"

// WriteXLSX renders the report as a spreadsheet: one row per user on the
// Usage sheet plus a summary block below.
func WriteXLSX(r *Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(usageSheet)
	if err != nil {
		return errors.Wrap(err, "failed to create sheet")
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return errors.Wrap(err, "failed to remove default sheet")
	}

	headers := []interface{}{"Username", "Worksheets", "Cells", "Bytes"}
	if err := f.SetSheetRow(usageSheet, "A1", &headers); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	row := 2
	for _, u := range r.PerUser {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell name")
		}
		values := []interface{}{u.Username, u.WorksheetCount, u.CellCount, u.TotalBytes}
		if err := f.SetSheetRow(usageSheet, cell, &values); err != nil {
			return errors.Wrap(err, "failed to write user row")
		}
		row++
	}

	row++ // blank separator
	summary := [][]interface{}{
		{"Users", r.Summary.Users},
		{"Worksheets", r.Summary.Worksheets},
		{"Total bytes", r.Summary.TotalBytes},
		{"Mean bytes", r.Summary.MeanBytes},
		{"Median bytes", r.Summary.MedianBytes},
		{"P95 bytes", r.Summary.P95Bytes},
	}
	for _, line := range summary {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell name")
		}
		if err := f.SetSheetRow(usageSheet, cell, &line); err != nil {
			return errors.Wrap(err, "failed to write summary row")
		}
		row++
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write spreadsheet")
	}
	return nil
}
