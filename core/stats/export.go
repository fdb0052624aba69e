package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/checkcheck/backend/core/attendance"
)

// ExportMonthlyGrid writes the monthly grid as an XLSX workbook with one sheet named after the month.
func (svc *Service) ExportMonthlyGrid(ctx context.Context, grid MonthlyGrid, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := grid.Month.String()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}

	header := []interface{}{"학번", "이름"}
	for _, d := range grid.Dates {
		header = append(header, fmt.Sprintf("%d일", d.Day()))
	}
	header = append(header, attendance.OnTime.Label(), attendance.Late.Label(), attendance.Absent.Label())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for i, row := range grid.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		values := []interface{}{row.Student.Number, row.Student.Name}
		for _, status := range row.Statuses {
			values = append(values, status.Label())
		}
		values = append(values, row.OnTime, row.Late, row.Absent)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		if err = f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row of %s", row.Student.Number)
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}
