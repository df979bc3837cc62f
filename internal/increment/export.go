package increment

import (
	"bytes"

	"github.com/xuri/excelize/v2"
)

const incrementSheet = "Increments"

var incrementHeaders = []string{
	"Name", "Level", "Experience", "Current Salary", "Avg Rating", "Rating Label",
	"Base %", "Special %", "Total %", "Gross New Salary", "Fines", "Net New Salary",
}

func RenderIncrementsXLSX(rows []IncrementResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", incrementSheet); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, h := range incrementHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(incrementSheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(incrementHeaders), 1)
	f.SetCellStyle(incrementSheet, "A1", last, bold)
	f.SetColWidth(incrementSheet, "A", "A", 28)
	f.SetColWidth(incrementSheet, "F", "F", 22)

	for r, row := range rows {
		values := []any{
			row.Name, row.Level, row.Experience, row.CurrentSalary, row.AvgRating, row.RatingLabel,
			row.BaseIncrement, row.SpecialIncrement, row.TotalIncrement, row.GrossNewSalary,
			row.TotalFineDeductions, row.NetNewSalary,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(incrementSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
