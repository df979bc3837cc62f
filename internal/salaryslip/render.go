package salaryslip

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// RenderPDF lays out a single slip on one A4 page.
func RenderPDF(slip SlipResponse) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Salary Slip %s %s-%d", slip.EmployeeName, slip.Month, slip.Year), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Salary Slip", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("%s %d", slip.Month, slip.Year), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(70, 8, label, "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 8, value, "1", 1, "L", false, 0, "")
	}

	row("Employee Name", slip.EmployeeName)
	row("Employee ID", slip.EmployeeID)
	row("Designation", slip.Designation)
	row("Working Days", fmt.Sprintf("%d", slip.TotalWorkingDays))
	row("Present Days", fmt.Sprintf("%d", slip.PresentDays))
	row("Paid Leaves", fmt.Sprintf("%d", slip.PaidLeaves))
	row("Unpaid Leaves", fmt.Sprintf("%d", slip.UnpaidLeaves))
	row("Gross Salary", fmt.Sprintf("%.2f", slip.GrossSalary))
	row("Deductions", fmt.Sprintf("%.2f", slip.DeductionAmount))
	row("Net Salary", fmt.Sprintf("%.2f", slip.NetSalary))

	if len(slip.LeavesBreakup) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, "Leaves Breakup", "", 1, "L", false, 0, "")
		for _, k := range sortedKeys(slip.LeavesBreakup) {
			row(k, fmt.Sprintf("%d", slip.LeavesBreakup[k]))
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var snapshotHeaders = []string{
	"Employee ID", "Employee Name", "Designation", "Working Days", "Present Days",
	"Paid Leaves", "Unpaid Leaves", "Gross Salary", "Deduction", "Net Salary", "Status", "Error",
}

// RenderSnapshotXLSX writes one row per saved slip.
func RenderSnapshotXLSX(s SnapshotResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%s-%d", s.Month, s.Year)
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})

	for i, h := range snapshotHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(snapshotHeaders), 1)
	f.SetCellStyle(sheet, "A1", last, headerStyle)
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "C", 22)

	for r, e := range s.Slips {
		values := []any{
			e.EmployeeID, e.EmployeeName, e.Designation, e.TotalWorkingDays, e.PresentDays,
			e.PaidLeaves, e.UnpaidLeaves, e.GrossSalary, e.DeductionAmount, e.NetSalary, e.Status, e.ErrorMessage,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
