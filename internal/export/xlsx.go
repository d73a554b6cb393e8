// Package export builds XLSX workbooks for administrator downloads.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"classtrack/internal/attendance"
	"classtrack/internal/payment"
)

// AttendanceWorkbook renders attendance records as a spreadsheet.
func AttendanceWorkbook(records []attendance.Record) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Student", "Date", "Time", "Status", "Lesson"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, rec := range records {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.StudentName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.Date.Format("2006-01-02"))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.Time)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(rec.Status))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.LessonNumber)
	}
	return f, nil
}

// PaymentsWorkbook renders payments with their paid months as a
// spreadsheet.
func PaymentsWorkbook(payments []payment.Payment) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"Student", "Code", "Group", "Paid months", "Recorded"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, p := range payments {
		row := i + 2
		months := make([]string, len(p.Months))
		for j, m := range p.Months {
			months[j] = fmt.Sprintf("%d", m)
		}
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), p.StudentName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), p.StudentCode)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), p.Group)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), strings.Join(months, ", "))
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), p.CreatedAt.Format("2006-01-02"))
	}
	return f, nil
}
