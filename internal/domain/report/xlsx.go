package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"Patient Name",
	"Patient Phone",
	"Patient Type",
	"Visit Date",
	"Service Types",
	"Doctor",
	"Hospital",
	"Findings",
	"Result",
	"Severity",
	"BMI",
}

var exportColumnWidths = []float64{25, 15, 12, 14, 30, 20, 25, 40, 10, 10, 8}

// GenerateExport renders the records as an XLSX workbook with a styled
// header row.
func GenerateExport(records []*ServiceRecord) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Service Records"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for col, header := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("set header style: %w", err)
		}
	}

	for i := range exportHeader {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, exportColumnWidths[i]); err != nil {
			f.Close()
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for rowIdx, rec := range records {
		row := rowIdx + 2
		result := "Abnormal"
		if rec.IsNormal {
			result = "Normal"
		}
		severity := ""
		if rec.Severity != nil {
			severity = *rec.Severity
		}
		bmi := ""
		if rec.Vitals != nil && rec.Vitals.BMI != nil {
			bmi = fmt.Sprintf("%.1f", *rec.Vitals.BMI)
		}
		values := []interface{}{
			rec.PatientName,
			rec.PatientPhone,
			rec.PatientType,
			rec.VisitDate.Format("2006-01-02"),
			strings.Join(rec.ServiceTypes, ", "),
			rec.DoctorName,
			rec.HospitalName,
			rec.Findings,
			result,
			severity,
			bmi,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
