package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestGenerateExport(t *testing.T) {
	sev := SeverityHigh
	records := []*ServiceRecord{
		{
			PatientName:  "Rahul Kumar",
			PatientPhone: "9876543210",
			PatientType:  PatientEmployee,
			ServiceTypes: StringList{"blood test", "x-ray"},
			VisitDate:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
			DoctorName:   "Dr. Priya Sharma",
			HospitalName: "District Hospital Raipur",
			Findings:     "elevated sugar",
			IsNormal:     false,
			Severity:     &sev,
		},
	}

	data, err := GenerateExport(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Service Records", "A1")
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if got != "Patient Name" {
		t.Errorf("expected header cell, got %q", got)
	}

	name, _ := f.GetCellValue("Service Records", "A2")
	if name != "Rahul Kumar" {
		t.Errorf("expected patient name in row 2, got %q", name)
	}
	services, _ := f.GetCellValue("Service Records", "E2")
	if services != "blood test, x-ray" {
		t.Errorf("expected joined service types, got %q", services)
	}
	result, _ := f.GetCellValue("Service Records", "I2")
	if result != "Abnormal" {
		t.Errorf("expected Abnormal, got %q", result)
	}
}

func TestGenerateExport_Empty(t *testing.T) {
	data, err := GenerateExport(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected a workbook with header row")
	}
}
