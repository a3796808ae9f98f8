package report

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Patient types discriminate which table PatientID points into.
const (
	PatientEmployee = "employee"
	PatientRelative = "relative"
	PatientOutsider = "outsider"
)

var PatientTypes = []string{PatientEmployee, PatientRelative, PatientOutsider}

// Severity levels for abnormal findings.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

var Severities = []string{SeverityLow, SeverityMedium, SeverityHigh}

// StringList is a JSONB-backed list that also accepts legacy scalar values,
// turning them into a singleton list on read.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
			return nil
		}
		*s = StringList{single}
		return nil
	}
	// Legacy rows hold bare text that is not valid JSON at all.
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*s = nil
		return nil
	}
	*s = StringList{strings.Trim(raw, `"`)}
	return nil
}

// Vitals captures the measurements taken during a visit. BMI is derived,
// never accepted from the client.
type Vitals struct {
	BPSystolic  *int               `json:"bp_systolic,omitempty"`
	BPDiastolic *int               `json:"bp_diastolic,omitempty"`
	HeartRate   *int               `json:"heart_rate,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	WeightKg    *float64           `json:"weight_kg,omitempty"`
	HeightCm    *float64           `json:"height_cm,omitempty"`
	BMI         *float64           `json:"bmi,omitempty"`
	CustomTests map[string]string  `json:"custom_tests,omitempty"`
}

// DeriveBMI fills BMI from height and weight when both are present.
func (v *Vitals) DeriveBMI() {
	if v.WeightKg == nil || v.HeightCm == nil || *v.HeightCm <= 0 {
		v.BMI = nil
		return
	}
	meters := *v.HeightCm / 100
	bmi := math.Round(*v.WeightKg/(meters*meters)*10) / 10
	v.BMI = &bmi
}

// ServiceRecord is one service rendered to a patient during a camp visit.
// PatientType and PatientID form a tagged reference into the users,
// relatives, or outsiders table.
type ServiceRecord struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientType    string     `db:"patient_type" json:"patient_type"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientName    string     `db:"-" json:"patient_name,omitempty"`
	PatientPhone   string     `db:"-" json:"patient_phone,omitempty"`
	ServiceTypes   StringList `db:"service_types" json:"service_types"`
	ServiceDetails StringList `db:"service_details" json:"service_details"`
	VisitDate      time.Time  `db:"visit_date" json:"visit_date"`
	DoctorName     string     `db:"doctor_name" json:"doctor_name"`
	HospitalName   string     `db:"hospital_name" json:"hospital_name"`
	Findings       string     `db:"findings" json:"findings"`
	IsNormal       bool       `db:"is_normal" json:"is_normal"`
	Severity       *string    `db:"severity" json:"severity,omitempty"`
	Vitals         *Vitals    `db:"vitals" json:"vitals,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Outsider is a walk-in person with no employee account.
type Outsider struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Statistics summarizes a filtered set of service records.
type Statistics struct {
	TotalServices    int `json:"total_services"`
	EmployeeCount    int `json:"employee_count"`
	RelativeCount    int `json:"relative_count"`
	OutsiderCount    int `json:"outsider_count"`
	DistinctPatients int `json:"distinct_patients"`
}

var errInvalidPatientType = errors.New("patient_type must be employee, relative, or outsider")

func ValidPatientType(t string) bool {
	for _, pt := range PatientTypes {
		if pt == t {
			return true
		}
	}
	return false
}

func ValidSeverity(s string) bool {
	for _, sv := range Severities {
		if sv == s {
			return true
		}
	}
	return false
}
