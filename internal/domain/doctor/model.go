package doctor

import (
	"time"

	"github.com/google/uuid"
)

// HospitalTypes lists the accepted hospital categories.
var HospitalTypes = []string{"government", "private", "charitable"}

// Doctor is a medical officer who can be assigned to health camps.
type Doctor struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	Name            string      `db:"name" json:"name"`
	Specialization  string      `db:"specialization" json:"specialization"`
	PhoneNumber     string      `db:"phone_number" json:"phone_number"`
	Email           string      `db:"email" json:"email"`
	ExperienceYears int         `db:"experience_years" json:"experience_years"`
	Qualifications  []string    `db:"qualifications" json:"qualifications"`
	HospitalType    string      `db:"hospital_type" json:"hospital_type"`
	HospitalName    string      `db:"hospital_name" json:"hospital_name"`
	CampIDs         []uuid.UUID `db:"-" json:"camp_ids"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

func ValidHospitalType(t string) bool {
	for _, ht := range HospitalTypes {
		if ht == t {
			return true
		}
	}
	return false
}
