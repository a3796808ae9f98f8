package camp

import (
	"time"

	"github.com/google/uuid"
)

// Camp statuses.
const (
	StatusScheduled = "scheduled"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled}

// Camp is a scheduled health camp at a location.
type Camp struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	Location         string      `db:"location" json:"location"`
	Address          string      `db:"address" json:"address"`
	Date             time.Time   `db:"date" json:"date"`
	StartTime        string      `db:"start_time" json:"start_time"`
	EndTime          string      `db:"end_time" json:"end_time"`
	BeneficiaryLimit int         `db:"beneficiary_limit" json:"beneficiary_limit"`
	ConductedBy      []uuid.UUID `db:"-" json:"conducted_by"`
	Status           string      `db:"status" json:"status"`
	CreatedBy        string      `db:"created_by" json:"created_by"`
	Description      string      `db:"description" json:"description"`
	Services         []string    `db:"services" json:"services"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}
