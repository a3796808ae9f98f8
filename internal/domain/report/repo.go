package report

import (
	"context"

	"github.com/google/uuid"
)

// Query narrows the record listing. Search matches patient name, phone, and
// service fields case-insensitively.
type Query struct {
	Search      string
	PatientType string
	ServiceType string
}

// Repository is the persistence interface for service records and walk-in
// outsiders.
type Repository interface {
	CreateOutsider(ctx context.Context, o *Outsider) error
	GetOutsider(ctx context.Context, id uuid.UUID) (*Outsider, error)

	CreateRecord(ctx context.Context, rec *ServiceRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*ServiceRecord, error)
	UpdateRecord(ctx context.Context, rec *ServiceRecord) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientType string, patientID uuid.UUID) ([]*ServiceRecord, error)

	Find(ctx context.Context, q Query, limit, offset int) ([]*ServiceRecord, int, error)
	Stats(ctx context.Context, q Query) (*Statistics, error)

	PatientExists(ctx context.Context, patientType string, id uuid.UUID) (bool, error)
}
