package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/swasthya/swasthya/internal/platform/db"
)

// ErrNotFound is returned when no service record matches the given id.
var ErrNotFound = errors.New("service record not found")

// Service holds the service-record business rules.
type Service struct {
	records Repository
	tx      db.TxRunner
}

func NewService(records Repository, tx db.TxRunner) *Service {
	return &Service{records: records, tx: tx}
}

// CreateInput carries a new record plus optional inline outsider details.
// When the record targets an outsider without an id, the outsider row and
// the record are inserted in one transaction.
type CreateInput struct {
	Record   *ServiceRecord
	Outsider *Outsider
}

func (s *Service) Create(ctx context.Context, in CreateInput) error {
	rec := in.Record
	if err := s.validate(rec); err != nil {
		return err
	}

	newOutsider := rec.PatientType == PatientOutsider && rec.PatientID == uuid.Nil
	if newOutsider {
		if in.Outsider == nil || in.Outsider.Name == "" {
			return fmt.Errorf("outsider name is required")
		}
	} else {
		ok, err := s.records.PatientExists(ctx, rec.PatientType, rec.PatientID)
		if err != nil {
			return fmt.Errorf("check patient: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s %s not found", rec.PatientType, rec.PatientID)
		}
	}

	return s.tx(ctx, func(ctx context.Context) error {
		if newOutsider {
			if err := s.records.CreateOutsider(ctx, in.Outsider); err != nil {
				return err
			}
			rec.PatientID = in.Outsider.ID
		}
		return s.records.CreateRecord(ctx, rec)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ServiceRecord, error) {
	return s.records.GetRecord(ctx, id)
}

func (s *Service) Update(ctx context.Context, rec *ServiceRecord) error {
	existing, err := s.records.GetRecord(ctx, rec.ID)
	if err != nil {
		return ErrNotFound
	}
	// The patient reference is immutable once recorded.
	rec.PatientType = existing.PatientType
	rec.PatientID = existing.PatientID
	if err := s.validate(rec); err != nil {
		return err
	}
	return s.records.UpdateRecord(ctx, rec)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.DeleteRecord(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientType string, patientID uuid.UUID) ([]*ServiceRecord, error) {
	if !ValidPatientType(patientType) {
		return nil, errInvalidPatientType
	}
	return s.records.ListByPatient(ctx, patientType, patientID)
}

// Search returns one page of matching records together with aggregate
// statistics over the full filtered set.
func (s *Service) Search(ctx context.Context, q Query, limit, offset int) ([]*ServiceRecord, int, *Statistics, error) {
	if q.PatientType != "" && !ValidPatientType(q.PatientType) {
		return nil, 0, nil, errInvalidPatientType
	}
	items, total, err := s.records.Find(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, nil, err
	}
	stats, err := s.records.Stats(ctx, q)
	if err != nil {
		return nil, 0, nil, err
	}
	return items, total, stats, nil
}

// SearchAll returns every matching record, used by the XLSX export.
func (s *Service) SearchAll(ctx context.Context, q Query) ([]*ServiceRecord, error) {
	if q.PatientType != "" && !ValidPatientType(q.PatientType) {
		return nil, errInvalidPatientType
	}
	const batch = 500
	var all []*ServiceRecord
	for offset := 0; ; offset += batch {
		items, total, err := s.records.Find(ctx, q, batch, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(all) >= total || len(items) == 0 {
			return all, nil
		}
	}
}

func (s *Service) validate(rec *ServiceRecord) error {
	if !ValidPatientType(rec.PatientType) {
		return errInvalidPatientType
	}
	if rec.PatientType != PatientOutsider && rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if len(rec.ServiceTypes) == 0 {
		return fmt.Errorf("at least one service type is required")
	}
	if rec.VisitDate.IsZero() {
		rec.VisitDate = time.Now()
	}
	if rec.DoctorName == "" {
		return fmt.Errorf("doctor_name is required")
	}
	if !rec.IsNormal {
		if rec.Severity == nil || *rec.Severity == "" {
			return fmt.Errorf("severity is required for abnormal findings")
		}
		if !ValidSeverity(*rec.Severity) {
			return fmt.Errorf("severity must be low, medium, or high")
		}
	} else {
		rec.Severity = nil
	}
	if rec.Vitals != nil {
		rec.Vitals.DeriveBMI()
	}
	return nil
}
