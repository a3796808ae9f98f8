package camp

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/swasthya/swasthya/internal/platform/db"
)

// ErrSlotTaken is returned when another camp already occupies the same
// location, date, and start time.
var ErrSlotTaken = errors.New("a camp is already scheduled at this location and time")

// ErrNotFound is returned when no camp matches the given id.
var ErrNotFound = errors.New("camp not found")

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// DoctorResolver reports whether a doctor id refers to a registered doctor.
// It decouples camp validation from the doctor package.
type DoctorResolver interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service holds camp scheduling rules. All "today" comparisons use the
// configured location, not the server's UTC clock, so a camp dated today is
// not rejected as past late in the local evening.
type Service struct {
	camps   Repository
	doctors DoctorResolver
	tx      db.TxRunner
	loc     *time.Location
}

func NewService(camps Repository, doctors DoctorResolver, tx db.TxRunner, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{camps: camps, doctors: doctors, tx: tx, loc: loc}
}

// calendarDate strips the time of day, keeping the civil date of t in its own
// location.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create validates the camp fully before the first write, then inserts the
// camp and its doctor assignments in one transaction.
func (s *Service) Create(ctx context.Context, c *Camp) error {
	if c.Status == "" {
		c.Status = StatusScheduled
	}
	if err := s.validate(ctx, c, uuid.Nil); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.camps.Create(ctx, c); err != nil {
			return err
		}
		return s.camps.SetDoctors(ctx, c.ID, c.ConductedBy)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Camp, error) {
	return s.camps.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *Camp) error {
	if _, err := s.camps.GetByID(ctx, c.ID); err != nil {
		return ErrNotFound
	}
	if err := s.validate(ctx, c, c.ID); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context) error {
		if err := s.camps.Update(ctx, c); err != nil {
			return err
		}
		return s.camps.SetDoctors(ctx, c.ID, c.ConductedBy)
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.camps.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Camp, int, error) {
	switch filter.When {
	case "", "upcoming", "past", "month":
	default:
		return nil, 0, fmt.Errorf("filter must be upcoming, past, or month")
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("invalid status %q", filter.Status)
	}
	if filter.Now.IsZero() {
		filter.Now = time.Now().In(s.loc)
	}
	return s.camps.List(ctx, filter, limit, offset)
}

func (s *Service) validate(ctx context.Context, c *Camp, excludeID uuid.UUID) error {
	if c.Location == "" {
		return fmt.Errorf("location is required")
	}
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	if c.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	today := calendarDate(time.Now().In(s.loc))
	if calendarDate(c.Date).Before(today) {
		return fmt.Errorf("date cannot be in the past")
	}
	if !timePattern.MatchString(c.StartTime) {
		return fmt.Errorf("start_time must be HH:MM")
	}
	if !timePattern.MatchString(c.EndTime) {
		return fmt.Errorf("end_time must be HH:MM")
	}
	if c.StartTime >= c.EndTime {
		return fmt.Errorf("start_time must be before end_time")
	}
	if c.BeneficiaryLimit <= 0 {
		return fmt.Errorf("beneficiary_limit must be greater than zero")
	}
	if !ValidStatus(c.Status) {
		return fmt.Errorf("invalid status %q", c.Status)
	}
	if len(c.ConductedBy) == 0 {
		return fmt.Errorf("at least one conducting doctor is required")
	}
	for _, doctorID := range c.ConductedBy {
		ok, err := s.doctors.Exists(ctx, doctorID)
		if err != nil {
			return fmt.Errorf("check doctor: %w", err)
		}
		if !ok {
			return fmt.Errorf("doctor %s not found", doctorID)
		}
	}
	taken, err := s.camps.SlotTaken(ctx, c.Location, c.Date, c.StartTime, excludeID)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return ErrSlotTaken
	}
	return nil
}
