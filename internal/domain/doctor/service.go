package doctor

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned when another doctor already uses the email.
var ErrEmailTaken = errors.New("a doctor with this email already exists")

// ErrNotFound is returned when no doctor matches the given id.
var ErrNotFound = errors.New("doctor not found")

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Service holds doctor business rules.
type Service struct {
	doctors Repository
}

func NewService(doctors Repository) *Service {
	return &Service{doctors: doctors}
}

func (s *Service) Create(ctx context.Context, d *Doctor) error {
	if err := s.validate(ctx, d, uuid.Nil); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	campIDs, err := s.doctors.CampIDs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load camp assignments: %w", err)
	}
	d.CampIDs = campIDs
	return d, nil
}

func (s *Service) Update(ctx context.Context, d *Doctor) error {
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return ErrNotFound
	}
	if err := s.validate(ctx, d, d.ID); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.doctors.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.Search(ctx, params, limit, offset)
}

func (s *Service) validate(ctx context.Context, d *Doctor, excludeID uuid.UUID) error {
	if d.Name == "" {
		return fmt.Errorf("name is required")
	}
	if d.Specialization == "" {
		return fmt.Errorf("specialization is required")
	}
	if !phonePattern.MatchString(d.PhoneNumber) {
		return fmt.Errorf("phone number must be exactly 10 digits")
	}
	if !emailPattern.MatchString(d.Email) {
		return fmt.Errorf("invalid email address")
	}
	if d.ExperienceYears < 0 {
		return fmt.Errorf("experience years cannot be negative")
	}
	if len(d.Qualifications) == 0 {
		return fmt.Errorf("at least one qualification is required")
	}
	if d.HospitalType != "" && !ValidHospitalType(d.HospitalType) {
		return fmt.Errorf("invalid hospital type %q", d.HospitalType)
	}
	if d.HospitalName == "" {
		return fmt.Errorf("hospital name is required")
	}
	taken, err := s.doctors.EmailExists(ctx, d.Email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}
