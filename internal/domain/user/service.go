package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/swasthya/swasthya/internal/platform/auth"
)

// ErrInvalidCredentials is returned for every failed login, whether the
// account does not exist or the password is wrong, so responses cannot be
// used to enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when the email is already registered.
var ErrEmailTaken = errors.New("email is already registered")

// ErrNotFound is returned when no patient matches the given id.
var ErrNotFound = errors.New("patient not found")

var (
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Service provides business logic for patient accounts, relatives, and login.
type Service struct {
	users Repository
}

func NewService(users Repository) *Service {
	return &Service{users: users}
}

// CreatePatient registers a patient account. When password is empty the
// default camp-desk password (name prefix + phone suffix) is derived. The
// stored password is always a bcrypt hash.
func (s *Service) CreatePatient(ctx context.Context, u *User, password string) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	if err := s.validate(ctx, u, uuid.Nil); err != nil {
		return err
	}
	if password == "" {
		password = auth.DefaultPassword(u.FullName(), u.PhoneNumber)
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash
	if u.HasAbhaID == "" {
		u.HasAbhaID = "no"
	}
	if u.HasAyushmanCard == "" {
		u.HasAyushmanCard = "no"
	}
	return s.users.Create(ctx, u)
}

// UpdatePatient replaces the stored fields with the supplied ones after
// re-validating. An empty password keeps the existing hash.
func (s *Service) UpdatePatient(ctx context.Context, u *User, password string) error {
	existing, err := s.users.GetByID(ctx, u.ID)
	if err != nil {
		return ErrNotFound
	}
	u.Role = existing.Role // role is fixed at creation
	if err := s.validate(ctx, u, u.ID); err != nil {
		return err
	}
	if password != "" {
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	} else {
		u.PasswordHash = existing.PasswordHash
	}
	if u.HasAbhaID == "" {
		u.HasAbhaID = existing.HasAbhaID
	}
	if u.HasAyushmanCard == "" {
		u.HasAyushmanCard = existing.HasAyushmanCard
	}
	return s.users.Update(ctx, u)
}

func (s *Service) validate(ctx context.Context, u *User, excludeID uuid.UUID) error {
	if u.FirstName == "" {
		return fmt.Errorf("name is required")
	}
	if !phonePattern.MatchString(u.PhoneNumber) {
		return fmt.Errorf("phone number must be exactly 10 digits")
	}
	if u.Email != nil && *u.Email != "" {
		if !emailPattern.MatchString(*u.Email) {
			return fmt.Errorf("invalid email format")
		}
		taken, err := s.users.EmailExists(ctx, *u.Email, excludeID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if taken {
			return ErrEmailTaken
		}
	}
	if u.DateOfBirth == nil {
		return fmt.Errorf("date of birth is required")
	}
	if u.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("date of birth cannot be in the future")
	}
	if u.Address == "" {
		return fmt.Errorf("address is required")
	}
	if u.Department == "" {
		return fmt.Errorf("department is required")
	}
	if !ValidRole(u.Role) {
		return fmt.Errorf("invalid role %q", u.Role)
	}
	if u.Gender != nil && *u.Gender != "" && !ValidGender(*u.Gender) {
		return fmt.Errorf("invalid gender %q", *u.Gender)
	}
	if u.BloodGroup != nil && *u.BloodGroup != "" && !ValidBloodGroup(*u.BloodGroup) {
		return fmt.Errorf("invalid blood group %q", *u.BloodGroup)
	}
	if u.FamilyMembers < 0 {
		return fmt.Errorf("family member count cannot be negative")
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func (s *Service) SearchPatients(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error) {
	return s.users.Search(ctx, params, limit, offset)
}

// AuthenticateByEmail verifies portal credentials, filtering by role so a
// citizen account can never log into the admin or doctor portal.
func (s *Service) AuthenticateByEmail(ctx context.Context, email, password, role string) (*User, error) {
	u, err := s.users.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// AuthenticateByPhone verifies citizen app credentials.
func (s *Service) AuthenticateByPhone(ctx context.Context, phone, password string) (*User, error) {
	u, err := s.users.GetByPhone(ctx, phone)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// AddRelative attaches a family member to a user, either linking an existing
// account or recording inline details. Linking the same account twice is
// rejected.
func (s *Service) AddRelative(ctx context.Context, rel *Relative) error {
	if rel.UserID == uuid.Nil {
		return fmt.Errorf("user_id is required")
	}
	if rel.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rel.Relationship == "" {
		return fmt.Errorf("relationship is required")
	}
	if rel.Gender != nil && *rel.Gender != "" && !ValidGender(*rel.Gender) {
		return fmt.Errorf("invalid gender %q", *rel.Gender)
	}
	if rel.BloodGroup != nil && *rel.BloodGroup != "" && !ValidBloodGroup(*rel.BloodGroup) {
		return fmt.Errorf("invalid blood group %q", *rel.BloodGroup)
	}
	if rel.LinkedUserID != nil {
		if _, err := s.users.GetByID(ctx, *rel.LinkedUserID); err != nil {
			return fmt.Errorf("linked account not found")
		}
		linked, err := s.users.RelativeLinkExists(ctx, rel.UserID, *rel.LinkedUserID)
		if err != nil {
			return fmt.Errorf("check relative link: %w", err)
		}
		if linked {
			return fmt.Errorf("this account is already linked as a relative")
		}
	}
	return s.users.AddRelative(ctx, rel)
}

func (s *Service) GetRelative(ctx context.Context, id uuid.UUID) (*Relative, error) {
	return s.users.GetRelative(ctx, id)
}

func (s *Service) ListRelatives(ctx context.Context, userID uuid.UUID) ([]*Relative, error) {
	return s.users.ListRelatives(ctx, userID)
}

func (s *Service) UpdateRelative(ctx context.Context, rel *Relative) error {
	if rel.Name == "" {
		return fmt.Errorf("name is required")
	}
	if rel.Relationship == "" {
		return fmt.Errorf("relationship is required")
	}
	return s.users.UpdateRelative(ctx, rel)
}

func (s *Service) RemoveRelative(ctx context.Context, id uuid.UUID) error {
	return s.users.DeleteRelative(ctx, id)
}
