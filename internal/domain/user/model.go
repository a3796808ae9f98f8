package user

import (
	"time"

	"github.com/google/uuid"
)

// Roles assignable to an account. The role is fixed at creation; privileged
// logins always filter by it.
const (
	RoleUser   = "user"
	RoleDoctor = "doctor"
	RoleAdmin  = "admin"
)

// BloodGroups are the accepted blood group values.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}

// Genders are the accepted gender values.
var Genders = []string{"male", "female", "other"}

// User maps to the users table: citizens registered at camps, plus doctor and
// admin portal accounts. The password hash never serializes.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	FirstName       string     `db:"first_name" json:"first_name"`
	LastName        string     `db:"last_name" json:"last_name"`
	Email           *string    `db:"email" json:"email,omitempty"`
	PhoneNumber     string     `db:"phone_number" json:"phone_number"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	Role            string     `db:"role" json:"role"`
	DateOfBirth     *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender          *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup      *string    `db:"blood_group" json:"blood_group,omitempty"`
	Address         string     `db:"address" json:"address"`
	FamilyMembers   int        `db:"family_members" json:"family_members"`
	Department      string     `db:"department" json:"department"`
	HasAbhaID       string     `db:"has_abha_id" json:"has_abha_id"`
	HasAyushmanCard string     `db:"has_ayushman_card" json:"has_ayushman_card"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name for display and password derivation.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Relative maps to the relatives table: a family member of a registered user,
// either linked to that person's own account or described inline.
type Relative struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"user_id"`
	LinkedUserID *uuid.UUID `db:"linked_user_id" json:"linked_user_id,omitempty"`
	Name         string     `db:"name" json:"name"`
	Relationship string     `db:"relationship" json:"relationship"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	BloodGroup   *string    `db:"blood_group" json:"blood_group,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ValidBloodGroup reports whether bg is one of the eight accepted values.
func ValidBloodGroup(bg string) bool {
	for _, v := range BloodGroups {
		if v == bg {
			return true
		}
	}
	return false
}

// ValidGender reports whether g is an accepted gender value.
func ValidGender(g string) bool {
	for _, v := range Genders {
		if v == g {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is an accepted role.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleDoctor || r == RoleAdmin
}
