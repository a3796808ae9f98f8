package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for users and their relatives.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmailAndRole(ctx context.Context, email, role string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*User, int, error)
	EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// Relatives
	AddRelative(ctx context.Context, r *Relative) error
	GetRelative(ctx context.Context, id uuid.UUID) (*Relative, error)
	ListRelatives(ctx context.Context, userID uuid.UUID) ([]*Relative, error)
	UpdateRelative(ctx context.Context, r *Relative) error
	DeleteRelative(ctx context.Context, id uuid.UUID) error
	RelativeLinkExists(ctx context.Context, userID, linkedUserID uuid.UUID) (bool, error)
}
