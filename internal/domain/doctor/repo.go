package doctor

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence interface for doctors.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Doctor, int, error)
	EmailExists(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	CampIDs(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
