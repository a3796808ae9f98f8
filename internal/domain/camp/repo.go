package camp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence interface for camps and their doctor
// assignments.
type Repository interface {
	Create(ctx context.Context, c *Camp) error
	GetByID(ctx context.Context, id uuid.UUID) (*Camp, error)
	Update(ctx context.Context, c *Camp) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Camp, int, error)
	SlotTaken(ctx context.Context, location string, date time.Time, startTime string, excludeID uuid.UUID) (bool, error)

	SetDoctors(ctx context.Context, campID uuid.UUID, doctorIDs []uuid.UUID) error
	Doctors(ctx context.Context, campID uuid.UUID) ([]uuid.UUID, error)
}

// Filter narrows camp listings. When is one of upcoming, past, or month,
// compared against Now.
type Filter struct {
	When   string
	Status string
	Now    time.Time
}
