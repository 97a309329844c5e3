package assessment

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores assessment results. Implementations must only ever insert.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByUser(ctx context.Context, userID, moduleType string, limit, offset int) ([]*Record, int, error)
}
