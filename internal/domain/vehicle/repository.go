package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines read access to vehicle listings. The reservation
// engine only ever reads vehicles; listing management lives elsewhere.
type Repository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
}
