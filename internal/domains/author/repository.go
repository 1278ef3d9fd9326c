package author

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the author data-access contract.
type Repository interface {
	Create(ctx context.Context, a *Author) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Author, error)
	FindByEmail(ctx context.Context, email string) (*Author, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, skip int) ([]*Author, int, error)
	Update(ctx context.Context, a *Author) error
	Delete(ctx context.Context, id uuid.UUID) error
}
