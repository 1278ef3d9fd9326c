package author

import (
	"context"

	"github.com/google/uuid"
)

// Service is the author business-logic contract: registration, login (local
// and Google), and directory CRUD.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (uuid.UUID, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	// LoginWithGoogle finds the author by the profile email or creates one
	// without a password hash, then issues the same token Login does.
	LoginWithGoogle(ctx context.Context, profile GoogleProfile) (*LoginResponse, error)

	GetByID(ctx context.Context, id uuid.UUID) (*AuthorDTO, error)
	List(ctx context.Context, limit, skip int) (*AuthorPage, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateAuthorRequest) (*AuthorDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
