package blogpost

import (
	"context"

	"github.com/google/uuid"

	"blog-backend/internal/domains/blogpost/query"
)

// Repository is the post data-access contract. Every mutation is a single
// SQL statement so the database's per-statement atomicity is the only
// concurrency control needed.
type Repository interface {
	Create(ctx context.Context, p *Post, authorIDs []uuid.UUID) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Post, error)
	List(ctx context.Context, q query.ListQuery) ([]*Post, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]*Post, int, error)
	Update(ctx context.Context, p *Post) error
	SetCover(ctx context.Context, id uuid.UUID, coverURL string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Comments are embedded in their parent post: all accessors are keyed by
	// the post id, and deleting the post removes them.
	AddComment(ctx context.Context, postID uuid.UUID, c *Comment) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error)
	GetComment(ctx context.Context, postID, commentID uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, c *Comment) error
	// DeleteComment fails only when the post is absent; removing an
	// already-absent comment id is idempotent.
	DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error

	// ToggleLike atomically adds authorID to the post's like set, or removes
	// it if already present, and returns the resulting set.
	ToggleLike(ctx context.Context, postID, authorID uuid.UUID) ([]uuid.UUID, error)
}
