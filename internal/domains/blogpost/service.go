package blogpost

import (
	"context"
	"io"

	"github.com/google/uuid"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost/query"
)

// Service is the post business-logic contract. Mutating post operations take
// the acting author so the access policy can be applied; comment and like
// operations deliberately do not.
type Service interface {
	Create(ctx context.Context, creatorID uuid.UUID, req CreatePostRequest) (uuid.UUID, error)
	List(ctx context.Context, q query.ListQuery, basePath string) (*PostPage, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Post, error)
	Update(ctx context.Context, actor *author.Author, id uuid.UUID, req UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, actor *author.Author, id uuid.UUID) error
	MyStories(ctx context.Context, authorID uuid.UUID, limit, skip int) (*PostPage, error)

	AddComment(ctx context.Context, postID uuid.UUID, req CommentRequest) (*Post, error)
	ListComments(ctx context.Context, postID uuid.UUID) ([]Comment, error)
	GetComment(ctx context.Context, postID, commentID uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, postID, commentID uuid.UUID, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error

	ToggleLike(ctx context.Context, postID, authorID uuid.UUID) (*LikeResult, error)

	UploadCover(ctx context.Context, actor *author.Author, postID uuid.UUID, data []byte, contentType string) (string, error)
	RenderPDF(ctx context.Context, postID uuid.UUID, w io.Writer) error
}

// CoverStorage is the narrow contract the service holds on the image host.
type CoverStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// CoverValidator screens uploaded images before they reach storage.
type CoverValidator interface {
	ValidateImage(data []byte) error
}

// PDFRenderer streams a rendering of the post.
type PDFRenderer interface {
	Render(p *Post, w io.Writer) error
}

// TaskEnqueuer hands long-running work (cover variants) to the background worker.
type TaskEnqueuer interface {
	EnqueueCoverProcess(ctx context.Context, postID uuid.UUID, key string) error
}
