package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost"
	"blog-backend/internal/domains/blogpost/query"
	"blog-backend/pkg/logger"
)

type blogPostService struct {
	repo       blogpost.Repository
	authorRepo author.Repository
	storage    blogpost.CoverStorage
	validator  blogpost.CoverValidator
	renderer   blogpost.PDFRenderer
	tasks      blogpost.TaskEnqueuer
}

// NewBlogPostService wires the post service with its collaborators.
func NewBlogPostService(
	repo blogpost.Repository,
	authorRepo author.Repository,
	storage blogpost.CoverStorage,
	validator blogpost.CoverValidator,
	renderer blogpost.PDFRenderer,
	tasks blogpost.TaskEnqueuer,
) blogpost.Service {
	return &blogPostService{
		repo:       repo,
		authorRepo: authorRepo,
		storage:    storage,
		validator:  validator,
		renderer:   renderer,
		tasks:      tasks,
	}
}

// ========================================
// POST CRUD
// ========================================

// Create stores a new post. The creator always joins the owner set, ahead of
// any co-authors from the request; duplicates are dropped.
func (s *blogPostService) Create(ctx context.Context, creatorID uuid.UUID, req blogpost.CreatePostRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	ownerIDs := []uuid.UUID{creatorID}
	seen := map[uuid.UUID]bool{creatorID: true}
	for _, id := range req.Authors {
		if !seen[id] {
			seen[id] = true
			ownerIDs = append(ownerIDs, id)
		}
	}

	now := time.Now()
	post := &blogpost.Post{
		ID:        uuid.New(),
		Category:  req.Category,
		Title:     req.Title,
		ReadTime:  req.ReadTime,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Cover != "" {
		post.Cover = &req.Cover
	}

	id, err := s.repo.Create(ctx, post, ownerIDs)
	if err != nil {
		return uuid.Nil, err
	}

	logger.Info("blog post created", map[string]interface{}{
		"post_id":   id.String(),
		"author_id": creatorID.String(),
	})

	return id, nil
}

func (s *blogPostService) List(ctx context.Context, q query.ListQuery, basePath string) (*blogpost.PostPage, error) {
	posts, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*blogpost.Post{}
	}

	return &blogpost.PostPage{
		Posts:         posts,
		Total:         total,
		NumberOfPages: q.NumberOfPages(total),
		Links:         q.Links(basePath, total),
	}, nil
}

func (s *blogPostService) GetByID(ctx context.Context, id uuid.UUID) (*blogpost.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// Update applies the patch after the access policy passes; nil patch fields
// keep the current value.
func (s *blogPostService) Update(ctx context.Context, actor *author.Author, id uuid.UUID, req blogpost.UpdatePostRequest) (*blogpost.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !blogpost.CanMutate(post, actor) {
		return nil, blogpost.ErrForbidden
	}

	if req.Category != nil {
		post.Category = *req.Category
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.ReadTime != nil {
		post.ReadTime = *req.ReadTime
	}
	if req.Content != nil {
		post.Content = *req.Content
	}

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

// Delete removes the post and everything stored under its cover prefix.
func (s *blogPostService) Delete(ctx context.Context, actor *author.Author, id uuid.UUID) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !blogpost.CanMutate(post, actor) {
		return blogpost.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.storage.DeleteByPrefix(ctx, coverPrefix(id)); err != nil {
		logger.Error("failed to delete cover objects", err)
	}

	return nil
}

func (s *blogPostService) MyStories(ctx context.Context, authorID uuid.UUID, limit, skip int) (*blogpost.PostPage, error) {
	if limit < 1 {
		limit = query.DefaultLimit
	}
	if limit > query.MaxLimit {
		limit = query.MaxLimit
	}
	if skip < 0 {
		skip = 0
	}

	posts, total, err := s.repo.ListByAuthor(ctx, authorID, limit, skip)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*blogpost.Post{}
	}

	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}

	return &blogpost.PostPage{
		Posts:         posts,
		Total:         total,
		NumberOfPages: pages,
	}, nil
}

// ========================================
// COMMENTS
// ========================================

// AddComment appends a comment and returns the refreshed post.
func (s *blogPostService) AddComment(ctx context.Context, postID uuid.UUID, req blogpost.CommentRequest) (*blogpost.Post, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &blogpost.Comment{
		ID:        uuid.New(),
		Comment:   req.Comment,
		Rating:    req.Rating,
		Author:    req.Author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.AddComment(ctx, postID, c); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, postID)
}

func (s *blogPostService) ListComments(ctx context.Context, postID uuid.UUID) ([]blogpost.Comment, error) {
	return s.repo.ListComments(ctx, postID)
}

func (s *blogPostService) GetComment(ctx context.Context, postID, commentID uuid.UUID) (*blogpost.Comment, error) {
	return s.repo.GetComment(ctx, postID, commentID)
}

func (s *blogPostService) UpdateComment(ctx context.Context, postID, commentID uuid.UUID, req blogpost.UpdateCommentRequest) (*blogpost.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.repo.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}

	if req.Comment != nil {
		c.Comment = *req.Comment
	}
	if req.Rating != nil {
		c.Rating = req.Rating
	}
	if req.Author != nil {
		c.Author = *req.Author
	}

	if err := s.repo.UpdateComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *blogPostService) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return s.repo.DeleteComment(ctx, postID, commentID)
}

// ========================================
// LIKES
// ========================================

// ToggleLike verifies the liking author exists, then flips their membership
// in the like set. Toggling twice restores the original set.
func (s *blogPostService) ToggleLike(ctx context.Context, postID, authorID uuid.UUID) (*blogpost.LikeResult, error) {
	if _, err := s.authorRepo.FindByID(ctx, authorID); err != nil {
		return nil, err
	}

	likes, err := s.repo.ToggleLike(ctx, postID, authorID)
	if err != nil {
		return nil, err
	}

	return &blogpost.LikeResult{Likes: likes, Count: len(likes)}, nil
}

// ========================================
// COVER & EXPORT
// ========================================

// UploadCover stores the original image, records its URL on the post and
// queues variant generation for the worker.
func (s *blogPostService) UploadCover(ctx context.Context, actor *author.Author, postID uuid.UUID, data []byte, contentType string) (string, error) {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if !blogpost.CanMutate(post, actor) {
		return "", blogpost.ErrForbidden
	}

	if err := s.validator.ValidateImage(data); err != nil {
		return "", fmt.Errorf("%w: %s", blogpost.ErrInvalidImage, err.Error())
	}

	key := coverPrefix(postID) + "/original" + extensionFor(contentType)
	url, err := s.storage.Upload(ctx, key, data, contentType)
	if err != nil {
		return "", fmt.Errorf("upload cover: %w", err)
	}

	if err := s.repo.SetCover(ctx, postID, url); err != nil {
		return "", err
	}

	if err := s.tasks.EnqueueCoverProcess(ctx, postID, key); err != nil {
		// variants are best effort; the original is already live
		logger.Error("failed to enqueue cover processing", err)
	}

	return url, nil
}

func (s *blogPostService) RenderPDF(ctx context.Context, postID uuid.UUID, w io.Writer) error {
	post, err := s.repo.FindByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := s.renderer.Render(post, w); err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("render pdf: %w", err)
	}

	return nil
}

func coverPrefix(postID uuid.UUID) string {
	return "covers/" + postID.String()
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
