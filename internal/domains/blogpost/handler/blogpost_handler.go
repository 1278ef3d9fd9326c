package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost"
	"blog-backend/internal/domains/blogpost/query"
	"blog-backend/internal/shared/middleware"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/logger"
)

// maxCoverBytes caps multipart cover uploads before they reach the service.
const maxCoverBytes = 5 << 20

type BlogPostHandler struct {
	service blogpost.Service
}

func NewBlogPostHandler(svc blogpost.Service) *BlogPostHandler {
	return &BlogPostHandler{
		service: svc,
	}
}

// ========== POST /v1/blogPosts ==========
func (h *BlogPostHandler) Create(c *gin.Context) {
	creatorID, ok := middleware.ActingAuthorID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req blogpost.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.service.Create(c.Request.Context(), creatorID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, blogpost.CreatePostResponse{ID: id})
}

// ========== GET /v1/blogPosts ==========
// Supports filtering (category, title, author, createdAt ranges), projection
// via fields=, sort=, and skip/limit pagination with navigation links.
func (h *BlogPostHandler) List(c *gin.Context) {
	q, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	page, err := h.service.List(c.Request.Context(), q, c.Request.URL.Path)
	if err != nil {
		h.handleError(c, err)
		return
	}

	if len(q.Fields) > 0 {
		projected := make([]interface{}, 0, len(page.Posts))
		for _, p := range page.Posts {
			projected = append(projected, blogpost.Project(p, q.Fields))
		}
		response.Success(c, http.StatusOK, gin.H{
			"posts":         projected,
			"total":         page.Total,
			"numberOfPages": page.NumberOfPages,
			"links":         page.Links,
		})
		return
	}

	response.Success(c, http.StatusOK, page)
}

// ========== GET /v1/blogPosts/me/stories ==========
func (h *BlogPostHandler) MyStories(c *gin.Context) {
	authorID, ok := middleware.ActingAuthorID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	limit := parseIntQuery(c, "limit", query.DefaultLimit)
	skip := parseIntQuery(c, "skip", 0)

	page, err := h.service.MyStories(c.Request.Context(), authorID, limit, skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

// ========== GET /v1/blogPosts/:id ==========
func (h *BlogPostHandler) GetByID(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	post, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, post)
}

// ========== PUT /v1/blogPosts/:id ==========
func (h *BlogPostHandler) Update(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	var req blogpost.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.service.Update(c.Request.Context(), middleware.ActingAuthor(c), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, post)
}

// ========== DELETE /v1/blogPosts/:id ==========
func (h *BlogPostHandler) Delete(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.ActingAuthor(c), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ========== POST /v1/blogPosts/:id/uploadCover ==========
func (h *BlogPostHandler) UploadCover(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("cover")
	if err != nil {
		response.BadRequest(c, "cover file is required")
		return
	}
	if file.Size > maxCoverBytes {
		response.PayloadTooLarge(c, "cover exceeds 5MB")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "cannot read cover file")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxCoverBytes+1))
	if err != nil {
		response.BadRequest(c, "cannot read cover file")
		return
	}
	if len(data) > maxCoverBytes {
		response.PayloadTooLarge(c, "cover exceeds 5MB")
		return
	}

	url, err := h.service.UploadCover(
		c.Request.Context(),
		middleware.ActingAuthor(c),
		id,
		data,
		file.Header.Get("Content-Type"),
	)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, blogpost.UploadCoverResponse{Cover: url})
}

// ========== GET /v1/blogPosts/:id/pdf ==========
// Streams the post as a PDF attachment.
func (h *BlogPostHandler) ExportPDF(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.RenderPDF(c.Request.Context(), id, &buf); err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+id.String()+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ========== POST /v1/blogPosts/:id/comments ==========
func (h *BlogPostHandler) AddComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	var req blogpost.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.service.AddComment(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, post)
}

// ========== GET /v1/blogPosts/:id/comments ==========
func (h *BlogPostHandler) ListComments(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	comments, err := h.service.ListComments(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, comments)
}

// ========== GET /v1/blogPosts/:id/comments/:commentId ==========
func (h *BlogPostHandler) GetComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	commentID, ok := h.commentID(c)
	if !ok {
		return
	}

	comment, err := h.service.GetComment(c.Request.Context(), id, commentID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// ========== PUT /v1/blogPosts/:id/comments/:commentId ==========
func (h *BlogPostHandler) UpdateComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	commentID, ok := h.commentID(c)
	if !ok {
		return
	}

	var req blogpost.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	comment, err := h.service.UpdateComment(c.Request.Context(), id, commentID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, comment)
}

// ========== DELETE /v1/blogPosts/:id/comments/:commentId ==========
func (h *BlogPostHandler) DeleteComment(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}
	commentID, ok := h.commentID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, commentID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ========== POST /v1/blogPosts/:id/likes ==========
// Public toggle; the liking author comes from the body and must exist.
func (h *BlogPostHandler) ToggleLike(c *gin.Context) {
	id, ok := h.postID(c)
	if !ok {
		return
	}

	var req blogpost.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.AuthorID == uuid.Nil {
		response.BadRequest(c, "authorId is required")
		return
	}

	result, err := h.service.ToggleLike(c.Request.Context(), id, req.AuthorID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *BlogPostHandler) postID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid post id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BlogPostHandler) commentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.BadRequest(c, "invalid comment id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *BlogPostHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verrs)
	case errors.Is(err, blogpost.ErrInvalidImage):
		response.BadRequest(c, err.Error())
	case errors.Is(err, blogpost.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, blogpost.ErrPostNotFound),
		errors.Is(err, blogpost.ErrCommentNotFound),
		errors.Is(err, author.ErrAuthorNotFound):
		response.NotFound(c, err.Error())
	default:
		logger.Error("blog post handler error", err)
		response.InternalServerError(c, "internal server error")
	}
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	if s := c.Query(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
