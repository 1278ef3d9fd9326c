package blogpost

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blog-backend/internal/domains/blogpost/query"
)

// ========================================
// REQUEST DTOs
// ========================================

type CreatePostRequest struct {
	Category string      `json:"category" binding:"required"`
	Title    string      `json:"title" binding:"required"`
	Cover    string      `json:"cover,omitempty"`
	ReadTime ReadTime    `json:"readTime"`
	Content  string      `json:"content" binding:"required"`
	Authors  []uuid.UUID `json:"authors,omitempty"` // co-authors; the creator is always added
}

func (r CreatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Category, validation.Required.Error("category is required")),
		validation.Field(&r.Title, validation.Required.Error("title is required")),
		validation.Field(&r.Content, validation.Required.Error("content is required")),
		validation.Field(&r.ReadTime, validation.By(func(interface{}) error {
			return r.ReadTime.validate()
		})),
	)
}

func (rt ReadTime) validate() error {
	return validation.ValidateStruct(&rt,
		validation.Field(&rt.Value, validation.Required, validation.Min(1)),
		validation.Field(&rt.Unit, validation.Required.Error("readTime.unit is required")),
	)
}

// UpdatePostRequest is a partial update; nil fields keep their current value.
type UpdatePostRequest struct {
	Category *string   `json:"category,omitempty"`
	Title    *string   `json:"title,omitempty"`
	ReadTime *ReadTime `json:"readTime,omitempty"`
	Content  *string   `json:"content,omitempty"`
}

func (r UpdatePostRequest) Validate() error {
	if r.ReadTime != nil {
		if err := r.ReadTime.validate(); err != nil {
			return err
		}
	}
	return nil
}

type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
	Rating  *int   `json:"rating,omitempty"`
	Author  string `json:"author,omitempty"`
}

func (r CommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Comment, validation.Required.Error("comment is required")),
		validation.Field(&r.Rating,
			validation.When(r.Rating != nil, validation.Min(1), validation.Max(5)),
		),
	)
}

// UpdateCommentRequest merges over the existing comment; patch fields win.
type UpdateCommentRequest struct {
	Comment *string `json:"comment,omitempty"`
	Rating  *int    `json:"rating,omitempty"`
	Author  *string `json:"author,omitempty"`
}

func (r UpdateCommentRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rating,
			validation.When(r.Rating != nil, validation.Min(1), validation.Max(5)),
		),
	)
}

type ToggleLikeRequest struct {
	AuthorID uuid.UUID `json:"authorId" binding:"required"`
}

// ========================================
// RESPONSE DTOs
// ========================================

type CreatePostResponse struct {
	ID uuid.UUID `json:"id"`
}

// LikeResult is the like set after a toggle, with its size.
type LikeResult struct {
	Likes []uuid.UUID `json:"likes"`
	Count int         `json:"count"`
}

type UploadCoverResponse struct {
	Cover string `json:"cover"`
}

// PostPage is one page of a post listing plus pagination metadata.
type PostPage struct {
	Posts         []*Post         `json:"posts"`
	Total         int             `json:"total"`
	NumberOfPages int             `json:"numberOfPages"`
	Links         query.PageLinks `json:"links"`
}

// Project reduces a post to the requested projection fields. An empty field
// list returns the post unchanged.
func Project(p *Post, fields []string) interface{} {
	if len(fields) == 0 {
		return p
	}

	full := map[string]interface{}{
		"id":        p.ID,
		"category":  p.Category,
		"title":     p.Title,
		"cover":     p.Cover,
		"readTime":  p.ReadTime,
		"authors":   p.Authors,
		"content":   p.Content,
		"comments":  p.Comments,
		"likes":     p.Likes,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}

	out := map[string]interface{}{"id": p.ID} // id is always present
	for _, f := range fields {
		if v, ok := full[f]; ok {
			out[f] = v
		}
	}
	return out
}
