package blogpost

import "errors"

// Repository-level errors
var (
	ErrPostNotFound    = errors.New("blog post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// Service-level errors
var (
	ErrForbidden    = errors.New("forbidden: not an owner of this post")
	ErrInvalidImage = errors.New("invalid cover image")
)
