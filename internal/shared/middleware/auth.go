package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/jwt"
)

const (
	authorIDKey = "authorID"
	actorKey    = "actor"
)

// AuthMiddleware validates the bearer token and loads the acting author into
// the request context. The author is resolved against the directory so a
// token for a since-deleted account is rejected.
func AuthMiddleware(jwtManager *jwt.Manager, authors author.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		authorID, err := uuid.Parse(claims.AuthorID)
		if err != nil {
			response.Unauthorized(c, "invalid author id in token")
			c.Abort()
			return
		}

		actor, err := authors.FindByID(c.Request.Context(), authorID)
		if err != nil {
			response.Unauthorized(c, "unknown author")
			c.Abort()
			return
		}

		c.Set(authorIDKey, authorID)
		c.Set(actorKey, actor)

		c.Next()
	}
}

// WithActingAuthor primes the context the same way AuthMiddleware does.
func WithActingAuthor(c *gin.Context, a *author.Author) {
	c.Set(authorIDKey, a.ID)
	c.Set(actorKey, a)
}

// ActingAuthor returns the author loaded by AuthMiddleware, or nil on an
// unauthenticated route.
func ActingAuthor(c *gin.Context) *author.Author {
	v, exists := c.Get(actorKey)
	if !exists {
		return nil
	}
	actor, ok := v.(*author.Author)
	if !ok {
		return nil
	}
	return actor
}

// ActingAuthorID returns the authenticated author's id.
func ActingAuthorID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(authorIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
