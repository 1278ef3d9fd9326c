package blogpost

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"blog-backend/internal/domains/author"
)

func TestCanMutate(t *testing.T) {
	ownerID := uuid.New()
	coAuthorID := uuid.New()

	post := &Post{
		ID: uuid.New(),
		Authors: []AuthorRef{
			{ID: ownerID},
			{ID: coAuthorID},
		},
	}

	tests := []struct {
		name  string
		actor *author.Author
		want  bool
	}{
		{
			name:  "nil actor",
			actor: nil,
			want:  false,
		},
		{
			name:  "owner",
			actor: &author.Author{ID: ownerID, Role: author.RoleUser},
			want:  true,
		},
		{
			name:  "co-author",
			actor: &author.Author{ID: coAuthorID, Role: author.RoleUser},
			want:  true,
		},
		{
			name:  "unrelated author",
			actor: &author.Author{ID: uuid.New(), Role: author.RoleUser},
			want:  false,
		},
		{
			name:  "admin outside owner set",
			actor: &author.Author{ID: uuid.New(), Role: author.RoleAdmin},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMutate(post, tt.actor))
		})
	}
}
