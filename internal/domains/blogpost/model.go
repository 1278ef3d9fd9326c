package blogpost

import (
	"time"

	"github.com/google/uuid"
)

// Post is a blog entry. Authors is the ordered owner set and is never empty
// after creation; Likes has set semantics (one entry per author).
type Post struct {
	ID        uuid.UUID   `json:"id"`
	Category  string      `json:"category"`
	Title     string      `json:"title"`
	Cover     *string     `json:"cover,omitempty"`
	ReadTime  ReadTime    `json:"readTime"`
	Authors   []AuthorRef `json:"authors"`
	Content   string      `json:"content"`
	Comments  []Comment   `json:"comments"`
	Likes     []uuid.UUID `json:"likes"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type ReadTime struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// AuthorRef carries the display fields populated on a post's owner set.
type AuthorRef struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Surname string    `json:"surname"`
	Avatar  *string   `json:"avatar,omitempty"`
}

// Comment lives embedded in its parent post; it has no independent lifecycle.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"-"`
	Comment   string    `json:"comment"`
	Rating    *int      `json:"rating,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthorIDs returns the ids of the post's owner set.
func (p *Post) AuthorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Authors))
	for _, a := range p.Authors {
		ids = append(ids, a.ID)
	}
	return ids
}
