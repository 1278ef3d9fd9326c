package blogpost

import "blog-backend/internal/domains/author"

// CanMutate reports whether actor may update or delete post: actor must be a
// member of the post's owner set, or an admin.
//
// Comment and like mutations are deliberately not gated by this policy; any
// caller may interact with them (see the route definitions).
func CanMutate(post *Post, actor *author.Author) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	for _, ref := range post.Authors {
		if ref.ID == actor.ID {
			return true
		}
	}
	return false
}
