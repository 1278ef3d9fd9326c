package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost"
	"blog-backend/internal/domains/blogpost/query"
)

// ========================================
// FAKES
// ========================================

type fakePostRepository struct {
	posts map[uuid.UUID]*blogpost.Post
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: map[uuid.UUID]*blogpost.Post{}}
}

func (f *fakePostRepository) Create(ctx context.Context, p *blogpost.Post, authorIDs []uuid.UUID) (uuid.UUID, error) {
	cp := *p
	cp.Authors = make([]blogpost.AuthorRef, 0, len(authorIDs))
	for _, id := range authorIDs {
		cp.Authors = append(cp.Authors, blogpost.AuthorRef{ID: id})
	}
	cp.Comments = []blogpost.Comment{}
	cp.Likes = []uuid.UUID{}
	f.posts[p.ID] = &cp
	return p.ID, nil
}

func (f *fakePostRepository) FindByID(ctx context.Context, id uuid.UUID) (*blogpost.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepository) List(ctx context.Context, q query.ListQuery) ([]*blogpost.Post, int, error) {
	var out []*blogpost.Post
	for _, p := range f.posts {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(f.posts), nil
}

func (f *fakePostRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]*blogpost.Post, int, error) {
	var out []*blogpost.Post
	for _, p := range f.posts {
		for _, ref := range p.Authors {
			if ref.ID == authorID {
				cp := *p
				out = append(out, &cp)
				break
			}
		}
	}
	return out, len(out), nil
}

func (f *fakePostRepository) Update(ctx context.Context, p *blogpost.Post) error {
	stored, ok := f.posts[p.ID]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	cp := *p
	cp.Authors = stored.Authors
	cp.Comments = stored.Comments
	cp.Likes = stored.Likes
	f.posts[p.ID] = &cp
	return nil
}

func (f *fakePostRepository) SetCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	p, ok := f.posts[id]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	p.Cover = &coverURL
	return nil
}

func (f *fakePostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.posts[id]; !ok {
		return blogpost.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepository) AddComment(ctx context.Context, postID uuid.UUID, c *blogpost.Comment) error {
	p, ok := f.posts[postID]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	c.PostID = postID
	p.Comments = append(p.Comments, *c)
	return nil
}

func (f *fakePostRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]blogpost.Comment, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	return append([]blogpost.Comment{}, p.Comments...), nil
}

func (f *fakePostRepository) GetComment(ctx context.Context, postID, commentID uuid.UUID) (*blogpost.Comment, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	for _, c := range p.Comments {
		if c.ID == commentID {
			cp := c
			return &cp, nil
		}
	}
	return nil, blogpost.ErrCommentNotFound
}

func (f *fakePostRepository) UpdateComment(ctx context.Context, c *blogpost.Comment) error {
	p, ok := f.posts[c.PostID]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	for i := range p.Comments {
		if p.Comments[i].ID == c.ID {
			p.Comments[i] = *c
			return nil
		}
	}
	return blogpost.ErrCommentNotFound
}

func (f *fakePostRepository) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	p, ok := f.posts[postID]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	// absent comment id is fine
	return nil
}

func (f *fakePostRepository) ToggleLike(ctx context.Context, postID, authorID uuid.UUID) ([]uuid.UUID, error) {
	p, ok := f.posts[postID]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	for i, id := range p.Likes {
		if id == authorID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return append([]uuid.UUID{}, p.Likes...), nil
		}
	}
	p.Likes = append(p.Likes, authorID)
	return append([]uuid.UUID{}, p.Likes...), nil
}

type fakeAuthorRepository struct {
	known map[uuid.UUID]*author.Author
}

func (f *fakeAuthorRepository) Create(ctx context.Context, a *author.Author) (uuid.UUID, error) {
	f.known[a.ID] = a
	return a.ID, nil
}

func (f *fakeAuthorRepository) FindByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	a, ok := f.known[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	return a, nil
}

func (f *fakeAuthorRepository) FindByEmail(ctx context.Context, email string) (*author.Author, error) {
	return nil, author.ErrAuthorNotFound
}

func (f *fakeAuthorRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (f *fakeAuthorRepository) List(ctx context.Context, limit, skip int) ([]*author.Author, int, error) {
	return nil, 0, nil
}

func (f *fakeAuthorRepository) Update(ctx context.Context, a *author.Author) error { return nil }

func (f *fakeAuthorRepository) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakeStorage struct {
	objects map[string][]byte
	deleted []string
}

func (f *fakeStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[key] = data
	return "https://storage.local/" + key, nil
}

func (f *fakeStorage) DeleteByPrefix(ctx context.Context, prefix string) error {
	f.deleted = append(f.deleted, prefix)
	return nil
}

type fakeValidator struct {
	err error
}

func (f *fakeValidator) ValidateImage(data []byte) error { return f.err }

type fakeRenderer struct{}

func (f *fakeRenderer) Render(p *blogpost.Post, w io.Writer) error {
	_, err := fmt.Fprintf(w, "%%PDF %s", p.Title)
	return err
}

type fakeEnqueuer struct {
	enqueued []string
}

func (f *fakeEnqueuer) EnqueueCoverProcess(ctx context.Context, postID uuid.UUID, key string) error {
	f.enqueued = append(f.enqueued, key)
	return nil
}

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc      blogpost.Service
	repo     *fakePostRepository
	authors  *fakeAuthorRepository
	storage  *fakeStorage
	enqueuer *fakeEnqueuer

	owner *author.Author
	other *author.Author
	admin *author.Author
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakePostRepository(),
		authors:  &fakeAuthorRepository{known: map[uuid.UUID]*author.Author{}},
		storage:  &fakeStorage{},
		enqueuer: &fakeEnqueuer{},
	}

	f.owner = &author.Author{ID: uuid.New(), Role: author.RoleUser}
	f.other = &author.Author{ID: uuid.New(), Role: author.RoleUser}
	f.admin = &author.Author{ID: uuid.New(), Role: author.RoleAdmin}
	for _, a := range []*author.Author{f.owner, f.other, f.admin} {
		f.authors.known[a.ID] = a
	}

	f.svc = NewBlogPostService(f.repo, f.authors, f.storage, &fakeValidator{}, &fakeRenderer{}, f.enqueuer)

	return f
}

func validCreateRequest() blogpost.CreatePostRequest {
	return blogpost.CreatePostRequest{
		Category: "tech",
		Title:    "On Analytical Engines",
		Content:  "body text",
		ReadTime: blogpost.ReadTime{Value: 5, Unit: "minutes"},
	}
}

func (f *fixture) createPost(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := f.svc.Create(context.Background(), f.owner.ID, validCreateRequest())
	require.NoError(t, err)
	return id
}

// ========================================
// TESTS
// ========================================

func TestCreate_CreatorJoinsOwnerSet(t *testing.T) {
	f := newFixture(t)

	req := validCreateRequest()
	req.Authors = []uuid.UUID{f.other.ID, f.owner.ID} // creator listed again

	id, err := f.svc.Create(context.Background(), f.owner.ID, req)
	require.NoError(t, err)

	post, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, post.Authors, 2, "duplicate creator id is dropped")
	assert.Equal(t, f.owner.ID, post.Authors[0].ID, "creator comes first")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	req := validCreateRequest()
	req.Title = ""

	_, err := f.svc.Create(context.Background(), f.owner.ID, req)
	assert.Error(t, err)
}

func TestUpdate_Policy(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	newTitle := "Revised"
	req := blogpost.UpdatePostRequest{Title: &newTitle}

	_, err := f.svc.Update(context.Background(), f.other, id, req)
	assert.ErrorIs(t, err, blogpost.ErrForbidden)

	post, err := f.svc.Update(context.Background(), f.owner, id, req)
	require.NoError(t, err)
	assert.Equal(t, "Revised", post.Title)

	post, err = f.svc.Update(context.Background(), f.admin, id, req)
	require.NoError(t, err)
	assert.Equal(t, "Revised", post.Title)
}

func TestUpdate_MissingPost(t *testing.T) {
	f := newFixture(t)

	newTitle := "x"
	_, err := f.svc.Update(context.Background(), f.owner, uuid.New(), blogpost.UpdatePostRequest{Title: &newTitle})
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)
}

func TestDelete_Policy(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	err := f.svc.Delete(context.Background(), f.other, id)
	assert.ErrorIs(t, err, blogpost.ErrForbidden)

	err = f.svc.Delete(context.Background(), f.owner, id)
	require.NoError(t, err)

	_, err = f.svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)

	require.Len(t, f.storage.deleted, 1, "cover objects cleaned up")
	assert.Contains(t, f.storage.deleted[0], id.String())
}

func TestCommentLifecycle(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	rating := 4
	post, err := f.svc.AddComment(context.Background(), id, blogpost.CommentRequest{
		Comment: "great read",
		Rating:  &rating,
		Author:  "a reader",
	})
	require.NoError(t, err)
	require.Len(t, post.Comments, 1)
	commentID := post.Comments[0].ID

	got, err := f.svc.GetComment(context.Background(), id, commentID)
	require.NoError(t, err)
	assert.Equal(t, "great read", got.Comment)

	newText := "even better on a second read"
	updated, err := f.svc.UpdateComment(context.Background(), id, commentID, blogpost.UpdateCommentRequest{
		Comment: &newText,
	})
	require.NoError(t, err)
	assert.Equal(t, newText, updated.Comment)
	require.NotNil(t, updated.Rating)
	assert.Equal(t, 4, *updated.Rating, "unpatched fields survive")

	require.NoError(t, f.svc.DeleteComment(context.Background(), id, commentID))

	// deleting again is a no-op, not an error
	require.NoError(t, f.svc.DeleteComment(context.Background(), id, commentID))

	_, err = f.svc.GetComment(context.Background(), id, commentID)
	assert.ErrorIs(t, err, blogpost.ErrCommentNotFound)
}

func TestComment_RatingBounds(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	for _, rating := range []int{0, 6} {
		r := rating
		_, err := f.svc.AddComment(context.Background(), id, blogpost.CommentRequest{
			Comment: "x",
			Rating:  &r,
		})
		assert.Error(t, err, "rating %d", rating)
	}
}

func TestComment_MissingPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddComment(context.Background(), uuid.New(), blogpost.CommentRequest{Comment: "x"})
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)

	err = f.svc.DeleteComment(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)
}

func TestToggleLike_SelfInverse(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	result, err := f.svc.ToggleLike(context.Background(), id, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Count)
	assert.Contains(t, result.Likes, f.other.ID)

	result, err = f.svc.ToggleLike(context.Background(), id, f.other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Count)
	assert.NotContains(t, result.Likes, f.other.ID)
}

func TestToggleLike_UnknownAuthor(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	_, err := f.svc.ToggleLike(context.Background(), id, uuid.New())
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

func TestUploadCover(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	url, err := f.svc.UploadCover(context.Background(), f.owner, id, []byte("fake-jpeg"), "image/jpeg")
	require.NoError(t, err)
	assert.Contains(t, url, id.String())

	post, err := f.svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, post.Cover)
	assert.Equal(t, url, *post.Cover)

	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Contains(t, f.enqueuer.enqueued[0], "original")
}

func TestUploadCover_Forbidden(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	_, err := f.svc.UploadCover(context.Background(), f.other, id, []byte("x"), "image/jpeg")
	assert.ErrorIs(t, err, blogpost.ErrForbidden)
	assert.Empty(t, f.enqueuer.enqueued)
}

func TestUploadCover_InvalidImage(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	f.svc = NewBlogPostService(
		f.repo, f.authors, f.storage,
		&fakeValidator{err: errors.New("not an image")},
		&fakeRenderer{}, f.enqueuer,
	)

	_, err := f.svc.UploadCover(context.Background(), f.owner, id, []byte("junk"), "image/jpeg")
	assert.ErrorIs(t, err, blogpost.ErrInvalidImage)
}

func TestRenderPDF(t *testing.T) {
	f := newFixture(t)
	id := f.createPost(t)

	var buf bytes.Buffer
	require.NoError(t, f.svc.RenderPDF(context.Background(), id, &buf))
	assert.Contains(t, buf.String(), "Analytical Engines")

	err := f.svc.RenderPDF(context.Background(), uuid.New(), &buf)
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)
}

func TestMyStories(t *testing.T) {
	f := newFixture(t)
	f.createPost(t)
	f.createPost(t)

	page, err := f.svc.MyStories(context.Background(), f.owner.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, 1, page.NumberOfPages)

	page, err = f.svc.MyStories(context.Background(), f.other.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Empty(t, page.Posts)
}
