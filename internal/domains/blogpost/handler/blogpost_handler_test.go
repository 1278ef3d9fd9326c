package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost"
	"blog-backend/internal/domains/blogpost/query"
	"blog-backend/internal/shared/middleware"
)

// fakePostService is an in-memory blogpost.Service. It applies the real
// mutation policy so the handler's status mapping can be exercised end to end.
type fakePostService struct {
	posts map[uuid.UUID]*blogpost.Post
}

func newFakePostService() *fakePostService {
	return &fakePostService{posts: map[uuid.UUID]*blogpost.Post{}}
}

func (f *fakePostService) Create(ctx context.Context, creatorID uuid.UUID, req blogpost.CreatePostRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	p := &blogpost.Post{
		ID:        uuid.New(),
		Category:  req.Category,
		Title:     req.Title,
		ReadTime:  req.ReadTime,
		Content:   req.Content,
		Authors:   []blogpost.AuthorRef{{ID: creatorID, Name: "Ada", Surname: "Lovelace"}},
		Comments:  []blogpost.Comment{},
		Likes:     []uuid.UUID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.posts[p.ID] = p
	return p.ID, nil
}

func (f *fakePostService) List(ctx context.Context, q query.ListQuery, basePath string) (*blogpost.PostPage, error) {
	return &blogpost.PostPage{Posts: []*blogpost.Post{}}, nil
}

func (f *fakePostService) GetByID(ctx context.Context, id uuid.UUID) (*blogpost.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	return p, nil
}

func (f *fakePostService) Update(ctx context.Context, actor *author.Author, id uuid.UUID, req blogpost.UpdatePostRequest) (*blogpost.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, blogpost.ErrPostNotFound
	}
	if !blogpost.CanMutate(p, actor) {
		return nil, blogpost.ErrForbidden
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	return p, nil
}

func (f *fakePostService) Delete(ctx context.Context, actor *author.Author, id uuid.UUID) error {
	p, ok := f.posts[id]
	if !ok {
		return blogpost.ErrPostNotFound
	}
	if !blogpost.CanMutate(p, actor) {
		return blogpost.ErrForbidden
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostService) MyStories(ctx context.Context, authorID uuid.UUID, limit, skip int) (*blogpost.PostPage, error) {
	return &blogpost.PostPage{Posts: []*blogpost.Post{}}, nil
}

func (f *fakePostService) AddComment(ctx context.Context, postID uuid.UUID, req blogpost.CommentRequest) (*blogpost.Post, error) {
	return f.GetByID(ctx, postID)
}

func (f *fakePostService) ListComments(ctx context.Context, postID uuid.UUID) ([]blogpost.Comment, error) {
	p, err := f.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return p.Comments, nil
}

func (f *fakePostService) GetComment(ctx context.Context, postID, commentID uuid.UUID) (*blogpost.Comment, error) {
	return nil, blogpost.ErrCommentNotFound
}

func (f *fakePostService) UpdateComment(ctx context.Context, postID, commentID uuid.UUID, req blogpost.UpdateCommentRequest) (*blogpost.Comment, error) {
	return nil, blogpost.ErrCommentNotFound
}

func (f *fakePostService) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	return blogpost.ErrCommentNotFound
}

func (f *fakePostService) ToggleLike(ctx context.Context, postID, authorID uuid.UUID) (*blogpost.LikeResult, error) {
	if _, err := f.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return &blogpost.LikeResult{Likes: []uuid.UUID{authorID}, Count: 1}, nil
}

func (f *fakePostService) UploadCover(ctx context.Context, actor *author.Author, postID uuid.UUID, data []byte, contentType string) (string, error) {
	return "", blogpost.ErrPostNotFound
}

func (f *fakePostService) RenderPDF(ctx context.Context, postID uuid.UUID, w io.Writer) error {
	return blogpost.ErrPostNotFound
}

// actingAs simulates AuthMiddleware for a known author.
func actingAs(a *author.Author) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.WithActingAuthor(c, a)
		c.Next()
	}
}

func setupPostRouter(svc blogpost.Service, actor *author.Author) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewBlogPostHandler(svc)

	r := gin.New()
	posts := r.Group("/api/v1/blogPosts")

	authed := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if actor == nil {
			return handlers
		}
		return append([]gin.HandlerFunc{actingAs(actor)}, handlers...)
	}

	posts.POST("", authed(h.Create)...)
	posts.GET("/:id", h.GetByID)
	posts.PUT("/:id", authed(h.Update)...)
	posts.DELETE("/:id", authed(h.Delete)...)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func testActor() *author.Author {
	return &author.Author{
		ID:      uuid.New(),
		Name:    "Ada",
		Surname: "Lovelace",
		Email:   "ada@example.com",
		Role:    author.RoleUser,
	}
}

func createBody() blogpost.CreatePostRequest {
	return blogpost.CreatePostRequest{
		Category: "tech",
		Title:    "On Analytical Engines",
		ReadTime: blogpost.ReadTime{Value: 5, Unit: "minutes"},
		Content:  "Lorem ipsum.",
	}
}

func TestCreatePostEndpoint(t *testing.T) {
	svc := newFakePostService()
	creator := testActor()
	r := setupPostRouter(svc, creator)

	w := doJSON(t, r, http.MethodPost, "/api/v1/blogPosts", createBody())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data blogpost.CreatePostResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.Data.ID)

	// The created post lists the creator in its owner set.
	w = doJSON(t, r, http.MethodGet, "/api/v1/blogPosts/"+resp.Data.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var getResp struct {
		Data blogpost.Post `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &getResp))
	require.Len(t, getResp.Data.Authors, 1)
	assert.Equal(t, creator.ID, getResp.Data.Authors[0].ID)
}

func TestCreatePostEndpoint_Unauthenticated(t *testing.T) {
	r := setupPostRouter(newFakePostService(), nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/blogPosts", createBody())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostEndpoint_ValidationError(t *testing.T) {
	r := setupPostRouter(newFakePostService(), testActor())

	body := createBody()
	body.ReadTime = blogpost.ReadTime{}

	w := doJSON(t, r, http.MethodPost, "/api/v1/blogPosts", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePostEndpoint_NonOwnerForbidden(t *testing.T) {
	svc := newFakePostService()
	owner := testActor()

	id, err := svc.Create(context.Background(), owner.ID, createBody())
	require.NoError(t, err)

	stranger := testActor()
	r := setupPostRouter(svc, stranger)

	newTitle := "Hijacked"
	w := doJSON(t, r, http.MethodPut, "/api/v1/blogPosts/"+id.String(), blogpost.UpdatePostRequest{Title: &newTitle})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeletePostEndpoint_NonOwnerForbidden(t *testing.T) {
	svc := newFakePostService()
	owner := testActor()

	id, err := svc.Create(context.Background(), owner.ID, createBody())
	require.NoError(t, err)

	stranger := testActor()
	r := setupPostRouter(svc, stranger)

	w := doJSON(t, r, http.MethodDelete, "/api/v1/blogPosts/"+id.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	_, err = svc.GetByID(context.Background(), id)
	assert.NoError(t, err, "post survives the rejected delete")
}

func TestDeletePostEndpoint_OwnerSucceeds(t *testing.T) {
	svc := newFakePostService()
	owner := testActor()

	id, err := svc.Create(context.Background(), owner.ID, createBody())
	require.NoError(t, err)

	r := setupPostRouter(svc, owner)

	w := doJSON(t, r, http.MethodDelete, "/api/v1/blogPosts/"+id.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	_, err = svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, blogpost.ErrPostNotFound)
}
