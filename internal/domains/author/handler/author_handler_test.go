package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/shared/response"
)

type fakeAuthorService struct {
	registerID  uuid.UUID
	registerErr error
	loginResp   *author.LoginResponse
	loginErr    error
}

func (f *fakeAuthorService) Register(ctx context.Context, req author.RegisterRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}
	return f.registerID, f.registerErr
}

func (f *fakeAuthorService) Login(ctx context.Context, req author.LoginRequest) (*author.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthorService) LoginWithGoogle(ctx context.Context, profile author.GoogleProfile) (*author.LoginResponse, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthorService) GetByID(ctx context.Context, id uuid.UUID) (*author.AuthorDTO, error) {
	return nil, author.ErrAuthorNotFound
}

func (f *fakeAuthorService) List(ctx context.Context, limit, skip int) (*author.AuthorPage, error) {
	return &author.AuthorPage{Authors: []author.AuthorDTO{}}, nil
}

func (f *fakeAuthorService) Update(ctx context.Context, id uuid.UUID, req author.UpdateAuthorRequest) (*author.AuthorDTO, error) {
	return nil, author.ErrAuthorNotFound
}

func (f *fakeAuthorService) Delete(ctx context.Context, id uuid.UUID) error {
	return author.ErrAuthorNotFound
}

func setupRouter(svc author.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthorHandler(svc, nil, "http://localhost:3000")

	r := gin.New()
	r.POST("/api/v1/authors/register", h.Register)
	r.POST("/api/v1/authors/login", h.Login)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	id := uuid.New()
	r := setupRouter(&fakeAuthorService{registerID: id})

	w := postJSON(t, r, "/api/v1/authors/register", author.RegisterRequest{
		Name:     "Ada",
		Surname:  "Lovelace",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestRegisterEndpoint_ValidationError(t *testing.T) {
	r := setupRouter(&fakeAuthorService{})

	w := postJSON(t, r, "/api/v1/authors/register", author.RegisterRequest{
		Name:     "Ada",
		Surname:  "Lovelace",
		Email:    "not-an-email",
		Password: "correct-horse",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	r := setupRouter(&fakeAuthorService{registerErr: author.ErrEmailAlreadyExists})

	w := postJSON(t, r, "/api/v1/authors/register", author.RegisterRequest{
		Name:     "Ada",
		Surname:  "Lovelace",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := setupRouter(&fakeAuthorService{
		loginResp: &author.LoginResponse{AccessToken: "token-123"},
	})

	w := postJSON(t, r, "/api/v1/authors/login", author.LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse",
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "token-123")
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	r := setupRouter(&fakeAuthorService{loginErr: author.ErrInvalidCredentials})

	w := postJSON(t, r, "/api/v1/authors/login", author.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
