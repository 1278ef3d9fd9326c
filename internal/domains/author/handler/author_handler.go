package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost/query"
	"blog-backend/internal/shared/response"
	"blog-backend/pkg/logger"
)

const oauthStateCookie = "oauth_state"

// GoogleProvider is the slice of the OAuth flow the handler needs.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (author.GoogleProfile, error)
}

type AuthorHandler struct {
	service     author.Service
	google      GoogleProvider
	frontendURL string
}

func NewAuthorHandler(svc author.Service, google GoogleProvider, frontendURL string) *AuthorHandler {
	return &AuthorHandler{
		service:     svc,
		google:      google,
		frontendURL: frontendURL,
	}
}

// ========== POST /v1/authors/register ==========
func (h *AuthorHandler) Register(c *gin.Context) {
	var req author.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	id, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, author.RegisterResponse{ID: id})
}

// ========== POST /v1/authors/login ==========
func (h *AuthorHandler) Login(c *gin.Context) {
	var req author.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// ========== GET /v1/authors/googleLogin ==========
// Sends the browser to Google's consent screen. The random state goes into a
// short-lived cookie and is checked on the way back.
func (h *AuthorHandler) GoogleLogin(c *gin.Context) {
	state := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 300, "/", "", false, true)

	c.Redirect(http.StatusTemporaryRedirect, h.google.AuthCodeURL(state))
}

// ========== GET /v1/authors/googleRedirect ==========
// Google's callback: verify state, exchange the code, log the author in and
// hand the token to the frontend on the redirect URL.
func (h *AuthorHandler) GoogleRedirect(c *gin.Context) {
	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		response.Unauthorized(c, "oauth state mismatch")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "missing authorization code")
		return
	}

	profile, err := h.google.FetchProfile(c.Request.Context(), code)
	if err != nil {
		logger.Error("google profile fetch failed", err)
		response.Unauthorized(c, "google sign-in failed")
		return
	}

	resp, err := h.service.LoginWithGoogle(c.Request.Context(), profile)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/Bearer?accessToken="+resp.AccessToken)
}

// ========== GET /v1/authors ==========
func (h *AuthorHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", query.DefaultLimit)
	skip := parseIntQuery(c, "skip", 0)

	page, err := h.service.List(c.Request.Context(), limit, skip)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

// ========== GET /v1/authors/:id ==========
func (h *AuthorHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	dto, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// ========== PUT /v1/authors/:id ==========
func (h *AuthorHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	var req author.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dto, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// ========== DELETE /v1/authors/:id ==========
func (h *AuthorHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AuthorHandler) handleError(c *gin.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", verrs)
	case errors.Is(err, author.ErrInvalidCredentials), errors.Is(err, author.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, author.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, author.ErrAuthorNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, author.ErrEmailAlreadyExists):
		response.Conflict(c, err.Error())
	default:
		logger.Error("author handler error", err)
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
