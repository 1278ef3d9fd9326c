package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog-backend/internal/domains/author"
	"blog-backend/pkg/jwt"
)

// bcryptCost matches the work factor the platform has always used for
// author passwords.
const bcryptCost = 11

type authorService struct {
	repo       author.Repository
	jwtManager *jwt.Manager
}

func NewAuthorService(repo author.Repository, jwtManager *jwt.Manager) author.Service {
	return &authorService{
		repo:       repo,
		jwtManager: jwtManager,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *authorService) Register(ctx context.Context, req author.RegisterRequest) (uuid.UUID, error) {
	if err := req.Validate(); err != nil {
		return uuid.Nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return uuid.Nil, author.ErrEmailAlreadyExists
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}
	hash := string(passwordHash)

	now := time.Now()
	newAuthor := &author.Author{
		ID:           uuid.New(),
		Name:         req.Name,
		Surname:      req.Surname,
		Email:        req.Email,
		PasswordHash: &hash,
		DateOfBirth:  stringPtr(req.DateOfBirth),
		Avatar:       stringPtr(req.Avatar),
		Role:         author.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.repo.Create(ctx, newAuthor)
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

func (s *authorService) Login(ctx context.Context, req author.LoginRequest) (*author.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, author.ErrAuthorNotFound) {
			// Unknown email and wrong password must be indistinguishable, so
			// this path returns the same error the hash mismatch below does.
			return nil, author.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find author by email: %w", err)
	}

	if a.PasswordHash == nil {
		// Google-created account with no local password.
		return nil, author.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, author.ErrInvalidCredentials
	}

	return s.issueToken(a)
}

func (s *authorService) LoginWithGoogle(ctx context.Context, profile author.GoogleProfile) (*author.LoginResponse, error) {
	a, err := s.repo.FindByEmail(ctx, profile.Email)
	if err != nil {
		if !errors.Is(err, author.ErrAuthorNotFound) {
			return nil, fmt.Errorf("find author by email: %w", err)
		}

		// First Google login: create the account without a password hash.
		now := time.Now()
		newAuthor := &author.Author{
			ID:        uuid.New(),
			Name:      profile.GivenName,
			Surname:   profile.FamilyName,
			Email:     profile.Email,
			Avatar:    stringPtr(profile.Picture),
			Role:      author.RoleUser,
			GoogleID:  &profile.Sub,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := s.repo.Create(ctx, newAuthor); err != nil {
			return nil, fmt.Errorf("create google author: %w", err)
		}
		a = newAuthor
	}

	return s.issueToken(a)
}

func (s *authorService) issueToken(a *author.Author) (*author.LoginResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(a.ID.String(), a.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &author.LoginResponse{AccessToken: accessToken}, nil
}

// ========================================
// DIRECTORY CRUD
// ========================================

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*author.AuthorDTO, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto := a.ToDTO()
	return &dto, nil
}

func (s *authorService) List(ctx context.Context, limit, skip int) (*author.AuthorPage, error) {
	authors, total, err := s.repo.List(ctx, limit, skip)
	if err != nil {
		return nil, err
	}

	dtos := make([]author.AuthorDTO, 0, len(authors))
	for _, a := range authors {
		dtos = append(dtos, a.ToDTO())
	}

	return &author.AuthorPage{Authors: dtos, Total: total}, nil
}

func (s *authorService) Update(ctx context.Context, id uuid.UUID, req author.UpdateAuthorRequest) (*author.AuthorDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Patch fields win; everything else keeps its current value.
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Surname != nil {
		a.Surname = *req.Surname
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	if req.DateOfBirth != nil {
		a.DateOfBirth = req.DateOfBirth
	}
	if req.Avatar != nil {
		a.Avatar = req.Avatar
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	dto := a.ToDTO()
	return &dto, nil
}

func (s *authorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
