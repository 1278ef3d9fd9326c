package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-backend/internal/domains/author"
	"blog-backend/pkg/cache"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository returns the Postgres implementation of author.Repository.
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) author.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const authorColumns = `
	id, name, surname, email, password_hash, date_of_birth,
	avatar, role, google_id, created_at, updated_at
`

func scanAuthor(row pgx.Row) (*author.Author, error) {
	var a author.Author
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Surname,
		&a.Email,
		&a.PasswordHash,
		&a.DateOfBirth,
		&a.Avatar,
		&a.Role,
		&a.GoogleID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) Create(ctx context.Context, a *author.Author) (uuid.UUID, error) {
	query := `
		INSERT INTO authors (
			id, name, surname, email, password_hash, date_of_birth,
			avatar, role, google_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		a.ID,
		a.Name,
		a.Surname,
		a.Email,
		a.PasswordHash,
		a.DateOfBirth,
		a.Avatar,
		a.Role,
		a.GoogleID,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&id)

	if err != nil {
		// 23505 = unique_violation on the email index
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, author.ErrEmailAlreadyExists
		}
		return uuid.Nil, fmt.Errorf("create author: %w", err)
	}

	return id, nil
}

// FindByID reads through the cache; mutations invalidate the entry.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*author.Author, error) {
	cacheKey := fmt.Sprintf("author:%s", id.String())

	var cached author.Author
	found, err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return &cached, nil
	}

	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	a, err := scanAuthor(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("find author by id: %w", err)
	}

	_ = r.cache.Set(ctx, cacheKey, a, 15*time.Minute)

	return a, nil
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*author.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE email = $1`

	a, err := scanAuthor(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, author.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("find author by email: %w", err)
	}

	return a, nil
}

func (r *postgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM authors WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) List(ctx context.Context, limit, skip int) ([]*author.Author, int, error) {
	query := `
		SELECT ` + authorColumns + `
		FROM authors
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []*author.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list authors: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count authors: %w", err)
	}

	return authors, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *author.Author) error {
	query := `
		UPDATE authors
		SET name = $2,
			surname = $3,
			email = $4,
			date_of_birth = $5,
			avatar = $6,
			updated_at = $7
		WHERE id = $1
	`

	a.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.Surname,
		a.Email,
		a.DateOfBirth,
		a.Avatar,
		a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return author.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update author: %w", err)
	}
	if result.RowsAffected() == 0 {
		return author.ErrAuthorNotFound
	}

	_ = r.cache.Delete(ctx, fmt.Sprintf("author:%s", a.ID.String()))

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete author: %w", err)
	}
	if result.RowsAffected() == 0 {
		return author.ErrAuthorNotFound
	}

	_ = r.cache.Delete(ctx, fmt.Sprintf("author:%s", id.String()))

	return nil
}
