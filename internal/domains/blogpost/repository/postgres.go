package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-backend/internal/domains/author"
	"blog-backend/internal/domains/blogpost"
	"blog-backend/internal/domains/blogpost/query"
	"blog-backend/pkg/cache"
)

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository returns the Postgres implementation of blogpost.Repository.
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) blogpost.Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

const postColumns = `
	id, category, title, cover, read_time_value, read_time_unit,
	content, created_at, updated_at
`

// sortColumns maps the translator's sort fields onto real columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"category":  "category",
}

func scanPost(row pgx.Row) (*blogpost.Post, error) {
	var p blogpost.Post
	err := row.Scan(
		&p.ID,
		&p.Category,
		&p.Title,
		&p.Cover,
		&p.ReadTime.Value,
		&p.ReadTime.Unit,
		&p.Content,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ========================================
// POST CRUD
// ========================================

// Create inserts the post and its owner set in one statement so a failure
// leaves nothing behind.
func (r *postgresRepository) Create(ctx context.Context, p *blogpost.Post, authorIDs []uuid.UUID) (uuid.UUID, error) {
	stmt := `
		WITH new_post AS (
			INSERT INTO blog_posts (
				id, category, title, cover, read_time_value, read_time_unit,
				content, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		)
		INSERT INTO post_authors (post_id, author_id, position)
		SELECT new_post.id, a.id, a.ord - 1
		FROM new_post, unnest($10::uuid[]) WITH ORDINALITY AS a(id, ord)
	`

	_, err := r.pool.Exec(ctx, stmt,
		p.ID,
		p.Category,
		p.Title,
		p.Cover,
		p.ReadTime.Value,
		p.ReadTime.Unit,
		p.Content,
		p.CreatedAt,
		p.UpdatedAt,
		authorIDs,
	)
	if err != nil {
		// 23503 = foreign_key_violation on post_authors.author_id
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return uuid.Nil, author.ErrAuthorNotFound
		}
		return uuid.Nil, fmt.Errorf("create post: %w", err)
	}

	return p.ID, nil
}

// FindByID reads through the cache; mutations invalidate the entry.
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*blogpost.Post, error) {
	cacheKey := fmt.Sprintf("post:%s", id.String())

	var cached blogpost.Post
	found, err := r.cache.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		return &cached, nil
	}

	stmt := `SELECT ` + postColumns + ` FROM blog_posts WHERE id = $1`

	p, err := scanPost(r.pool.QueryRow(ctx, stmt, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blogpost.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post by id: %w", err)
	}

	if err := r.populate(ctx, []*blogpost.Post{p}); err != nil {
		return nil, err
	}

	_ = r.cache.Set(ctx, cacheKey, p, 15*time.Minute)

	return p, nil
}

func (r *postgresRepository) List(ctx context.Context, q query.ListQuery) ([]*blogpost.Post, int, error) {
	where, args, err := buildWhere(q.Criteria)
	if err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC"
	if len(q.Sort) > 0 {
		var parts []string
		for _, sf := range q.Sort {
			col := sortColumns[sf.Field]
			dir := "ASC"
			if sf.Desc {
				dir = "DESC"
			}
			parts = append(parts, col+" "+dir)
		}
		orderBy = strings.Join(parts, ", ")
	}

	stmt := fmt.Sprintf(
		`SELECT %s FROM blog_posts %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		postColumns, where, orderBy, len(args)+1, len(args)+2,
	)

	rows, err := r.pool.Query(ctx, stmt, append(args, q.Limit, q.Skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	countStmt := `SELECT COUNT(*) FROM blog_posts ` + where
	if err := r.pool.QueryRow(ctx, countStmt, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	if err := r.populate(ctx, posts); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postgresRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, skip int) ([]*blogpost.Post, int, error) {
	stmt := `
		SELECT ` + postColumns + `
		FROM blog_posts
		WHERE EXISTS (
			SELECT 1 FROM post_authors
			WHERE post_id = blog_posts.id AND author_id = $1
		)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, stmt, authorID, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts by author: %w", err)
	}
	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM post_authors WHERE author_id = $1`, authorID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count posts by author: %w", err)
	}

	if err := r.populate(ctx, posts); err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postgresRepository) Update(ctx context.Context, p *blogpost.Post) error {
	stmt := `
		UPDATE blog_posts
		SET category = $2,
			title = $3,
			read_time_value = $4,
			read_time_unit = $5,
			content = $6,
			updated_at = $7
		WHERE id = $1
	`

	p.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, stmt,
		p.ID,
		p.Category,
		p.Title,
		p.ReadTime.Value,
		p.ReadTime.Unit,
		p.Content,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return blogpost.ErrPostNotFound
	}

	r.invalidate(ctx, p.ID)

	return nil
}

func (r *postgresRepository) SetCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	result, err := r.pool.Exec(ctx,
		`UPDATE blog_posts SET cover = $2, updated_at = NOW() WHERE id = $1`,
		id, coverURL,
	)
	if err != nil {
		return fmt.Errorf("set post cover: %w", err)
	}
	if result.RowsAffected() == 0 {
		return blogpost.ErrPostNotFound
	}

	r.invalidate(ctx, id)

	return nil
}

// Delete removes the post; comments, owner links and likes go with it via
// ON DELETE CASCADE.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if result.RowsAffected() == 0 {
		return blogpost.ErrPostNotFound
	}

	r.invalidate(ctx, id)

	return nil
}

// ========================================
// COMMENTS
// ========================================

func (r *postgresRepository) AddComment(ctx context.Context, postID uuid.UUID, c *blogpost.Comment) error {
	stmt := `
		INSERT INTO post_comments (id, post_id, comment, rating, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, stmt,
		c.ID,
		postID,
		c.Comment,
		c.Rating,
		c.Author,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return blogpost.ErrPostNotFound
		}
		return fmt.Errorf("add comment: %w", err)
	}

	c.PostID = postID

	r.invalidate(ctx, postID)

	return nil
}

const commentColumns = `id, post_id, comment, rating, author, created_at, updated_at`

func scanComment(row pgx.Row) (*blogpost.Comment, error) {
	var c blogpost.Comment
	err := row.Scan(
		&c.ID,
		&c.PostID,
		&c.Comment,
		&c.Rating,
		&c.Author,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepository) ListComments(ctx context.Context, postID uuid.UUID) ([]blogpost.Comment, error) {
	if err := r.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	stmt := `
		SELECT ` + commentColumns + `
		FROM post_comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, stmt, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []blogpost.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return comments, nil
}

func (r *postgresRepository) GetComment(ctx context.Context, postID, commentID uuid.UUID) (*blogpost.Comment, error) {
	stmt := `SELECT ` + commentColumns + ` FROM post_comments WHERE post_id = $1 AND id = $2`

	c, err := scanComment(r.pool.QueryRow(ctx, stmt, postID, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if perr := r.requirePost(ctx, postID); perr != nil {
				return nil, perr
			}
			return nil, blogpost.ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}

	return c, nil
}

func (r *postgresRepository) UpdateComment(ctx context.Context, c *blogpost.Comment) error {
	stmt := `
		UPDATE post_comments
		SET comment = $3,
			rating = $4,
			author = $5,
			updated_at = $6
		WHERE post_id = $1 AND id = $2
	`

	c.UpdatedAt = time.Now()

	result, err := r.pool.Exec(ctx, stmt,
		c.PostID,
		c.ID,
		c.Comment,
		c.Rating,
		c.Author,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if result.RowsAffected() == 0 {
		if perr := r.requirePost(ctx, c.PostID); perr != nil {
			return perr
		}
		return blogpost.ErrCommentNotFound
	}

	r.invalidate(ctx, c.PostID)

	return nil
}

// DeleteComment is idempotent on the comment id but still reports a missing
// parent post.
func (r *postgresRepository) DeleteComment(ctx context.Context, postID, commentID uuid.UUID) error {
	if err := r.requirePost(ctx, postID); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx,
		`DELETE FROM post_comments WHERE post_id = $1 AND id = $2`,
		postID, commentID,
	)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	r.invalidate(ctx, postID)

	return nil
}

// ========================================
// LIKES
// ========================================

// ToggleLike flips membership of authorID in the post's like set with a
// single statement, so two concurrent toggles cannot corrupt the set.
func (r *postgresRepository) ToggleLike(ctx context.Context, postID, authorID uuid.UUID) ([]uuid.UUID, error) {
	if err := r.requirePost(ctx, postID); err != nil {
		return nil, err
	}

	stmt := `
		WITH removed AS (
			DELETE FROM post_likes
			WHERE post_id = $1 AND author_id = $2
			RETURNING author_id
		)
		INSERT INTO post_likes (post_id, author_id)
		SELECT $1, $2
		WHERE NOT EXISTS (SELECT 1 FROM removed)
	`

	if _, err := r.pool.Exec(ctx, stmt, postID, authorID); err != nil {
		if mapped := mapToggleLikeError(err); mapped != nil {
			return nil, mapped
		}
	}

	r.invalidate(ctx, postID)

	return r.likeSet(ctx, postID)
}

// mapToggleLikeError classifies toggle failures. A unique violation means a
// concurrent toggle by the same author inserted the row first; the set already
// holds the id, so the toggle lands in the liked state and is not an error.
func mapToggleLikeError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return nil
		case "23503":
			if pgErr.ConstraintName == "post_likes_author_id_fkey" {
				return author.ErrAuthorNotFound
			}
			return blogpost.ErrPostNotFound
		}
	}
	return fmt.Errorf("toggle like: %w", err)
}

func (r *postgresRepository) likeSet(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT author_id FROM post_likes WHERE post_id = $1 ORDER BY created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}
	defer rows.Close()

	likes := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load likes: %w", err)
	}

	return likes, nil
}

// ========================================
// HELPERS
// ========================================

func collectPosts(rows pgx.Rows) ([]*blogpost.Post, error) {
	defer rows.Close()

	var posts []*blogpost.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read posts: %w", err)
	}

	return posts, nil
}

// buildWhere renders the translator's criteria as a WHERE clause. The
// translator has already whitelisted fields and operators.
func buildWhere(criteria []query.Condition) (string, []interface{}, error) {
	if len(criteria) == 0 {
		return "", nil, nil
	}

	ops := map[query.Op]string{
		query.OpEq:  "=",
		query.OpGt:  ">",
		query.OpGte: ">=",
		query.OpLt:  "<",
		query.OpLte: "<=",
	}

	var clauses []string
	var args []interface{}

	for _, c := range criteria {
		switch c.Field {
		case "category":
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("category = $%d", len(args)))
		case "title":
			args = append(args, c.Value)
			clauses = append(clauses, fmt.Sprintf("title = $%d", len(args)))
		case "author":
			id, err := uuid.Parse(c.Value)
			if err != nil {
				return "", nil, fmt.Errorf("invalid author filter %q", c.Value)
			}
			args = append(args, id)
			clauses = append(clauses, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM post_authors WHERE post_id = blog_posts.id AND author_id = $%d)",
				len(args),
			))
		case "createdAt":
			ts, err := time.Parse(time.RFC3339, c.Value)
			if err != nil {
				return "", nil, fmt.Errorf("invalid createdAt filter %q", c.Value)
			}
			args = append(args, ts)
			clauses = append(clauses, fmt.Sprintf("created_at %s $%d", ops[c.Op], len(args)))
		}
	}

	return "WHERE " + strings.Join(clauses, " AND "), args, nil
}

// populate fills the owner set, comments and like set of each post with one
// round trip per relation.
func (r *postgresRepository) populate(ctx context.Context, posts []*blogpost.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	byID := make(map[uuid.UUID]*blogpost.Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Authors = []blogpost.AuthorRef{}
		p.Comments = []blogpost.Comment{}
		p.Likes = []uuid.UUID{}
	}

	authorRows, err := r.pool.Query(ctx, `
		SELECT pa.post_id, a.id, a.name, a.surname, a.avatar
		FROM post_authors pa
		JOIN authors a ON a.id = pa.author_id
		WHERE pa.post_id = ANY($1)
		ORDER BY pa.post_id, pa.position ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load post authors: %w", err)
	}
	defer authorRows.Close()
	for authorRows.Next() {
		var postID uuid.UUID
		var ref blogpost.AuthorRef
		if err := authorRows.Scan(&postID, &ref.ID, &ref.Name, &ref.Surname, &ref.Avatar); err != nil {
			return fmt.Errorf("scan post author: %w", err)
		}
		byID[postID].Authors = append(byID[postID].Authors, ref)
	}
	if err := authorRows.Err(); err != nil {
		return fmt.Errorf("load post authors: %w", err)
	}

	commentRows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY post_id, created_at ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load comments: %w", err)
	}
	defer commentRows.Close()
	for commentRows.Next() {
		c, err := scanComment(commentRows)
		if err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}
		byID[c.PostID].Comments = append(byID[c.PostID].Comments, *c)
	}
	if err := commentRows.Err(); err != nil {
		return fmt.Errorf("load comments: %w", err)
	}

	likeRows, err := r.pool.Query(ctx, `
		SELECT post_id, author_id
		FROM post_likes
		WHERE post_id = ANY($1)
		ORDER BY post_id, created_at ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("load likes: %w", err)
	}
	defer likeRows.Close()
	for likeRows.Next() {
		var postID, authorID uuid.UUID
		if err := likeRows.Scan(&postID, &authorID); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		byID[postID].Likes = append(byID[postID].Likes, authorID)
	}
	if err := likeRows.Err(); err != nil {
		return fmt.Errorf("load likes: %w", err)
	}

	return nil
}

func (r *postgresRepository) requirePost(ctx context.Context, postID uuid.UUID) error {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blog_posts WHERE id = $1)`, postID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return blogpost.ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) invalidate(ctx context.Context, postID uuid.UUID) {
	_ = r.cache.Delete(ctx, fmt.Sprintf("post:%s", postID.String()))
}
