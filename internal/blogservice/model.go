package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateSlug  = errors.New("duplicate slug")
	ErrAlreadyLiked   = errors.New("already liked")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// UniqueViolation is a helper function to check if the error is a unique constraint error.
func UniqueViolation(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

const blogColumns = `id, slug, title, content, excerpt, featured_image, author, tags, published, view_count, like_count, created_at, updated_at`

func scanBlog(row interface{ Scan(dest ...any) error }) (*Blog, error) {
	var b Blog
	err := row.Scan(&b.ID, &b.Slug, &b.Title, &b.Content, &b.Excerpt, &b.FeaturedImage, &b.Author, pq.Array(&b.Tags), &b.Published, &b.ViewCount, &b.LikeCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

func (m *BlogModel) insert(ctx context.Context, b *Blog, createdAt, updatedAt *time.Time) error {
	query := `
		INSERT INTO blogs (slug, title, content, excerpt, featured_image, author, tags, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, now()), COALESCE($10, now()))
		RETURNING id, view_count, like_count, created_at, updated_at`

	args := []any{
		b.Slug,
		b.Title,
		b.Content,
		b.Excerpt,
		b.FeaturedImage,
		b.Author,
		pq.Array(b.Tags),
		b.Published,
		createdAt,
		updatedAt,
	}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&b.ID, &b.ViewCount, &b.LikeCount, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		switch {
		case UniqueViolation(err, "blogs_slug_key"):
			return ErrDuplicateSlug
		default:
			return err
		}
	}

	return nil
}

// getBlogs returns blogs newest first. When publishedOnly is set, drafts
// are filtered out.
func (m *BlogModel) getBlogs(ctx context.Context, publishedOnly bool) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE published = true OR $1 = false
		ORDER BY created_at DESC`, blogColumns)

	rows, err := m.db.QueryContext(ctx, query, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

// getBlogBySlug only sees published posts: to public callers an
// unpublished slug is indistinguishable from a nonexistent one.
func (m *BlogModel) getBlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE slug = $1 AND published = true`, blogColumns)

	b, err := scanBlog(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return b, nil
}

func (m *BlogModel) getBlogById(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE id = $1`, blogColumns)

	b, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return b, nil
}

func (m *BlogModel) updateBlog(ctx context.Context, id uuid.UUID, req *UpdateBlogRequest) (*Blog, error) {
	query := fmt.Sprintf(`
		UPDATE blogs
		SET slug = COALESCE($1, slug),
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			excerpt = COALESCE($4, excerpt),
			featured_image = COALESCE($5, featured_image),
			author = COALESCE($6, author),
			tags = COALESCE($7, tags),
			published = COALESCE($8, published),
			updated_at = now()
		WHERE id = $9
		RETURNING %s`, blogColumns)

	args := []any{
		req.Slug,
		req.Title,
		req.Content,
		req.Excerpt,
		req.FeaturedImage,
		req.Author,
		pq.Array(req.Tags),
		req.Published,
		id,
	}

	b, err := scanBlog(m.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		case UniqueViolation(err, "blogs_slug_key"):
			return nil, ErrDuplicateSlug
		default:
			return nil, err
		}
	}

	return b, nil
}

func (m *BlogModel) deleteBlog(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

// incrementViewCount is a single store-side increment so concurrent
// requests cannot lose updates.
func (m *BlogModel) incrementViewCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE blogs
		SET view_count = view_count + 1
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func (m *BlogModel) likeExists(ctx context.Context, blogID uuid.UUID, ipAddress string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM likes
			WHERE blog_id = $1 AND ip_address = $2
		)`

	var exists bool
	err := m.db.QueryRowContext(ctx, query, blogID, ipAddress).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (m *BlogModel) insertLike(ctx context.Context, blogID uuid.UUID, ipAddress string) error {
	query := `
		INSERT INTO likes (blog_id, ip_address)
		VALUES ($1, $2)`

	_, err := m.db.ExecContext(ctx, query, blogID, ipAddress)
	if err != nil {
		switch {
		// The unique index is the backstop for the check-then-insert
		// race: a constraint hit means someone else got there first.
		case UniqueViolation(err, "likes_blog_id_ip_address_key"):
			return ErrAlreadyLiked
		case ForeignKeyError(err, "likes_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) incrementLikeCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE blogs
		SET like_count = like_count + 1
		WHERE id = $1`

	_, err := m.db.ExecContext(ctx, query, id)
	return err
}

// getComments returns only approved comments, oldest first. Unapproved
// comments are invisible to every caller.
func (m *BlogModel) getComments(ctx context.Context, blogID uuid.UUID) ([]Comment, error) {
	query := `
		SELECT id, blog_id, author_name, author_email, content, approved, created_at
		FROM comments
		WHERE blog_id = $1 AND approved = true
		ORDER BY created_at ASC`

	rows, err := m.db.QueryContext(ctx, query, blogID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		err := rows.Scan(&c.ID, &c.BlogID, &c.AuthorName, &c.AuthorEmail, &c.Content, &c.Approved, &c.CreatedAt)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (m *BlogModel) insertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (blog_id, author_name, author_email, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, approved, created_at`

	err := m.db.QueryRowContext(ctx, query, c.BlogID, c.AuthorName, c.AuthorEmail, c.Content).Scan(&c.ID, &c.Approved, &c.CreatedAt)
	if err != nil {
		switch {
		case ForeignKeyError(err, "comments_blog_id_fkey"):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

// getRelatedBlogs returns published posts sharing at least one tag with
// the given set, excluding the post itself.
func (m *BlogModel) getRelatedBlogs(ctx context.Context, tags []string, excludeID uuid.UUID, limit int) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE published = true AND id <> $1 AND tags && $2
		ORDER BY created_at DESC
		LIMIT $3`, blogColumns)

	rows, err := m.db.QueryContext(ctx, query, excludeID, pq.Array(tags), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}

func (m *BlogModel) searchBlogsByTitle(ctx context.Context, title string, limit, offset int) ([]Blog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs
		WHERE published = true AND title ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, blogColumns)

	rows, err := m.db.QueryContext(ctx, query, "%"+title+"%", limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return blogs, nil
}
