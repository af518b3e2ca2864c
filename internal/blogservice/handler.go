package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mapleroot/pressroom/internal/common"
	"github.com/mapleroot/pressroom/internal/markdown"
)

func NewBlogService(db *sql.DB, mb common.MessageProducer) *BlogService {
	return &BlogService{m: newBlogModel(db), mb: mb}
}

type CreateBlogRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage *string  `json:"featured_image"`
	Author        string   `json:"author"`
	Tags          []string `json:"tags"`
	Published     *bool    `json:"published"`

	// Set by the legacy content importer only, never by API callers.
	CreatedAt *time.Time `json:"-"`
	UpdatedAt *time.Time `json:"-"`
}

// CreateBlog validates and inserts a new post. The excerpt is derived
// from the content when none is given, and posts default to published.
func (s *BlogService) CreateBlog(ctx context.Context, req *CreateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateSlug(v, req.Slug)
	validateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	b := Blog{
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		Excerpt:       markdown.Excerpt(req.Content, req.Excerpt),
		FeaturedImage: req.FeaturedImage,
		Author:        req.Author,
		Tags:          req.Tags,
		Published:     true,
	}

	if b.Author == "" {
		b.Author = "Admin"
	}

	if b.Tags == nil {
		b.Tags = []string{}
	}

	if req.Published != nil {
		b.Published = *req.Published
	}

	err := s.m.insert(ctx, &b, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// GetBlogs returns all posts including drafts when includeDrafts is set,
// newest first. Draft visibility is the caller's responsibility to gate.
func (s *BlogService) GetBlogs(ctx context.Context, includeDrafts bool) ([]Blog, error) {
	return s.m.getBlogs(ctx, !includeDrafts)
}

// GetBlogBySlug returns a published post by slug with heading anchors
// injected so table-of-contents links resolve. Unpublished posts are
// reported as not found.
func (s *BlogService) GetBlogBySlug(ctx context.Context, slug string) (*Blog, error) {
	v := common.NewValidator()
	validateSlug(v, slug)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	b, err := s.m.getBlogBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	b.Content = markdown.AnchorHeadings(b.Content)

	return b, nil
}

// GetBlogByID returns a post by id regardless of its published state.
func (s *BlogService) GetBlogByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	return s.m.getBlogById(ctx, id)
}

type UpdateBlogRequest struct {
	Title         *string  `json:"title"`
	Slug          *string  `json:"slug"`
	Content       *string  `json:"content"`
	Excerpt       *string  `json:"excerpt"`
	FeaturedImage *string  `json:"featured_image"`
	Author        *string  `json:"author"`
	Tags          []string `json:"tags"`
	Published     *bool    `json:"published"`
}

// UpdateBlog applies a partial update and refreshes updated_at. When the
// content changes without an explicit excerpt, the excerpt is re-derived.
func (s *BlogService) UpdateBlog(ctx context.Context, id uuid.UUID, req *UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Slug != nil {
		validateSlug(v, *req.Slug)
	}
	if req.Content != nil {
		validateContent(v, *req.Content)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.Excerpt == nil && req.Content != nil {
		excerpt := markdown.Excerpt(*req.Content, "")
		req.Excerpt = &excerpt
	}

	return s.m.updateBlog(ctx, id, req)
}

// DeleteBlog removes a post. Deleting a nonexistent id is an error, not
// a no-op.
func (s *BlogService) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	return s.m.deleteBlog(ctx, id)
}

// ViewBlog atomically increments the view counter of a post.
func (s *BlogService) ViewBlog(ctx context.Context, id uuid.UUID) error {
	return s.m.incrementViewCount(ctx, id)
}

// LikeBlog records a like for the given client identifier. At most one
// like per (post, identifier) pair: repeats fail with ErrAlreadyLiked.
// The existence check and the insert are two store calls; the unique
// index on likes resolves the race between concurrent identical requests.
func (s *BlogService) LikeBlog(ctx context.Context, id uuid.UUID, ipAddress string) error {
	v := common.NewValidator()
	v.Check(ipAddress != "", "ip_address", "must be provided")
	if !v.Valid() {
		return v.ValidationError()
	}

	exists, err := s.m.likeExists(ctx, id, ipAddress)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyLiked
	}

	if err := s.m.insertLike(ctx, id, ipAddress); err != nil {
		return err
	}

	return s.m.incrementLikeCount(ctx, id)
}

// GetComments returns the approved comments of a post, oldest first.
func (s *BlogService) GetComments(ctx context.Context, blogID uuid.UUID) ([]Comment, error) {
	return s.m.getComments(ctx, blogID)
}

type AddCommentRequest struct {
	BlogID      uuid.UUID `json:"blog_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Content     string    `json:"content"`
}

// AddComment stores a comment awaiting moderation and publishes a
// comment.created event so the site admin is notified. The comment is
// never publicly visible until the approved flag is flipped in the store.
func (s *BlogService) AddComment(ctx context.Context, req *AddCommentRequest) (*Comment, error) {
	v := common.NewValidator()
	v.Check(req.BlogID != uuid.Nil, "blog_id", "must be provided")
	validateAuthorName(v, req.AuthorName)
	validateAuthorEmail(v, req.AuthorEmail)
	validateContent(v, req.Content)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	c := Comment{
		BlogID:      req.BlogID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		Content:     sanitizeContent(req.Content),
	}

	err := s.m.insertComment(ctx, &c)
	if err != nil {
		return nil, err
	}

	data := struct {
		BlogID     uuid.UUID `json:"blog_id"`
		AuthorName string    `json:"author_name"`
		Content    string    `json:"content"`
	}{
		BlogID:     c.BlogID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
	}

	notification, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	// Publish the comment created event
	err = s.mb.Publish(ctx, notification, common.CommentCreatedKey, common.CommentExchange)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// GetRelatedBlogs returns published posts whose tag set intersects the
// given tags, excluding the post itself, capped at limit.
func (s *BlogService) GetRelatedBlogs(ctx context.Context, tags []string, excludeID uuid.UUID, limit int) ([]Blog, error) {
	if limit < 1 {
		limit = 3
	}

	if len(tags) == 0 {
		return []Blog{}, nil
	}

	return s.m.getRelatedBlogs(ctx, tags, excludeID, limit)
}

// SearchBlogs returns published posts whose title matches the query,
// newest first. Default limit is 10 and default offset is 0.
func (s *BlogService) SearchBlogs(ctx context.Context, title string, limit, offset *int) ([]Blog, error) {
	v := common.NewValidator()
	v.Check(title != "", "q", "must be provided")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	l, o := 10, 0
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if offset != nil && *offset >= 0 {
		o = *offset
	}

	return s.m.searchBlogsByTitle(ctx, title, l, o)
}
