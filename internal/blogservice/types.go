package blogservice

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/mapleroot/pressroom/internal/common"
)

type Blog struct {
	ID    uuid.UUID `json:"id"`
	Slug  string    `json:"slug"`
	Title string    `json:"title"`
	// Content is stored as rendered HTML, not the source markup.
	Content       string    `json:"content"`
	Excerpt       string    `json:"excerpt"`
	FeaturedImage *string   `json:"featured_image"`
	Author        string    `json:"author"`
	Tags          []string  `json:"tags"`
	Published     bool      `json:"published"`
	ViewCount     int       `json:"view_count"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Comment struct {
	ID          uuid.UUID `json:"id"`
	BlogID      uuid.UUID `json:"blog_id"`
	AuthorName  string    `json:"author_name"`
	AuthorEmail string    `json:"author_email"`
	Content     string    `json:"content"`
	Approved    bool      `json:"approved"`
	CreatedAt   time.Time `json:"created_at"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m  *BlogModel
	mb common.MessageProducer
}
