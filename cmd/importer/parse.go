package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mapleroot/pressroom/internal/blogservice"
	"github.com/mapleroot/pressroom/internal/markdown"
	"gopkg.in/yaml.v3"
)

// frontMatter is the metadata header block of a legacy content file. The
// field names match the keys the old site used.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	Excerpt     string   `yaml:"excerpt"`
	Image       string   `yaml:"image"`
	Author      string   `yaml:"author"`
	Tags        []string `yaml:"tags"`
	IsPublished *bool    `yaml:"isPublished"`
	PublishedAt string   `yaml:"publishedAt"`
	UpdatedAt   string   `yaml:"updatedAt"`
}

var frontMatterDelimiter = []byte("---")

// splitFrontMatter separates the metadata header from the body. A file
// without a header is all body.
func splitFrontMatter(raw []byte) (meta, body []byte, err error) {
	trimmed := bytes.TrimLeft(raw, "\ufeff\n\r")
	if !bytes.HasPrefix(trimmed, frontMatterDelimiter) {
		return nil, raw, nil
	}

	rest := trimmed[len(frontMatterDelimiter):]
	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelimiter...))
	if end < 0 {
		return nil, nil, errors.New("unterminated front matter block")
	}

	meta = rest[:end]
	body = rest[end+len(frontMatterDelimiter)+1:]
	body = bytes.TrimPrefix(body, []byte("\n"))

	return meta, body, nil
}

// dateFormats covers the spellings found in the legacy content tree.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognized date %q", value)
}

// parsePost turns a legacy content file into a create request: the
// header becomes the post metadata and the markup body is rendered to
// HTML. dirSlug is the containing directory name, used when the header
// carries no slug of its own.
func parsePost(raw []byte, dirSlug string) (*blogservice.CreateBlogRequest, error) {
	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, err
	}

	var fm frontMatter
	if meta != nil {
		if err := yaml.Unmarshal(meta, &fm); err != nil {
			return nil, fmt.Errorf("parse front matter: %w", err)
		}
	}

	createdAt, err := parseDate(fm.PublishedAt)
	if err != nil {
		return nil, err
	}

	updatedAt, err := parseDate(fm.UpdatedAt)
	if err != nil {
		return nil, err
	}

	slug := fm.Slug
	if slug == "" {
		slug = dirSlug
	}

	excerpt := fm.Description
	if excerpt == "" {
		excerpt = fm.Excerpt
	}

	var featuredImage *string
	if fm.Image != "" {
		image := "/blogs/" + strings.TrimPrefix(fm.Image, "/")
		featuredImage = &image
	}

	return &blogservice.CreateBlogRequest{
		Title:         fm.Title,
		Slug:          slug,
		Content:       markdown.ToHTML(string(body)),
		Excerpt:       excerpt,
		FeaturedImage: featuredImage,
		Author:        fm.Author,
		Tags:          fm.Tags,
		Published:     fm.IsPublished,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
	}, nil
}
