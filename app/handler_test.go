package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strptr(s string) *string {
	return &s
}

func createTestBlog(t *testing.T, ts *testServer, secret string, payload map[string]any) map[string]any {
	code, _, body := ts.post(t, "/v1/blogs", payload, &secret)
	assert.Equal(t, http.StatusCreated, code)

	blog, ok := body["blog"].(map[string]any)
	assert.True(t, ok)

	return blog
}

func TestHealthCheck(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())

	code, _, body := ts.get(t, "/v1/healthcheck", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "available", body["status"])
}

func TestCreateBlogEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	payload := map[string]any{
		"title":   "Why We Garden",
		"slug":    "why-we-garden",
		"content": "<h1>Why We Garden</h1>\n\n<p>Because <strong>soil</strong> heals.</p>",
		"tags":    []string{"community", "gardening"},
	}

	t.Run("without secret", func(t *testing.T) {
		code, _, body := ts.post(t, "/v1/blogs", payload, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "unauthorized access", body["error"])
	})

	t.Run("with wrong secret", func(t *testing.T) {
		code, _, _ := ts.post(t, "/v1/blogs", payload, strptr("not-the-secret"))
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("with secret", func(t *testing.T) {
		blog := createTestBlog(t, ts, secret, payload)
		assert.Equal(t, "why-we-garden", blog["slug"])
		assert.Equal(t, "Admin", blog["author"])
		assert.Equal(t, true, blog["published"])
		assert.Contains(t, blog["content"], "<h1>Why We Garden</h1>")
	})

	t.Run("duplicate slug", func(t *testing.T) {
		code, _, body := ts.post(t, "/v1/blogs", payload, &secret)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "a blog with this slug already exists", body["error"])
	})

	t.Run("missing fields", func(t *testing.T) {
		code, _, body := ts.post(t, "/v1/blogs", map[string]any{"title": "No Content"}, &secret)
		assert.Equal(t, http.StatusBadRequest, code)

		errs, ok := body["error"].(map[string]any)
		assert.True(t, ok)
		assert.Contains(t, errs, "slug")
		assert.Contains(t, errs, "content")
	})
}

func TestGetBlogEndpoint(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	createTestBlog(t, ts, secret, map[string]any{
		"title":   "Annual Report",
		"slug":    "annual-report",
		"content": "<h2>Highlights</h2>\n\n<p>A strong year.</p>\n\n<h2>Finances</h2>\n\n<p>Balanced books.</p>",
	})
	draft := createTestBlog(t, ts, secret, map[string]any{
		"title":     "Unfinished",
		"slug":      "unfinished",
		"content":   "Draft body.",
		"published": false,
	})

	t.Run("by slug", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/blogs/annual-report", nil)
		assert.Equal(t, http.StatusOK, code)

		blog := body["blog"].(map[string]any)
		assert.Contains(t, blog["content"], `<h2 id="highlights">Highlights</h2>`)

		toc := body["toc"].([]any)
		assert.Len(t, toc, 2)
		first := toc[0].(map[string]any)
		assert.Equal(t, "Highlights", first["text"])
		assert.Equal(t, "highlights", first["id"])
	})

	t.Run("slug lookup counts a view", func(t *testing.T) {
		ts.get(t, "/v1/blogs/annual-report", nil)

		assert.Eventually(t, func() bool {
			var count int
			err := db.QueryRow("SELECT view_count FROM blogs WHERE slug = $1", "annual-report").Scan(&count)
			return err == nil && count >= 2
		}, 3*time.Second, 50*time.Millisecond)
	})

	t.Run("draft slug is not found", func(t *testing.T) {
		code, _, _ := ts.get(t, "/v1/blogs/unfinished", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("unknown slug is not found", func(t *testing.T) {
		code, _, _ := ts.get(t, "/v1/blogs/no-such-post", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("by id without secret", func(t *testing.T) {
		code, _, _ := ts.get(t, fmt.Sprintf("/v1/blogs/%s", draft["id"]), nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("by id with secret sees drafts", func(t *testing.T) {
		code, _, body := ts.get(t, fmt.Sprintf("/v1/blogs/%s", draft["id"]), &secret)
		assert.Equal(t, http.StatusOK, code)

		blog := body["blog"].(map[string]any)
		assert.Equal(t, "unfinished", blog["slug"])
		assert.Equal(t, false, blog["published"])
	})
}

func TestListBlogsEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	createTestBlog(t, ts, secret, map[string]any{
		"title": "Public Post", "slug": "public-post", "content": "Visible.",
	})
	createTestBlog(t, ts, secret, map[string]any{
		"title": "Hidden Post", "slug": "hidden-post", "content": "Not yet.", "published": false,
	})

	t.Run("public", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/blogs", nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, body["blogs"].([]any), 1)
	})

	t.Run("admin", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/blogs", &secret)
		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, body["blogs"].([]any), 2)
	})
}

func TestUpdateBlogEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	blog := createTestBlog(t, ts, secret, map[string]any{
		"title": "Old Title", "slug": "old-title", "content": "Old body.",
	})
	path := fmt.Sprintf("/v1/blogs/%s", blog["id"])

	t.Run("without secret", func(t *testing.T) {
		code, _, _ := ts.put(t, path, map[string]any{"title": "New Title"}, nil)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("partial update", func(t *testing.T) {
		code, _, body := ts.put(t, path, map[string]any{"title": "New Title"}, &secret)
		assert.Equal(t, http.StatusOK, code)

		updated := body["blog"].(map[string]any)
		assert.Equal(t, "New Title", updated["title"])
		assert.Equal(t, "old-title", updated["slug"])
	})

	t.Run("unknown id", func(t *testing.T) {
		code, _, _ := ts.put(t, "/v1/blogs/00000000-0000-0000-0000-000000000000", map[string]any{"title": "X"}, &secret)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestDeleteBlogEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	blog := createTestBlog(t, ts, secret, map[string]any{
		"title": "Ephemeral", "slug": "ephemeral", "content": "Soon gone.",
	})
	path := fmt.Sprintf("/v1/blogs/%s", blog["id"])

	code, _, body := ts.delete(t, path, &secret)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "blog successfully deleted", body["message"])

	code, _, _ = ts.get(t, "/v1/blogs/ephemeral", nil)
	assert.Equal(t, http.StatusNotFound, code)

	// deleting again is an error, not a no-op
	code, _, _ = ts.delete(t, path, &secret)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestLikeBlogEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	blog := createTestBlog(t, ts, secret, map[string]any{
		"title": "Likeable", "slug": "likeable", "content": "Like me.",
	})
	path := fmt.Sprintf("/v1/blogs/%s/like", blog["id"])

	t.Run("first like", func(t *testing.T) {
		code, _, body := ts.post(t, path, nil, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "blog liked", body["message"])
	})

	t.Run("repeat like", func(t *testing.T) {
		code, _, body := ts.post(t, path, nil, nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "you have already liked this blog", body["error"])
	})

	t.Run("different client", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, ts.URL+path, nil)
		assert.NoError(t, err)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")

		res, err := ts.Client().Do(req)
		assert.NoError(t, err)

		code, _, _ := readResponse(t, res)
		assert.Equal(t, http.StatusOK, code)
	})

	t.Run("unknown blog", func(t *testing.T) {
		code, _, _ := ts.post(t, "/v1/blogs/00000000-0000-0000-0000-000000000000/like", nil, nil)
		assert.Equal(t, http.StatusNotFound, code)
	})
}

func TestCommentEndpoints(t *testing.T) {
	app, db := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	blog := createTestBlog(t, ts, secret, map[string]any{
		"title": "Discussable", "slug": "discussable", "content": "Talk to me.",
	})
	blogID := blog["id"].(string)

	t.Run("missing blog_id", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/comments", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "blog_id parameter is required", body["error"])
	})

	t.Run("submit comment", func(t *testing.T) {
		payload := map[string]any{
			"blog_id":      blogID,
			"author_name":  "Ada",
			"author_email": "ada@example.com",
			"content":      "Thoughtful words.",
		}

		code, _, body := ts.post(t, "/v1/comments", payload, nil)
		assert.Equal(t, http.StatusCreated, code)
		assert.Equal(t, "comment submitted and awaiting moderation", body["message"])
	})

	t.Run("pending comment is invisible", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/comments?blog_id="+blogID, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.Len(t, body["comments"].([]any), 0)
	})

	t.Run("approved comment is listed", func(t *testing.T) {
		approveComments(t, db, blogID)

		code, _, body := ts.get(t, "/v1/comments?blog_id="+blogID, nil)
		assert.Equal(t, http.StatusOK, code)

		comments := body["comments"].([]any)
		assert.Len(t, comments, 1)
		assert.Equal(t, "Ada", comments[0].(map[string]any)["author_name"])
	})

	t.Run("invalid email", func(t *testing.T) {
		payload := map[string]any{
			"blog_id":      blogID,
			"author_name":  "Bob",
			"author_email": "not-an-email",
			"content":      "Hello.",
		}

		code, _, body := ts.post(t, "/v1/comments", payload, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, body["error"].(map[string]any), "author_email")
	})
}

func approveComments(t *testing.T, db *sql.DB, blogID string) {
	t.Helper()

	_, err := db.Exec("UPDATE comments SET approved = true WHERE blog_id = $1", blogID)
	assert.NoError(t, err)
}

func TestRelatedBlogsEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	createTestBlog(t, ts, secret, map[string]any{
		"title": "Compost Basics", "slug": "compost-basics", "content": "Rot well.",
		"tags": []string{"gardening"},
	})
	createTestBlog(t, ts, secret, map[string]any{
		"title": "Fundraising 101", "slug": "fundraising-101", "content": "Ask kindly.",
		"tags": []string{"fundraising"},
	})
	createTestBlog(t, ts, secret, map[string]any{
		"title": "Garden Tools", "slug": "garden-tools", "content": "Sharpen them.",
		"tags": []string{"gardening", "tools"},
	})

	t.Run("shared tag", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/blogs/compost-basics/related", nil)
		assert.Equal(t, http.StatusOK, code)

		related := body["blogs"].([]any)
		assert.Len(t, related, 1)
		assert.Equal(t, "garden-tools", related[0].(map[string]any)["slug"])
	})

	t.Run("malformed limit", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/blogs/compost-basics/related?limit=abc", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid limit parameter", body["error"])
	})
}

func TestSearchBlogsEndpoint(t *testing.T) {
	app, _ := newTestApplication(t)
	ts := newTestServer(t, app.routes())
	secret := app.config.AdminPassword

	createTestBlog(t, ts, secret, map[string]any{
		"title": "Volunteer Stories", "slug": "volunteer-stories", "content": "Many hands.",
	})
	createTestBlog(t, ts, secret, map[string]any{
		"title": "Volunteer Training", "slug": "volunteer-training", "content": "Learn fast.", "published": false,
	})

	t.Run("matches published only", func(t *testing.T) {
		code, _, body := ts.get(t, "/v1/search?q=volunteer", nil)
		assert.Equal(t, http.StatusOK, code)

		results := body["blogs"].([]any)
		assert.Len(t, results, 1)
		assert.Equal(t, "volunteer-stories", results[0].(map[string]any)["slug"])
	})

	t.Run("missing query", func(t *testing.T) {
		code, _, _ := ts.get(t, "/v1/search", nil)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}
