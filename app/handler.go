package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mapleroot/pressroom/internal/blogservice"
	"github.com/mapleroot/pressroom/internal/common"
	"github.com/mapleroot/pressroom/internal/markdown"
)

func (app *application) listBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs, err := app.blogService.GetBlogs(r.Context(), app.isAdminContext(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getBlogHandler serves a single post. A UUID path segment is an admin
// lookup by id and sees drafts; anything else is a public slug lookup,
// which also counts a view.
func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	param := app.readStringParam(r, "idOrSlug")

	if uuidRX.MatchString(param) {
		if !app.isAdminContext(r) {
			app.notFoundErrorResponse(w, r)
			return
		}

		id, err := uuid.Parse(param)
		if err != nil {
			app.notFoundErrorResponse(w, r)
			return
		}

		blog, err := app.blogService.GetBlogByID(r.Context(), id)
		if err != nil {
			switch {
			case errors.Is(err, blogservice.ErrRecordNotFound):
				app.notFoundErrorResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog, "toc": markdown.TableOfContents(blog.Content)}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	blog, err := app.blogService.GetBlogBySlug(r.Context(), param)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound), errors.As(err, &vErr):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	// Count the view without holding up the response. A failure here is
	// logged and otherwise ignored.
	go func(id uuid.UUID) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.blogService.ViewBlog(ctx, id); err != nil {
			app.logger.Error("failed to increment view count", "blog_id", id, "error", err)
		}
	}(blog.ID)

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog, "toc": markdown.TableOfContents(blog.Content)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var req blogservice.CreateBlogRequest

	err := app.parseJSON(w, r, &req)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.CreateBlog(r.Context(), &req)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.As(err, &vErr):
			app.failedValidationErrorResponse(w, r, vErr.Errors)
		case errors.Is(err, blogservice.ErrDuplicateSlug):
			app.conflictErrorResponse(w, r, "a blog with this slug already exists")
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(app.readStringParam(r, "id"))
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var req blogservice.UpdateBlogRequest

	err = app.parseJSON(w, r, &req)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.UpdateBlog(r.Context(), id, &req)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.As(err, &vErr):
			app.failedValidationErrorResponse(w, r, vErr.Errors)
		case errors.Is(err, blogservice.ErrDuplicateSlug):
			app.conflictErrorResponse(w, r, "a blog with this slug already exists")
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(app.readStringParam(r, "id"))
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) likeBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(app.readStringParam(r, "id"))
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.blogService.LikeBlog(r.Context(), id, clientIP(r))
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.Is(err, blogservice.ErrAlreadyLiked):
			app.conflictErrorResponse(w, r, "you have already liked this blog")
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &vErr):
			app.failedValidationErrorResponse(w, r, vErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog liked"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// relatedBlogsHandler resolves the post the same way getBlogHandler does,
// then returns published posts sharing at least one tag with it.
func (app *application) relatedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	param := app.readStringParam(r, "idOrSlug")

	var (
		blog *blogservice.Blog
		err  error
	)

	if uuidRX.MatchString(param) {
		if !app.isAdminContext(r) {
			app.notFoundErrorResponse(w, r)
			return
		}

		id, parseErr := uuid.Parse(param)
		if parseErr != nil {
			app.notFoundErrorResponse(w, r)
			return
		}
		blog, err = app.blogService.GetBlogByID(r.Context(), id)
	} else {
		blog, err = app.blogService.GetBlogBySlug(r.Context(), param)
	}

	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound), errors.As(err, &vErr):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	l, _, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	limit := 3
	if l != nil {
		limit = *l
	}

	related, err := app.blogService.GetRelatedBlogs(r.Context(), blog.Tags, blog.ID, limit)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": related}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) searchBlogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.SearchBlogs(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.As(err, &vErr):
			app.failedValidationErrorResponse(w, r, vErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("blog_id")
	if param == "" {
		app.badRequestErrorResponse(w, r, errors.New("blog_id parameter is required"))
		return
	}

	blogID, err := uuid.Parse(param)
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("blog_id must be a valid uuid"))
		return
	}

	comments, err := app.blogService.GetComments(r.Context(), blogID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) addCommentHandler(w http.ResponseWriter, r *http.Request) {
	var req blogservice.AddCommentRequest

	err := app.parseJSON(w, r, &req)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comment, err := app.blogService.AddComment(r.Context(), &req)
	if err != nil {
		var vErr common.ValidationError
		switch {
		case errors.As(err, &vErr):
			app.failedValidationErrorResponse(w, r, vErr.Errors)
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	data := envelope{
		"message": "comment submitted and awaiting moderation",
		"comment": comment,
	}

	err = app.writeJSON(w, http.StatusCreated, data, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
