package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAdmin(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:idOrSlug", app.getBlogHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requireAdmin(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAdmin(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/like", app.likeBlogHandler)
	router.HandlerFunc(http.MethodGet, "/v1/blogs/:idOrSlug/related", app.relatedBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/search", app.searchBlogsHandler)

	// comments
	router.HandlerFunc(http.MethodGet, "/v1/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.addCommentHandler)

	// admin console
	router.HandlerFunc(http.MethodGet, "/admin", app.adminConsoleHandler)

	return app.recoverPanic(app.logRequest(app.authenticate(router)))
}
