package main

import (
	"context"
	"net/http"
)

type contextKey string

const adminContextKey = contextKey("isAdmin")

func (app *application) createAdminContext(r *http.Request, isAdmin bool) *http.Request {
	ctx := context.WithValue(r.Context(), adminContextKey, isAdmin)
	return r.WithContext(ctx)
}

func (app *application) isAdminContext(r *http.Request) bool {
	isAdmin, ok := r.Context().Value(adminContextKey).(bool)
	if !ok {
		return false
	}
	return isAdmin
}
