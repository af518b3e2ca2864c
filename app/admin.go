package main

import (
	"embed"
	"net/http"
)

//go:embed static/admin.html
var adminConsole embed.FS

// adminConsoleHandler serves the single-page admin console. The page
// itself is public; every write it performs goes through the /v1 API
// with the x-admin-password header, so possession of the page grants
// nothing.
func (app *application) adminConsoleHandler(w http.ResponseWriter, r *http.Request) {
	page, err := adminConsole.ReadFile("static/admin.html")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}
