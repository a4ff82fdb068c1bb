// internal/handlers/render.go
package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/flasktaskr/flasktaskr/internal/logger"
	"github.com/flasktaskr/flasktaskr/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// pages maps a page name to its parsed template set (base layout + content
// block). Parsed once at package init; a broken template is a build defect.
var pages = func() map[string]*template.Template {
	names := []string{"login.html", "register.html", "tasks.html", "404.html", "500.html"}
	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		parsed[name] = template.Must(template.ParseFS(templatesFS,
			"templates/base.html", "templates/"+name))
	}
	return parsed
}()

// taskView decorates a task with the viewer-dependent facts templates need.
type taskView struct {
	*models.Task
	CanModify bool
}

type pageData struct {
	Title       string
	Flashes     []string
	Error       string
	User        models.Identity
	OpenTasks   []taskView
	ClosedTasks []taskView
	Form        formData
}

// formData echoes submitted values back into the form on a validation error.
type formData struct {
	Name    string
	Email   string
	DueDate string
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data *pageData) {
	tmpl, ok := pages[name]
	if !ok {
		logger.Error("Unknown template", nil)
		h.writeServerError(w)
		return
	}

	// Render into a buffer first so a template fault cannot leave a
	// half-written page behind a 200 status.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("Render template", err)
		h.writeServerError(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// NotFoundPage renders the generic 404 page.
func (h *Handler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404.html", &pageData{Title: "Not Found"})
}

// ServerErrorPage renders the generic 500 page. No internal detail ever
// reaches the client from here.
func (h *Handler) ServerErrorPage(w http.ResponseWriter, r *http.Request) {
	h.writeServerError(w)
}

func (h *Handler) writeServerError(w http.ResponseWriter) {
	tmpl, ok := pages["500.html"]
	if !ok {
		http.Error(w, "Something went terrible wrong.", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", &pageData{Title: "Server Error"}); err != nil {
		http.Error(w, "Something went terrible wrong.", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	buf.WriteTo(w)
}
