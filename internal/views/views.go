package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/postboard/apiserver/types"
)

// View names understood by TemplateRenderer.
const (
	Register  = "register"
	Login     = "login"
	Dashboard = "dashboard"
	Posts     = "posts"
)

// ErrResponseWrite wraps failures that happen after the status line has been
// sent. Callers can only log them.
var ErrResponseWrite = errors.New("write response")

//go:embed templates/*.html
var templateFS embed.FS

// Renderer writes a named view with its data as the response body.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data any) error
}

// LoginData feeds the login view.
type LoginData struct {
	Message string
}

// DashboardData feeds the dashboard view.
type DashboardData struct {
	User  types.User
	Posts []types.Post
}

// PostsData feeds the posts view.
type PostsData struct {
	Posts []types.Post
}

// TemplateRenderer renders the embedded html/template views.
type TemplateRenderer struct {
	tmpl *template.Template
}

func NewTemplateRenderer() (*TemplateRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range []string{Register, Login, Dashboard, Posts} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %q not defined", name)
		}
	}
	return &TemplateRenderer{tmpl: tmpl}, nil
}

// Render executes into a buffer first so a failing template never leaves a
// half-written page behind.
func (r *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrResponseWrite, err)
	}
	return nil
}
