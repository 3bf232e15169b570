// Package web holds the HTML templates and the echo renderer that serves them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

//go:embed templates/*.html
var files embed.FS

// Page names.
const (
	PageHome      = "home"
	PageLogin     = "login"
	PageSignup    = "signup"
	PageHomeowner = "dashboard_homeowner"
	PageExpert    = "dashboard_expert"
	PageError     = "error"
)

var pageNames = []string{PageHome, PageLogin, PageSignup, PageHomeowner, PageExpert, PageError}

// Page is the data every template receives. User drives the header auth
// region; Flash is shown once above the content.
type Page struct {
	Title string
	User  *domain.User
	Flash *ports.Flash
	Data  any
}

// Renderer implements echo.Renderer over the embedded templates. Each page
// is parsed together with the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").ParseFS(files, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer is NewRenderer for package-level wiring and tests.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("render: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
