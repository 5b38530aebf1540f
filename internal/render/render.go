package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/chris-code08/Day-71-blog-for-deployment/internal/auth"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

var pageFiles = []string{
	"index.gohtml",
	"post.gohtml",
	"login.gohtml",
	"register.gohtml",
	"make-post.gohtml",
	"about.gohtml",
	"contact.gohtml",
	"error.gohtml",
}

var functions = template.FuncMap{
	// post bodies and comments hold rich text produced by the editor
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
}

// Data is the bundle every view receives. View carries the page
// specific payload.
type Data struct {
	Title     string
	Principal auth.Principal
	Flash     string
	FormError string
	FormData  map[string]string
	View      any
}

type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, page := range pageFiles {
		ts, err := template.New(page).Funcs(functions).ParseFS(
			templatesFS,
			"templates/base.gohtml",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		pages[page] = ts
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the page template into a buffer first, so a broken
// template never produces a half-written response.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data *Data) {
	if data == nil {
		data = &Data{}
	}
	if data.Flash == "" {
		data.Flash = PopFlash(w, r)
	}

	ts, ok := rd.pages[page]
	if !ok {
		log.Errorf("render: unknown page %s", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(buf, "base", data); err != nil {
		log.Errorf("render %s: %s", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("render %s, write response: %s", page, err)
	}
}

type errorView struct {
	Status  int
	Message string
}

// RenderError terminates the request with an error page, 403 and 404 style.
func (rd *Renderer) RenderError(w http.ResponseWriter, r *http.Request, status int, principal auth.Principal) {
	rd.Render(w, r, status, "error.gohtml", &Data{
		Title:     http.StatusText(status),
		Principal: principal,
		View: errorView{
			Status:  status,
			Message: http.StatusText(status),
		},
	})
}
