package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	pageMovies  = "movies"
	pageDetails = "details"
	pageError   = "error"
)

// Views holds the parsed HTML pages, each combined with the shared layout.
type Views struct {
	pages map[string]*template.Template
}

func NewViews() (*Views, error) {
	funcs := template.FuncMap{
		"rating": func(r float64) string { return fmt.Sprintf("%.1f", r) },
	}

	v := &Views{pages: make(map[string]*template.Template)}
	for _, name := range []string{pageMovies, pageDetails, pageError} {
		t, err := template.New("layout.tmpl").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name+".tmpl")
		if err != nil {
			return nil, fmt.Errorf("parse %s page: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// Render executes page into a buffer first so a template error still yields
// a clean 500 instead of a half written page.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.tmpl", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

type moviesPage struct {
	Title           string
	Movies          []Movie
	Genres          []string
	SearchPerformed bool
	SearchName      string
	SearchID        string
	SearchGenre     string
	Message         string
}

type detailsPage struct {
	Title string
	Movie Movie
}

type errorPage struct {
	Title   string
	Message string
}
