package transport

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/mewoai/mewoai/internal/domain/attendance"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "upload", "absen", "report", "security", "message"}

type pages struct {
	templates map[string]*template.Template
}

var funcs = template.FuncMap{
	"datetime": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	},
	"inc": func(i int) int { return i + 1 },
	"statusClass": func(s attendance.Status) string {
		switch s {
		case attendance.StatusPresent:
			return "text-success fw-bold"
		case attendance.StatusExcused:
			return "text-warning fw-bold"
		case attendance.StatusEscalated:
			return "text-danger fw-bold"
		default:
			return "text-danger"
		}
	},
}

func mustParsePages() *pages {
	p := &pages{templates: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		p.templates[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return p
}

// view is the data every page receives. Page selects the active nav entry.
type view struct {
	Page  string
	Title string
	Error string
	Data  any
}

func (p *pages) render(w http.ResponseWriter, status int, name string, v view) error {
	tmpl, ok := p.templates[name]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return nil
	}
	// Render to a buffer so a template error does not leave a half-written page.
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
