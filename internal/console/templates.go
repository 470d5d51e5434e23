// ABOUTME: Template rendering functions for the console UI
// ABOUTME: Loads templates from the embedded filesystem and renders pages and htmx partials

package console

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("Jan 2, 2006")
	},
	"upper": func(v any) string { return strings.ToUpper(fmt.Sprint(v)) },
	"title": func(v any) string {
		s := fmt.Sprint(v)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// pageData is shared by every full page.
type pageData struct {
	Title     string
	Section   string
	Sections  []sectionLink
	Operator  string
	CSRFToken string
	Notice    string
	Error     string
	Dialog    *Dialog
}

type sectionLink struct {
	Name   string
	Label  string
	Path   string
	Active bool
}

type loginData struct {
	Title     string
	Notice    string
	Error     string
	Username  string
	CSRFToken string
}

// renderPage renders templates/<page> inside the base layout.
func (c *Console) renderPage(w http.ResponseWriter, status int, page string, data any) {
	tmpl := template.Must(template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS,
		"templates/base.html", "templates/partials/*.html", "templates/"+page))
	c.execute(w, status, tmpl, "base.html", data)
}

// renderPartial renders a single named partial, for htmx swaps.
func (c *Console) renderPartial(w http.ResponseWriter, status int, name string, data any) {
	tmpl := template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/partials/*.html"))
	c.execute(w, status, tmpl, name, data)
}

func (c *Console) execute(w http.ResponseWriter, status int, tmpl *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		c.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderLoginPage renders the login page
func (c *Console) renderLoginPage(w http.ResponseWriter, status int, data loginData) {
	data.Title = "Sign in"
	c.renderPage(w, status, "login.html", data)
}
