package html

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"lunelle.GO/model/entity"
	"lunelle.GO/service/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template renders a page inside the shared layout. Each page is parsed
// together with layout.html so "title" and "content" blocks do not collide.
type Template struct {
	Templates map[string]*template.Template
}

func (t *Template) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.Templates[name]
	if !ok {
		return fmt.Errorf("html: unknown template %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

var funcs = template.FuncMap{
	"money": func(m entity.Money) string { return m.Format() },
	// resized points an image at the media resizer; width 0 keeps the original URL
	"resized": func(src string, width int) string {
		if src == "" || width == 0 {
			return src
		}
		q := url.Values{"src": {src}, "w": {fmt.Sprint(width)}, "fmt": {"webp"}}
		return "/media/resize?" + q.Encode()
	},
	"canAdd": catalog.CanAddToCart,
	"optionURL": func(handle string, selected map[string]string, name, value string) string {
		q := url.Values{}
		for n, v := range selected {
			q.Set("option."+n, v)
		}
		q.Set("option."+name, value)
		return "/shop/" + url.PathEscape(handle) + "?" + q.Encode()
	},
	"shopURL": func(q ShopParams, overrides ...string) string { return q.URL(overrides...) },
	"add":     func(a, b int) int { return a + b },
}

// NewRenderer parses every page template with the layout.
func NewRenderer() (*Template, error) {
	pages, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	t := &Template{Templates: map[string]*template.Template{}}
	for _, p := range pages {
		name := p.Name()
		if name == "layout.html" || strings.HasPrefix(name, "_") {
			continue
		}
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/_*.html", path.Join("templates", name))
		if err != nil {
			return nil, fmt.Errorf("html: parse %s: %w", name, err)
		}
		t.Templates[name] = tmpl
	}
	return t, nil
}

// MustRenderer is NewRenderer for route registration.
func MustRenderer() *Template {
	t, err := NewRenderer()
	if err != nil {
		log.Fatalf("html: %v", err)
	}
	return t
}
