package view

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/gst-invoices/internal/money"
	"github.com/diewo77/gst-invoices/internal/render"
	"github.com/shopspring/decimal"
)

//go:embed templates
var files embed.FS

const (
	layoutFile  = "templates/layout.html"
	partialGlob = "templates/partials/*.html"
)

var tplCache = struct {
	sync.RWMutex
	m map[string]*template.Template
}{m: map[string]*template.Template{}}

// Funcs returns the helpers shared by every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":  func() int { return time.Now().Year() },
		"money": func(d decimal.Decimal) string { return money.Format(d) },
		"qty":   func(d decimal.Decimal) string { return money.FormatNumber(d) },
		"rate":  func(d decimal.Decimal) string { return money.FormatRate(d) },
		"inr":   func() string { return money.Symbol },
		"add1":  func(i int) int { return i + 1 },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

func devMode() bool { return os.Getenv("DEV") == "1" }

// lookup parses name together with the layout and partials. Pages that carry
// their own doctype are parsed without the layout.
func lookup(name string) (*template.Template, error) {
	if !devMode() {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}

	mainPath := "templates/" + name
	content, err := files.ReadFile(mainPath)
	if err != nil {
		return nil, err
	}
	var t *template.Template
	if bytes.Contains(bytes.ToLower(content), []byte("<!doctype")) {
		t, err = template.New(name).Funcs(Funcs()).ParseFS(files, mainPath, partialGlob)
	} else {
		t, err = template.New("layout.html").Funcs(Funcs()).ParseFS(files, layoutFile, mainPath, partialGlob)
	}
	if err != nil {
		return nil, err
	}

	if !devMode() {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

// Render executes a page template with shared funcs. Output is buffered so a
// failing template never leaves a half-written page.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["Path"]; !exists {
		data["Path"] = r.URL.Path
	}
	t, err := lookup(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = buf.WriteTo(w)
	return err
}

// RenderDocument writes a standalone HTML page for doc.
func RenderDocument(w io.Writer, doc *render.Document) error {
	if doc == nil {
		return errors.New("view: nil document")
	}
	t, err := lookup("document.html")
	if err != nil {
		return err
	}
	return t.Execute(w, map[string]any{
		"Title":    strings.TrimSpace(doc.Title + " " + doc.Caption),
		"Document": doc,
	})
}
