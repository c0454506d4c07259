// Package views holds the embedded HTML templates and their helpers.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gorm.io/datatypes"
)

//go:embed templates/*.html
var files embed.FS

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Templates parses every embedded template with the helper functions.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(files, "templates/*.html")
}

// FuncMap returns the helpers available in templates.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"markdown": Markdown,
		"date":     FormatDate,
		"dateptr": func(d *datatypes.Date) string {
			if d == nil {
				return ""
			}
			return FormatDate(*d)
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}

// Markdown renders user text. Raw HTML in the source is dropped.
func Markdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(d datatypes.Date) string {
	t := time.Time(d)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
