// Package render turns tabular report data into a delivery document.
package render

import (
	"bytes"
	"fmt"
	"html/template"
)

// Cell is one table cell. A non-empty Href renders the text as a
// hyperlink.
type Cell struct {
	Text string
	Href string
}

// Document is the renderer input: one table of pre-formatted cells.
type Document struct {
	Title   string
	Headers []string
	Data    [][]Cell
	Date    string
}

// Renderer produces the delivery bytes for one document.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; }
h1 { font-size: 18px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; font-size: 13px; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Report date: {{.Date}}</p>
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Data}}<tr>{{range .}}<td>{{if .Href}}<a href="{{.Href}}">{{.Text}}</a>{{else}}{{.Text}}{{end}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`

// HTMLRenderer renders documents as a standalone HTML page.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		tmpl: template.Must(template.New("report").Parse(reportTemplate)),
	}
}

func (r *HTMLRenderer) Render(doc Document) ([]byte, error) {
	for i, row := range doc.Data {
		if len(row) != len(doc.Headers) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(doc.Headers))
		}
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render report document: %w", err)
	}
	return buf.Bytes(), nil
}
