package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pilgrim-ai/pilgrim/store"
)

var page = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 52rem; margin: 2rem auto; line-height: 1.5; }
pre { background: #f4f4f4; padding: .75rem; overflow-x: auto; }
.diagram { margin: 1rem 0; }
</style>
</head>
<body>
{{.Body}}
{{if .Mermaid}}<h2>Graph</h2>
<pre class="diagram">{{.Mermaid}}</pre>{{end}}
</body>
</html>
`))

// MarkdownToHTML converts Markdown to sanitized HTML. Model output ends up in
// the document, so everything outside the UGC policy is stripped.
func MarkdownToHTML(md string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)
	htmlBytes := markdown.Render(doc, renderer)

	return bluemonday.UGCPolicy().SanitizeBytes(htmlBytes)
}

// WriteHTML writes a standalone HTML page for the record. mermaid, when not
// empty, is included as the graph source.
func WriteHTML(w io.Writer, r *store.RunRecord, mermaid string) error {
	data := struct {
		Title   string
		Body    template.HTML
		Mermaid string
	}{
		Title:   fmt.Sprintf("pilgrim run %s", r.ID),
		Body:    template.HTML(MarkdownToHTML(Markdown(r))), // sanitized by bluemonday
		Mermaid: mermaid,
	}
	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// HTML returns the page written by WriteHTML.
func HTML(r *store.RunRecord, mermaid string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, r, mermaid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
