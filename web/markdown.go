package web

import (
	"bytes"
	"html/template"

	"github.com/amonks/blueprint/analysis"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	resultMarkdown  = goldmark.New(goldmark.WithExtensions(extension.GFM))
	resultSanitizer = bluemonday.UGCPolicy()
)

// renderResultHTML renders a completed result for the detail pane. Markdown
// results render to sanitized HTML; source and diagram results render as a
// preformatted block.
func renderResultHTML(kind analysis.Kind, result string) template.HTML {
	if kind.Format() != analysis.FormatMarkdown {
		return preformatted(result)
	}
	var buf bytes.Buffer
	if err := resultMarkdown.Convert([]byte(result), &buf); err != nil {
		return preformatted(result)
	}
	return template.HTML(resultSanitizer.SanitizeBytes(buf.Bytes()))
}

func preformatted(text string) template.HTML {
	return template.HTML("<pre class=\"code\">" + template.HTMLEscapeString(text) + "</pre>")
}
