package integrity

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"

	"datacheck/domain/check"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// View is what the integrity page shows for one result: the header, the
// summary rendered from markdown, and the first condition outcome
type View struct {
	Header    string
	Summary   template.HTML
	Condition string
}

// NewView prepares a result for display. A nil result has no view.
func NewView(result *check.Result) (*View, error) {
	if result == nil {
		return nil, nil
	}

	view := &View{
		Header:  result.Header,
		Summary: RenderMarkdown(result.Check.Summary),
	}
	if first, ok := result.FirstCondition(); ok {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(first); err != nil {
			return nil, err
		}
		view.Condition = strings.TrimSuffix(buf.String(), "\n")
	}
	return view, nil
}

// RenderMarkdown converts markdown to HTML. Embedded HTML is passed through.
func RenderMarkdown(source string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(source), p, renderer))
}
