package matrix

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	safeMarkdown   = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	unsafeMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
)

// RenderMarkdown converts md to the HTML carried in formatted_body. Raw HTML
// in md is dropped unless allowHTML is set.
func RenderMarkdown(md string, allowHTML bool) (string, error) {
	renderer := safeMarkdown
	if allowHTML {
		renderer = unsafeMarkdown
	}

	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	rendered := strings.TrimSpace(buf.String())

	// a lone paragraph is sent unwrapped
	if strings.Count(rendered, "<p>") == 1 && strings.HasPrefix(rendered, "<p>") && strings.HasSuffix(rendered, "</p>") {
		rendered = strings.TrimSuffix(strings.TrimPrefix(rendered, "<p>"), "</p>")
	}
	return rendered, nil
}
