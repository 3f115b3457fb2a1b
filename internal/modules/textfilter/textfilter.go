package textfilter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// ErrUnknownFilter marks a render request for a filter name no engine knows.
// A save with an unknown filter is rejected, since the stored rendered fields
// must reflect the committed filter.
var ErrUnknownFilter = errors.New("unknown text filter")

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Table,
		extension.Strikethrough,
		extension.Linkify,
		extension.Typographer,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

var sanitizer = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span")
	p.AllowElements("table", "thead", "tbody", "tr", "th", "td")
	return p
}()

// Engine resolves filter names to markup transforms. The zero value is ready
// to use.
type Engine struct{}

// Render applies the named filter to raw text. "markdown" renders goldmark
// GFM and sanitizes the result; "html" sanitizes only; "none" (or blank)
// passes the text through untouched.
func (Engine) Render(raw, filterName string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(filterName)) {
	case "markdown":
		return renderMarkdown(raw)
	case "html":
		return sanitizer.Sanitize(raw), nil
	case "none", "":
		return raw, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, filterName)
	}
}

func renderMarkdown(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", nil
	}

	var out bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &out); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return sanitizer.Sanitize(out.String()), nil
}
