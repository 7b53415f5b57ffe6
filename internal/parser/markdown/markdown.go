// Package markdown reads Markdown into a content tree by way of HTML.
package markdown

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/gompdf/pagebind/internal/content"
	htmlparser "github.com/gompdf/pagebind/internal/parser/html"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Parser handles Markdown files using goldmark. Raw HTML in the source is
// passed through so that rule targets such as <figure class="spread"> can
// be written inline.
type Parser struct {
	md   goldmark.Markdown
	html *htmlparser.Parser
}

// Document is a parsed Markdown file.
type Document struct {
	Body *content.Node
	// Title is the text of the first level-one heading, if any.
	Title string
}

// NewParser creates a Markdown parser.
func NewParser() *Parser {
	return &Parser{
		md:   goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe())),
		html: htmlparser.NewParser(),
	}
}

// ParseString parses Markdown from a string.
func (p *Parser) ParseString(s string) (*Document, error) {
	return p.Parse(strings.NewReader(s))
}

// Parse parses Markdown from an io.Reader.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "read markdown")
	}

	root := p.md.Parser().Parse(text.NewReader(src))
	var buf bytes.Buffer
	if err := p.md.Renderer().Render(&buf, src, root); err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "render markdown")
	}

	body, err := p.html.ParseFragment(buf.String())
	if err != nil {
		return nil, err
	}
	return &Document{Body: body, Title: firstTitle(root, src)}, nil
}

func firstTitle(doc ast.Node, src []byte) string {
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			return inlineText(h, src)
		}
	}
	return ""
}

// inlineText gets the text content of a goldmark AST node.
func inlineText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
			continue
		}
		buf.WriteString(inlineText(c, src))
	}
	return strings.TrimSpace(buf.String())
}
