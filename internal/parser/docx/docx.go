// Package docx reads Word documents into a content tree. Heading and title
// paragraph styles become h1 to h6; every other paragraph with text becomes
// a p.
package docx

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/text/unicode/norm"

	"github.com/gompdf/pagebind/internal/content"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Document is a parsed Word document.
type Document struct {
	Body *content.Node
	// Title is the text of the first level-1 heading.
	Title string
}

// Parser reads .docx files.
type Parser struct{}

// NewParser creates a new DOCX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a whole document from r.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "read docx")
	}
	return p.ParseBytes(data)
}

// ParseBytes parses an in-memory document.
func (p *Parser) ParseBytes(data []byte) (*Document, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "parse docx")
	}

	out := &Document{Body: content.Element("body", nil)}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		text := paragraphText(para)
		if text == "" {
			continue
		}
		tag := "p"
		if level := headingLevel(para); level > 0 {
			tag = "h" + strconv.Itoa(level)
			if level == 1 && out.Title == "" {
				out.Title = text
			}
		}
		out.Body.AppendChild(content.Element(tag, nil, content.Text(text)))
	}
	return out, nil
}

// headingLevel maps "Heading1", "heading 2" and "Title" styles to a level,
// or 0.
func headingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	if style == "title" {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || !strings.HasPrefix(style, "heading") || n < 1 || n > 6 {
		return 0
	}
	return n
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return norm.NFC.String(strings.TrimSpace(buf.String()))
}
