// Package html reads HTML into a content tree.
package html

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"

	"github.com/gompdf/pagebind/internal/content"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Parser represents an HTML parser
type Parser struct {
	// KeepWhitespace keeps whitespace-only text nodes that contain a line
	// break. By default they are source indentation and are dropped,
	// except inside <pre>.
	KeepWhitespace bool
}

// Document represents a parsed HTML document
type Document struct {
	// Root is the <html> element.
	Root *content.Node
	Head *content.Node
	Body *content.Node

	Title string
	// Styles holds the text of every <style> element in document order.
	Styles []string
	// StylesheetLinks holds the href of every <link rel="stylesheet">.
	StylesheetLinks []string
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(s string) (*Document, error) {
	return p.Parse(strings.NewReader(s))
}

// Parse parses HTML from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "parse html")
	}

	doc := &Document{}
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Html {
			doc.Root = p.convertNode(c, false)
		}
	}
	if doc.Root == nil {
		return nil, pberrors.New(pberrors.ErrCodeInvalidInput, "document has no <html> element")
	}

	for _, c := range doc.Root.Children {
		switch c.Tag {
		case "head":
			doc.Head = c
		case "body":
			doc.Body = c
		}
	}
	if doc.Body == nil {
		doc.Body = content.Element("body", nil)
	}
	if doc.Head != nil {
		doc.collectHead(doc.Head)
	}
	return doc, nil
}

// ParseFragment parses an HTML snippet in body context and wraps the
// result in a <body> element.
func (p *Parser) ParseFragment(s string) (*content.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, pberrors.Wrap(pberrors.ErrCodeInvalidInput, err, "parse html fragment")
	}
	var children []*content.Node
	for _, n := range nodes {
		if c := p.convertNode(n, false); c != nil {
			children = append(children, c)
		}
	}
	return content.Element("body", nil, children...), nil
}

func (d *Document) collectHead(head *content.Node) {
	head.Walk(func(n *content.Node) bool {
		switch n.Tag {
		case "title":
			d.Title = strings.TrimSpace(n.TextContent())
		case "style":
			d.Styles = append(d.Styles, n.TextContent())
		case "link":
			rel, _ := n.Attr("rel")
			href, ok := n.Attr("href")
			if ok && strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
				d.StylesheetLinks = append(d.StylesheetLinks, href)
			}
		}
		return true
	})
}

// convertNode converts an html.Node to a content node. It returns nil for
// nodes that carry nothing.
func (p *Parser) convertNode(n *html.Node, pre bool) *content.Node {
	switch n.Type {
	case html.TextNode:
		if !pre && !p.KeepWhitespace && strings.TrimSpace(n.Data) == "" && strings.Contains(n.Data, "\n") {
			return nil
		}
		// Composed form so that accented letters map onto single glyphs.
		return content.Text(norm.NFC.String(n.Data))
	case html.CommentNode:
		return content.Other(content.KindComment, n.Data)
	case html.DoctypeNode:
		return content.Other(content.KindDoctype, n.Data)
	case html.RawNode:
		return content.Other(content.KindRaw, n.Data)
	case html.ElementNode:
	default:
		return nil
	}

	attrs := make([]content.Attr, 0, len(n.Attr))
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		attrs = append(attrs, content.Attr{Key: key, Val: a.Val})
	}

	pre = pre || n.DataAtom == atom.Pre || n.DataAtom == atom.Textarea
	var children []*content.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := p.convertNode(c, pre); child != nil {
			children = append(children, child)
		}
	}
	return content.Element(n.Data, attrs, children...)
}
