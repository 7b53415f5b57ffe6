// Package html writes a paginated book back out as a standalone HTML
// document, one element per page, for preview in a browser.
package html

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Renderer writes books as HTML.
type Renderer struct {
	Title  string
	Layout arrange.Layout
	// Styles are author stylesheets copied into the document head after
	// the page geometry rules.
	Styles []string

	out    io.Writer
	logger *log.Logger
}

// NewRenderer creates an HTML renderer writing to out.
func NewRenderer(out io.Writer, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	return &Renderer{Layout: arrange.LayoutPages, out: out, logger: logger}
}

// RenderProgress logs how far the pass has come.
func (r *Renderer) RenderProgress(book *page.Book, fraction float64) {
	r.logger.Info("paginating", "pages", book.Len(), "progress", fmt.Sprintf("%3.0f%%", fraction*100))
}

// Render writes the arranged book.
func (r *Renderer) Render(book *page.Book) error {
	if book == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "no book to render")
	}
	doc := r.Document(book)
	if _, err := io.WriteString(r.out, "<!DOCTYPE html>\n"); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeInternal, err, "write html")
	}
	if err := html.Render(r.out, doc); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeInternal, err, "write html")
	}
	return nil
}

// Document builds the output tree without writing it.
func (r *Renderer) Document(book *page.Book) *html.Node {
	head := elem(atom.Head, "")
	head.AppendChild(withText(elem(atom.Title, ""), r.Title))
	css := geometry(book)
	for _, s := range r.Styles {
		css += "\n" + s
	}
	head.AppendChild(withText(elem(atom.Style, ""), css))

	body := elem(atom.Body, "layout-"+string(r.Layout))
	for _, sheet := range arrange.Arrange(book.Pages, r.Layout, book.Blank) {
		s := elem(atom.Div, "sheet")
		for slot, p := range sheet {
			s.AppendChild(r.page(p, len(sheet), slot))
		}
		body.AppendChild(s)
	}

	root := elem(atom.Html, "")
	root.AppendChild(head)
	root.AppendChild(body)
	r.logger.Debug("rendered html", "pages", book.Len(), "layout", r.Layout)
	return root
}

func geometry(book *page.Book) string {
	m := book.Margins
	return fmt.Sprintf(`.sheet { display: flex; margin: 1em auto; width: max-content; }
.page { position: relative; box-sizing: border-box; width: %.2fpt; height: %.2fpt; padding: %.2fpt %.2fpt %.2fpt %.2fpt; overflow: hidden; background: white; box-shadow: 0 0 2px #888; }
.page.left { padding-left: %.2fpt; padding-right: %.2fpt; }
.running-header { position: absolute; top: %.2fpt; font-size: 9pt; font-style: italic; }
.page-number { position: absolute; bottom: %.2fpt; left: 0; right: 0; text-align: center; font-size: 9pt; }
.footnotes { position: absolute; bottom: %.2fpt; font-size: 0.66em; border-top: 0.5pt solid black; }`,
		book.Size.Width, book.Size.Height,
		m.Top, m.Outer, m.Bottom, m.Inner,
		m.Outer, m.Inner,
		m.Top/3, m.Bottom/3, m.Bottom)
}

func (r *Renderer) page(p *page.Page, sheetLen, slot int) *html.Node {
	classes := []string{"page"}
	if sheetLen == 2 && slot == 0 {
		classes = append(classes, "left")
	} else {
		classes = append(classes, "right")
	}
	if p.Blank {
		classes = append(classes, "blank")
	}
	classes = append(classes, p.Classes...)
	n := elem(atom.Div, strings.Join(classes, " "))
	if p.Blank {
		return n
	}
	if p.Number > 0 {
		n.Attr = append(n.Attr, html.Attribute{Key: "data-page", Val: strconv.Itoa(p.Number)})
	}

	if p.RunningHeader != "" {
		n.AppendChild(withText(elem(atom.Div, "running-header"), p.RunningHeader))
	}
	flow := elem(atom.Div, "flow")
	for _, c := range p.Flow.Children {
		if hn := convert(c); hn != nil {
			flow.AppendChild(hn)
		}
	}
	n.AppendChild(flow)

	if len(p.Footnotes) > 0 {
		notes := elem(atom.Ol, "footnotes")
		for _, fn := range p.Footnotes {
			li := withText(elem(atom.Li, ""), fn.Text)
			li.Attr = append(li.Attr, html.Attribute{Key: "value", Val: strconv.Itoa(fn.Number)})
			notes.AppendChild(li)
		}
		n.AppendChild(notes)
	}
	if p.Number > 0 {
		n.AppendChild(withText(elem(atom.Div, "page-number"), strconv.Itoa(p.Number)))
	}
	return n
}

// convert turns a page box into an x/net/html node.
func convert(b *page.Box) *html.Node {
	switch b.Kind {
	case content.KindText:
		return &html.Node{Type: html.TextNode, Data: b.Text}
	case content.KindComment:
		return &html.Node{Type: html.CommentNode, Data: b.Text}
	case content.KindRaw:
		return &html.Node{Type: html.RawNode, Data: b.Text}
	case content.KindElement:
	default:
		return nil
	}
	n := &html.Node{Type: html.ElementNode, Data: b.Tag, DataAtom: atom.Lookup([]byte(b.Tag))}
	for _, a := range b.Attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range b.Children {
		if hc := convert(c); hc != nil {
			n.AppendChild(hc)
		}
	}
	return n
}

func elem(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	if class != "" {
		n.Attr = []html.Attribute{{Key: "class", Val: class}}
	}
	return n
}

func withText(n *html.Node, s string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: s})
	return n
}
