// Package rules provides the built-in pagination rules.
package rules

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
)

// BreakBefore starts matching elements on a new right-hand page unless the
// current page is still empty.
func BreakBefore(selector string) *pagination.Rule {
	return &pagination.Rule{
		Name:     "break-before",
		Selector: selector,
		BeforeAdd: func(_ *page.Box, st *pagination.State) {
			if st.Page.HasContent() {
				st.NewPage().SetPreference("right")
			}
		},
	}
}

// bookmarks is a stack so that diverted elements may nest.
type bookmarks struct {
	stack []pagination.Bookmark
}

func (b *bookmarks) push(m pagination.Bookmark) {
	b.stack = append(b.stack, m)
}

func (b *bookmarks) pop() (pagination.Bookmark, bool) {
	if len(b.stack) == 0 {
		return pagination.Bookmark{}, false
	}
	m := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return m, true
}

func newBookmarks() *bookmarks {
	return &bookmarks{}
}

// FullPage places matching elements on a page of their own. The flow then
// resumes where it left off. A "bleed" class on the element is carried to
// the page.
func FullPage(selector string) *pagination.Rule {
	r := &pagination.Rule{Name: "full-page", Selector: selector}
	r.BeforeAdd = func(el *page.Box, st *pagination.State) {
		pagination.Value(st.Store(), r, newBookmarks).push(st.Save())
		pg := st.NewPage()
		if el.HasClass("bleed") {
			pg.AddClass("bleed")
		}
	}
	r.AfterAdd = func(_ *page.Box, st *pagination.State) {
		if m, ok := pagination.Value(st.Store(), r, newBookmarks).pop(); ok {
			st.Resume(m)
		}
	}
	return r
}

// Spread places matching elements across a left and right page pair
// outside the normal flow. Both pages carry the same content; the
// presentation shows each half.
func Spread(selector string) *pagination.Rule {
	r := &pagination.Rule{Name: "spread", Selector: selector}
	r.BeforeAdd = func(_ *page.Box, st *pagination.State) {
		pagination.Value(st.Store(), r, newBookmarks).push(st.Save())
		st.NewPage()
	}
	r.AfterAdd = func(_ *page.Box, st *pagination.State) {
		left := st.Page
		right := st.NewPage()
		right.Flow = left.Flow.Clone()

		for _, pg := range []*page.Page{left, right} {
			pg.AddClass("spread")
			pg.AddClass("bleed")
			pg.OutOfFlow = true
		}
		left.SetPreference("left")
		right.SetPreference("right")

		if m, ok := pagination.Value(st.Store(), r, newBookmarks).pop(); ok {
			st.Resume(m)
		}
	}
	return r
}

// TextFunc extracts footnote text from an element.
type TextFunc func(el *page.Box) string

// AttrText reads the footnote text from an attribute, falling back to the
// element's text.
func AttrText(name string) TextFunc {
	return func(el *page.Box) string {
		if v, ok := el.Attr(name); ok && v != "" {
			return v
		}
		return fullText(el)
	}
}

// fullText returns the whole text of the element, including parts placed
// on earlier pages.
func fullText(el *page.Box) string {
	if el.Source != nil {
		return strings.Join(strings.Fields(el.Source.TextContent()), " ")
	}
	return strings.Join(strings.Fields(el.TextContent()), " ")
}

// Footnote adds an entry to the footer of the page a matching element ends
// on and marks the element with the entry's number. Numbers restart on
// every page. A nil getter uses the element's text.
func Footnote(selector string, getter TextFunc) *pagination.Rule {
	if getter == nil {
		getter = AttrText("data-footnote")
	}
	return &pagination.Rule{
		Name:     "footnote",
		Selector: selector,
		AfterAdd: func(el *page.Box, st *pagination.State) {
			n := len(st.Page.Footnotes) + 1
			st.Page.Footnotes = append(st.Page.Footnotes, &page.Footnote{Number: n, Text: getter(el), Ref: el})
			el.Append(page.NewElement("sup", content.Attrs("class", "footnote-ref"), page.NewText(strconv.Itoa(n), nil)))
		},
	}
}

type reference struct {
	el     *page.Box
	target string
	// last is the most recent label, so numbers follow page order.
	last *page.Box
}

type references struct {
	refs []*reference
}

// PageReference records matching links by their href target and, once the
// book is bound, appends the number of every page holding the target.
func PageReference(selector string) *pagination.Rule {
	r := &pagination.Rule{Name: "page-reference", Selector: selector}
	state := func(st *pagination.State) *references {
		return pagination.Value(st.Store(), r, func() *references { return &references{} })
	}
	r.AfterAdd = func(el *page.Box, st *pagination.State) {
		href, ok := el.Attr("href")
		if !ok || !strings.HasPrefix(href, "#") || len(href) < 2 {
			return
		}
		el.DelAttr("href")
		refs := state(st)
		refs.refs = append(refs.refs, &reference{el: el, target: href[1:]})
	}
	r.AfterBind = func(pg *page.Page, index int, st *pagination.State) {
		for _, ref := range state(st).refs {
			if pg.FindByID(ref.target) == nil {
				continue
			}
			num := pg.Number
			if num == 0 {
				num = index + 1
			}
			label := page.NewElement("span", content.Attrs("class", "page-ref"), page.NewText(" "+strconv.Itoa(num), nil))
			anchor := ref.el
			if ref.last != nil {
				anchor = ref.last
			}
			if !anchor.InsertAfter(label) {
				ref.el.Append(label)
			}
			ref.last = label
		}
	}
	return r
}

// PageNumber numbers every page from 1 in bound order.
func PageNumber() *pagination.Rule {
	return &pagination.Rule{
		Name: "page-number",
		AfterBind: func(pg *page.Page, index int, _ *pagination.State) {
			pg.Number = index + 1
		},
	}
}

type header struct {
	text string
}

// RunningHeader stamps the text of the last matching element on every
// later page. The page carrying the element itself gets no header.
func RunningHeader(selector string) *pagination.Rule {
	r := &pagination.Rule{Name: "running-header", Selector: selector}
	state := func(st *pagination.State) *header {
		return pagination.Value(st.Store(), r, func() *header { return &header{} })
	}
	r.AfterAdd = func(el *page.Box, st *pagination.State) {
		state(st).text = fullText(el)
		st.Page.RunningHeader = ""
	}
	r.NewPage = func(pg *page.Page, st *pagination.State) {
		pg.RunningHeader = state(st).text
	}
	return r
}
