// Package arrange re-sequences a finished page list for output. None of
// the functions here touch page content; they return new slices that
// reuse the given pages and add blanks from the supplied factory.
package arrange

import (
	"strings"

	"github.com/gompdf/pagebind/internal/page"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// BlankFunc makes a padding page.
type BlankFunc func() *page.Page

// fitsAt reports whether p may sit at 0-based position pos. Position 0 is
// the first right-hand page.
func fitsAt(p *page.Page, pos int) bool {
	switch {
	case p.AlwaysRight:
		return pos%2 == 0
	case p.AlwaysLeft:
		return pos%2 == 1
	}
	return true
}

// Reorder enforces side preferences. Right-preferring pages land on odd
// 1-based positions and left-preferring pages on even ones. A misplaced
// in-flow page gets a blank in front of it. A misplaced run of out-of-flow
// pages instead pulls the in-flow page right after it forward, if that page
// can take the slot; otherwise it gets a blank as well.
func Reorder(pages []*page.Page, blank BlankFunc) []*page.Page {
	queue := append([]*page.Page(nil), pages...)
	out := make([]*page.Page, 0, len(pages)+2)

	for i := 0; i < len(queue); {
		p := queue[i]
		if !p.OutOfFlow {
			if !fitsAt(p, len(out)) {
				out = append(out, blank())
			}
			out = append(out, p)
			i++
			continue
		}

		j := i
		for j < len(queue) && queue[j].OutOfFlow {
			j++
		}
		if !fitsAt(p, len(out)) {
			if j < len(queue) && fitsAt(queue[j], len(out)) {
				out = append(out, queue[j])
				queue = append(queue[:j:j], queue[j+1:]...)
			} else {
				out = append(out, blank())
			}
		}
		for _, g := range queue[i:j] {
			if !fitsAt(g, len(out)) {
				out = append(out, blank())
			}
			out = append(out, g)
		}
		i = j
	}
	return out
}

// PadPages appends one blank to an odd-length sequence.
func PadPages(pages []*page.Page, blank BlankFunc) []*page.Page {
	out := append([]*page.Page(nil), pages...)
	if len(out)%2 == 1 {
		out = append(out, blank())
	}
	return out
}

// OrderBooklet pads to a multiple of four and returns the pages in
// imposition order. Consecutive pairs are the two sides of each sheet:
// for eight pages, (7,0) (1,6) (5,2) (3,4).
func OrderBooklet(pages []*page.Page, blank BlankFunc) []*page.Page {
	padded := append([]*page.Page(nil), pages...)
	for len(padded)%4 != 0 {
		padded = append(padded, blank())
	}
	n := len(padded)
	out := make([]*page.Page, 0, n)
	for i := 0; i < n/2; i += 2 {
		out = append(out, padded[n-1-i], padded[i], padded[i+1], padded[n-2-i])
	}
	return out
}

// Sheet is one output surface: a single page or a left/right pair.
type Sheet []*page.Page

// Sheets groups a sequence into pairs. A trailing odd page gets a sheet of
// its own.
func Sheets(pages []*page.Page) []Sheet {
	out := make([]Sheet, 0, (len(pages)+1)/2)
	for i := 0; i < len(pages); i += 2 {
		if i+1 < len(pages) {
			out = append(out, Sheet{pages[i], pages[i+1]})
		} else {
			out = append(out, Sheet{pages[i]})
		}
	}
	return out
}

// Layout names an output imposition.
type Layout string

const (
	// LayoutPages emits every page on its own sheet.
	LayoutPages Layout = "pages"
	// LayoutSpreads pairs facing pages, the first page alone on the right.
	LayoutSpreads Layout = "spreads"
	// LayoutBooklet emits printer's spreads for saddle stitching.
	LayoutBooklet Layout = "booklet"
	// LayoutFlip pairs the front and back of every leaf.
	LayoutFlip Layout = "flip"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(strings.ToLower(strings.TrimSpace(s))); l {
	case LayoutPages, LayoutSpreads, LayoutBooklet, LayoutFlip:
		return l, nil
	case "":
		return LayoutPages, nil
	}
	return "", pberrors.New(pberrors.ErrCodeInvalidLayout, "unknown layout %q (want pages, spreads, booklet or flip)", s)
}

// Arrange groups bound pages into sheets for layout l. Side preferences
// are already settled by the pagination pass, so pages keep their order.
func Arrange(ordered []*page.Page, l Layout, blank BlankFunc) []Sheet {
	switch l {
	case LayoutSpreads:
		withSpacer := append([]*page.Page{blank()}, ordered...)
		return Sheets(PadPages(withSpacer, blank))
	case LayoutBooklet:
		return Sheets(OrderBooklet(ordered, blank))
	case LayoutFlip:
		return Sheets(PadPages(ordered, blank))
	}
	out := make([]Sheet, len(ordered))
	for i, p := range ordered {
		out[i] = Sheet{p}
	}
	return out
}
