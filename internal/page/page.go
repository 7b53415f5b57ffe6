// Package page holds the mutable page model produced by pagination.
package page

import (
	"strings"

	"github.com/gompdf/pagebind/internal/content"
)

// Size represents a page size in points (1/72 inch)
type Size struct {
	Width  float64
	Height float64
	Name   string
}

// Standard page sizes in points
var (
	SizeA3     = Size{Width: 841.89, Height: 1190.55, Name: "A3"}
	SizeA4     = Size{Width: 595.28, Height: 841.89, Name: "A4"}
	SizeA5     = Size{Width: 419.53, Height: 595.28, Name: "A5"}
	SizeA6     = Size{Width: 297.64, Height: 419.53, Name: "A6"}
	SizeLetter = Size{Width: 612.00, Height: 792.00, Name: "Letter"}
	SizeLegal  = Size{Width: 612.00, Height: 1008.00, Name: "Legal"}
	// SizePocket is a small trade format, 300x400pt.
	SizePocket = Size{Width: 300, Height: 400, Name: "Pocket"}
)

// SizeByName looks up a standard size case-insensitively.
func SizeByName(name string) (Size, bool) {
	for _, s := range []Size{SizeA3, SizeA4, SizeA5, SizeA6, SizeLetter, SizeLegal, SizePocket} {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Size{}, false
}

// Margins represents page margins. Inner is the binding side.
type Margins struct {
	Top    float64
	Bottom float64
	Inner  float64
	Outer  float64
}

// DefaultMargins are used when none are configured.
var DefaultMargins = Margins{Top: 40, Bottom: 60, Inner: 30, Outer: 50}

// ContentWidth returns the width of the flow region.
func (m Margins) ContentWidth(s Size) float64 {
	return s.Width - m.Inner - m.Outer
}

// ContentHeight returns the height available to flow and footer.
func (m Margins) ContentHeight(s Size) float64 {
	return s.Height - m.Top - m.Bottom
}

// Footnote is one entry in a page's footer region.
type Footnote struct {
	Number int
	Text   string
	// Ref is the element the note was attached to.
	Ref *Box
}

// Page is a fixed-size container with a flow region and a footer region.
type Page struct {
	// Flow is the root of the flow region. Its children are the top-level
	// boxes placed on the page.
	Flow      *Box
	Footnotes []*Footnote

	AlwaysLeft  bool
	AlwaysRight bool
	OutOfFlow   bool
	// Blank marks pages inserted by arrangement.
	Blank bool

	Index         int
	Number        int
	RunningHeader string
	Classes       []string

	Size    Size
	Margins Margins
}

// FlowTag is the tag of every page's flow root.
const FlowTag = "flow"

// New creates an empty page.
func New(size Size, margins Margins) *Page {
	return &Page{
		Flow:    &Box{Kind: content.KindElement, Tag: FlowTag},
		Size:    size,
		Margins: margins,
	}
}

// NewBlank creates an empty page flagged as padding.
func NewBlank(size Size, margins Margins) *Page {
	p := New(size, margins)
	p.Blank = true
	return p
}

// SetPreference locks the page to one side. Valid sides are "left" and
// "right"; anything else clears the lock.
func (p *Page) SetPreference(side string) {
	p.AlwaysLeft = side == "left"
	p.AlwaysRight = side == "right"
}

// AddClass tags the page, e.g. "bleed" or "spread".
func (p *Page) AddClass(c string) {
	if !p.HasClass(c) {
		p.Classes = append(p.Classes, c)
	}
}

// HasClass reports whether the page carries class c.
func (p *Page) HasClass(c string) bool {
	for _, have := range p.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// atomicTags are elements that count as content without any text.
var atomicTags = map[string]bool{
	"img": true, "hr": true, "svg": true, "video": true, "canvas": true,
	"iframe": true, "object": true, "embed": true, "input": true,
}

// HasContent reports whether the flow region holds anything besides empty
// element shells.
func (p *Page) HasContent() bool {
	return p.hasContentExcept(nil)
}

// HasContentOutside reports whether the flow region holds content that is
// not inside b.
func (p *Page) HasContentOutside(b *Box) bool {
	return p.hasContentExcept(b)
}

func (p *Page) hasContentExcept(skip *Box) bool {
	found := false
	p.Flow.Walk(func(c *Box) bool {
		if found || (skip != nil && c == skip) {
			return false
		}
		switch {
		case c.Kind == content.KindText && strings.TrimSpace(c.Text) != "":
			found = true
		case c.IsElement() && atomicTags[c.Tag]:
			found = true
		}
		return !found
	})
	return found
}

// Text returns the text of the flow region.
func (p *Page) Text() string {
	return p.Flow.TextContent()
}

// Find searches the flow region.
func (p *Page) Find(match func(*Box) bool) *Box {
	return p.Flow.Find(match)
}

// FindByID returns the box carrying id, ignoring continuation shells.
func (p *Page) FindByID(id string) *Box {
	if id == "" {
		return nil
	}
	return p.Flow.Find(func(b *Box) bool {
		v, ok := b.Attr("id")
		return ok && v == id && !b.IsContinuation()
	})
}

// Snapshot deep-copies the page. The returned map relates every box of the
// live flow tree to its copy so callers can re-point references after a
// Restore.
func (p *Page) Snapshot() (*Page, map[*Box]*Box) {
	m := make(map[*Box]*Box)
	c := *p
	c.Flow = p.Flow.cloneInto(m)
	c.Footnotes = make([]*Footnote, len(p.Footnotes))
	for i, fn := range p.Footnotes {
		cp := *fn
		if mapped, ok := m[fn.Ref]; ok {
			cp.Ref = mapped
		}
		c.Footnotes[i] = &cp
	}
	c.Classes = append([]string(nil), p.Classes...)
	return &c, m
}

// Clone deep-copies the page.
func (p *Page) Clone() *Page {
	c, _ := p.Snapshot()
	return c
}

// Restore overwrites p in place with the state held by snap, so existing
// pointers to p stay valid.
func (p *Page) Restore(snap *Page) {
	*p = *snap
}

// TakeFootnotes removes and returns the footnotes whose reference lies
// inside b.
func (p *Page) TakeFootnotes(b *Box) []*Footnote {
	var keep, taken []*Footnote
	for _, fn := range p.Footnotes {
		if fn.Ref != nil && b.Contains(fn.Ref) {
			taken = append(taken, fn)
		} else {
			keep = append(keep, fn)
		}
	}
	p.Footnotes = keep
	return taken
}
