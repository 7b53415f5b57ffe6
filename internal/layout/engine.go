// Package layout is a small line-box approximation of CSS block and inline
// formatting. It measures the flow region of a page for the overflow oracle
// and positions text for the PDF renderer.
package layout

import (
	"strconv"
	"strings"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/style"
	"github.com/gompdf/pagebind/internal/text"
)

// Run is a piece of text drawn with one font.
type Run struct {
	X     float64
	Text  string
	Font  Font
	Color string
}

// Line is one laid out line box.
type Line struct {
	Y        float64
	Height   float64
	Baseline float64
	Runs     []Run
}

// Rect is a non-text box: images, rules and block backgrounds.
type Rect struct {
	X, Y, W, H float64
	Tag        string
	Src        string
}

// Frame is the result of laying out a tree. Coordinates are relative to the
// top-left corner of the region.
type Frame struct {
	Width  float64
	Height float64
	Lines  []Line
	Rects  []Rect
}

// Engine lays out page boxes using cascaded styles of their source nodes.
type Engine struct {
	metrics Metrics
	styles  map[*content.Node]style.Computed
}

// NewEngine creates a layout engine. styles may be nil, in which case every
// box uses the default font.
func NewEngine(m Metrics, styles map[*content.Node]style.Computed) *Engine {
	if m == nil {
		m = GridMetrics{}
	}
	return &Engine{metrics: m, styles: styles}
}

// Metrics returns the text measurer in use.
func (e *Engine) Metrics() Metrics {
	return e.metrics
}

// Layout lays out the children of root in a region of the given width.
func (e *Engine) Layout(root *page.Box, width float64) *Frame {
	f := &Frame{Width: width}
	st := e.styleOf(root, nil)
	y, _ := e.layoutChildren(f, root, st, 0, width, 0, 0)
	f.Height = y
	return f
}

// LayoutFootnotes lays out a footer region. Notes are set at two thirds of
// the base size, one paragraph each.
func (e *Engine) LayoutFootnotes(notes []*page.Footnote, width float64) *Frame {
	f := &Frame{Width: width}
	if len(notes) == 0 {
		return f
	}
	base := FontFor(nil)
	base.Size *= 0.66
	lh := 1.2 * base.Size
	y := 0.0
	for _, n := range notes {
		il := newInline(e, 0, width, "")
		il.addText(footnoteLabel(n)+" "+n.Text, base, "", lh)
		y = il.finish(f, y)
	}
	f.Height = y
	return f
}

func footnoteLabel(n *page.Footnote) string {
	return strconv.Itoa(n.Number)
}

// styleOf returns the cascaded style of b's source, falling back to the
// parent style for synthesized boxes.
func (e *Engine) styleOf(b *page.Box, parent style.Computed) style.Computed {
	if b != nil && b.Source != nil {
		if st, ok := e.styles[b.Source]; ok && st != nil {
			return st
		}
	}
	return parent
}

// IsBlockTag reports whether a tag name is treated as block-level
func IsBlockTag(tag string) bool {
	switch strings.ToLower(tag) {
	case "div", "p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "table", "thead", "tbody", "tfoot",
		"tr", "td", "th", "header", "footer", "section", "article",
		"form", "fieldset", "hr", "blockquote", "address", "main",
		"nav", "aside", "figure", "figcaption", "pre", "body", "html",
		"dl", "dt", "dd", page.FlowTag:
		return true
	default:
		return false
	}
}

func isBlock(b *page.Box, st style.Computed) bool {
	if !b.IsElement() {
		return false
	}
	switch st.Get("display") {
	case "block", "list-item", "flex", "table":
		return true
	case "inline", "inline-block":
		return false
	case "none":
		return false
	}
	return IsBlockTag(b.Tag)
}

func hidden(b *page.Box, st style.Computed) bool {
	if !b.IsElement() {
		return false
	}
	switch b.Tag {
	case "script", "style", "head", "title", "meta", "link":
		return true
	}
	return st.Get("display") == "none"
}

// layoutChildren stacks the children of b starting at y. Consecutive
// inline children share one inline formatting context. It returns the new
// y and the bottom margin still pending collapse.
func (e *Engine) layoutChildren(f *Frame, b *page.Box, st style.Computed, x, width, y, pending float64) (float64, float64) {
	var il *inlineContext
	firstLine := !b.IsContinuation()
	flushInline := func() {
		if il == nil {
			return
		}
		if len(il.lines) > 0 || il.hasContent {
			y += pending
			pending = 0
			y = il.finish(f, y)
		}
		il = nil
	}

	for _, c := range b.Children {
		cst := e.styleOf(c, st)
		if hidden(c, cst) {
			continue
		}
		if isBlock(c, cst) {
			flushInline()
			y, pending = e.layoutBlock(f, c, cst, x, width, y, pending)
			firstLine = false
			continue
		}
		if il == nil {
			il = newInline(e, x, width, st.Get("text-align"))
			if firstLine {
				il.indent = style.ParseLength(st.Get("text-indent"), width, 0)
			}
			firstLine = false
		}
		e.collectInline(il, c, cst)
	}
	flushInline()
	return y, pending
}

// layoutBlock places a block box and returns the y after it together with
// its bottom margin.
func (e *Engine) layoutBlock(f *Frame, b *page.Box, st style.Computed, x, width, y, pending float64) (float64, float64) {
	fs := FontFor(st).Size
	mt, mr, mb, ml := style.ParseBox(st.Get("margin"), fs)
	pt, pr, pb, pl := style.ParseBox(st.Get("padding"), fs)
	if v := st.Get("margin-top"); v != "" {
		mt = style.ParseLength(v, fs, mt)
	}
	if v := st.Get("margin-bottom"); v != "" {
		mb = style.ParseLength(v, fs, mb)
	}
	if v := st.Get("padding-left"); v != "" {
		pl = style.ParseLength(v, width, pl)
	}
	if b.IsContinuation() {
		mt, pt = 0, 0
	}

	if mt > pending {
		pending = mt
	}
	y += pending
	top := y

	innerX := x + ml + pl
	innerW := width - ml - mr - pl - pr
	if innerW < 0 {
		innerW = 0
	}

	if h := st.Get("height"); h != "" && h != "auto" {
		y = top + pt + style.ParseLength(h, 0, 0) + pb
		f.Rects = append(f.Rects, Rect{X: x + ml, Y: top, W: width - ml - mr, H: y - top, Tag: b.Tag})
		e.layoutChildren(f, b, st, innerX, innerW, top+pt, 0)
		return y, mb
	}

	if len(b.Children) == 0 {
		y = top + pt + pb
		if b.Tag == "hr" {
			f.Rects = append(f.Rects, Rect{X: x + ml, Y: y, W: width - ml - mr, H: 1, Tag: "hr"})
			y++
		}
		return y, mb
	}

	inner, innerPending := e.layoutChildren(f, b, st, innerX, innerW, top+pt, 0)
	return inner + innerPending + pb, mb
}

// collectInline feeds an inline box and its descendants into il.
func (e *Engine) collectInline(il *inlineContext, b *page.Box, st style.Computed) {
	switch b.Kind {
	case content.KindText:
		font := FontFor(st)
		lh := style.ParseLineHeight(st.Get("line-height"), font.Size)
		if st.Get("white-space") == "pre" {
			for i, part := range strings.Split(b.Text, "\n") {
				if i > 0 {
					il.breakLine(lh)
				}
				il.addWord(part, font, st.Get("color"), lh)
			}
			return
		}
		il.addText(b.Text, font, st.Get("color"), lh)
	case content.KindElement:
		switch b.Tag {
		case "br":
			font := FontFor(st)
			il.breakLine(style.ParseLineHeight(st.Get("line-height"), font.Size))
			return
		case "img", "svg", "video", "canvas", "iframe", "object", "embed", "input":
			w, h := e.atomSize(b, st, il.width)
			il.addAtom(w, h, b)
			return
		}
		for _, c := range b.Children {
			cst := e.styleOf(c, st)
			if hidden(c, cst) {
				continue
			}
			e.collectInline(il, c, cst)
		}
	}
}

// atomSize resolves the box of a replaced element from its attributes and
// style. Without any size hint it occupies one line.
func (e *Engine) atomSize(b *page.Box, st style.Computed, avail float64) (w, h float64) {
	fs := FontFor(st).Size
	h = 1.2 * fs
	w = 0
	if v, ok := b.Attr("height"); ok {
		h = style.ParseLength(v, 0, h)
	}
	if v, ok := b.Attr("width"); ok {
		w = style.ParseLength(v, avail, w)
	}
	if v := st.Get("height"); v != "" && v != "auto" {
		h = style.ParseLength(v, 0, h)
	}
	if v := st.Get("width"); v != "" && v != "auto" {
		w = style.ParseLength(v, avail, w)
	}
	if w > avail {
		h = h * avail / w
		w = avail
	}
	return w, h
}

// inlineContext greedily wraps words into lines. Coordinates are local to
// the context until finish places it.
type inlineContext struct {
	e      *Engine
	x      float64
	width  float64
	indent float64
	align  string

	y          float64
	lines      []Line
	atoms      []atom
	cur        Line
	curW       float64
	pendingSp  bool
	spaceFont  Font
	hasContent bool
}

type atom struct {
	rect Rect
	line int
}

func newInline(e *Engine, x, width float64, align string) *inlineContext {
	return &inlineContext{e: e, x: x, width: width, align: align}
}

func (il *inlineContext) avail() float64 {
	if len(il.lines) == 0 {
		return il.width - il.indent
	}
	return il.width
}

func (il *inlineContext) addText(s string, font Font, color string, lh float64) {
	for _, tok := range text.Tokenize(s) {
		if tok.Space {
			if len(il.cur.Runs) > 0 {
				il.pendingSp = true
				il.spaceFont = font
			}
			continue
		}
		il.addWord(tok.Text, font, color, lh)
	}
}

func (il *inlineContext) addWord(word string, font Font, color string, lh float64) {
	if word == "" {
		return
	}
	m := il.e.metrics
	w := m.Width(word, font)
	sp := 0.0
	if il.pendingSp {
		sp = m.Width(" ", il.spaceFont)
	}
	if len(il.cur.Runs) > 0 && il.curW+sp+w > il.avail() {
		il.breakLine(0)
		sp = 0
	}
	il.pendingSp = false
	il.grow(lh, font.Size)
	il.curW += sp
	il.cur.Runs = append(il.cur.Runs, Run{X: il.curW, Text: word, Font: font, Color: color})
	il.curW += w
	il.hasContent = true
}

func (il *inlineContext) addAtom(w, h float64, b *page.Box) {
	if len(il.cur.Runs) > 0 && il.curW+w > il.avail() {
		il.breakLine(0)
	}
	il.pendingSp = false
	src, _ := b.Attr("src")
	il.atoms = append(il.atoms, atom{rect: Rect{X: il.curW, W: w, H: h, Tag: b.Tag, Src: src}, line: len(il.lines)})
	// placeholder run so the line is not considered empty
	il.cur.Runs = append(il.cur.Runs, Run{X: il.curW})
	il.grow(h, h)
	il.curW += w
	il.hasContent = true
}

func (il *inlineContext) grow(height, ascent float64) {
	if height > il.cur.Height {
		il.cur.Height = height
	}
	if ascent > il.cur.Baseline {
		il.cur.Baseline = ascent
	}
}

// breakLine ends the current line. An empty line takes minHeight, which is
// how consecutive <br> elements open vertical space.
func (il *inlineContext) breakLine(minHeight float64) {
	if il.cur.Height < minHeight {
		il.cur.Height = minHeight
	}
	offset := 0.0
	if len(il.lines) == 0 {
		offset = il.indent
	}
	switch il.align {
	case "right", "end":
		offset += il.avail() - il.curW
	case "center":
		offset += (il.avail() - il.curW) / 2
	}
	for i := range il.cur.Runs {
		il.cur.Runs[i].X += il.x + offset
	}
	for i := range il.atoms {
		if il.atoms[i].line == len(il.lines) {
			il.atoms[i].rect.X += il.x + offset
		}
	}
	il.cur.Y = il.y
	il.y += il.cur.Height
	il.lines = append(il.lines, il.cur)
	il.cur = Line{}
	il.curW = 0
	il.pendingSp = false
}

// finish emits the last line and places the context at top. It returns the
// y below the last line.
func (il *inlineContext) finish(f *Frame, top float64) float64 {
	if len(il.cur.Runs) > 0 || il.cur.Height > 0 {
		il.breakLine(0)
	}
	for i := range il.lines {
		il.lines[i].Y += top
		il.lines[i].Baseline += il.lines[i].Y
	}
	for _, a := range il.atoms {
		ln := il.lines[a.line]
		a.rect.Y = ln.Baseline - a.rect.H
		f.Rects = append(f.Rects, a.rect)
	}
	f.Lines = append(f.Lines, il.lines...)
	return top + il.y
}
