package pagination

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/text"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// flow is the working state of one pass.
type flow struct {
	opts    Options
	rules   *RuleSet
	session *measure.Session
	logger  *log.Logger
	state   *State
	diags   []page.Diagnostic

	total    int
	consumed int
}

func (f *flow) node(ctx context.Context, n *content.Node, owner *Descriptor) error {
	switch n.Kind {
	case content.KindElement:
		if n.Tag == "script" {
			f.consumed += n.Count()
			return nil
		}
		return f.element(ctx, n)
	case content.KindText:
		f.consumed++
		f.text(n, owner)
	default:
		f.consumed++
		f.diagnose(pberrors.ErrCodeUnsupportedNodeType, n.Name(), "node kind not supported, skipped")
	}
	return nil
}

// checkpoint is the only place a pass yields or notices cancellation.
func (f *flow) checkpoint(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.opts.Delay <= 0 {
		runtime.Gosched()
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.opts.Delay):
		return nil
	}
}

func (f *flow) element(ctx context.Context, n *content.Node) error {
	if err := f.checkpoint(ctx); err != nil {
		return err
	}
	f.consumed++
	st := f.state

	el := page.Shell(n)
	matched := f.rules.matching(n)
	f.beforeAdd(el, matched)
	if st.anyDropped() {
		f.consumed += n.Count() - 1
		return nil
	}

	st.attachPoint().Append(el)
	d := &Descriptor{Tag: el.Tag, Attrs: el.Attrs, Source: n, Box: el}
	st.push(d)

	if len(n.Children) == 0 {
		f.atomic(d)
	}
	for _, c := range n.Children {
		if st.dropped(d) {
			f.consumed += c.Count()
			continue
		}
		if err := f.node(ctx, c, d); err != nil {
			return err
		}
	}

	f.popTo(d)
	if d.Dropped {
		return nil
	}
	for _, r := range matched {
		if r.AfterAdd != nil {
			r.AfterAdd(d.Box, st)
		}
	}
	return nil
}

// beforeAdd runs the BeforeAdd hooks of the matched rules. Each hook runs
// against a backup; if the hook leaves the page overflowing, the backup is
// restored and the hook retried once on a new page.
func (f *flow) beforeAdd(el *page.Box, matched []*entry) {
	st := f.state
	for _, r := range matched {
		if r.BeforeAdd == nil {
			continue
		}
		b := f.backup(el)
		r.BeforeAdd(el, st)
		if !f.overflows() {
			continue
		}
		f.logger.Debug("hook overflowed the page, retrying on a new page", "rule", r.label(), "node", el.Name())
		f.restore(b, el)
		f.newPage()
		r.BeforeAdd(el, st)
	}
}

type backup struct {
	page     *page.Page
	snap     *page.Page
	boxes    map[*page.Box]*page.Box
	el       *page.Box
	pages    int
	path     []*Descriptor
	pathVals []Descriptor
}

func (f *flow) backup(el *page.Box) *backup {
	st := f.state
	snap, boxes := st.Page.Snapshot()
	b := &backup{
		page:     st.Page,
		snap:     snap,
		boxes:    boxes,
		el:       el.Clone(),
		pages:    len(st.Pages),
		path:     append([]*Descriptor(nil), st.Path...),
		pathVals: make([]Descriptor, len(st.Path)),
	}
	for i, d := range st.Path {
		b.pathVals[i] = *d
	}
	return b
}

func (f *flow) restore(b *backup, el *page.Box) {
	st := f.state
	if b.pages <= len(st.Pages) {
		st.Pages = st.Pages[:b.pages]
	}
	b.page.Restore(b.snap)
	st.Page = b.page

	st.Path = b.path
	for i, d := range st.Path {
		*d = b.pathVals[i]
		if mapped, ok := b.boxes[d.Box]; ok {
			d.Box = mapped
		}
	}

	el.Attrs = b.el.Attrs
	el.Empty()
	for _, c := range append([]*page.Box(nil), b.el.Children...) {
		el.Append(c)
	}
}

// atomic handles an element without children once it is attached.
func (f *flow) atomic(d *Descriptor) {
	if !f.overflows() {
		return
	}
	st := f.state
	if st.Page.HasContentOutside(d.Box) {
		f.moveToNextPage(d)
		if d.Dropped || !f.overflows() {
			return
		}
	}
	d.Dropped = true
	d.Box.Detach()
	f.diagnose(pberrors.ErrCodeUnsplittableContent, d.Box.Name(), "element does not fit on an empty page, dropped")
}

// text places one text node, splitting it across as many pages as needed.
func (f *flow) text(n *content.Node, owner *Descriptor) {
	st := f.state
	run := n.Text
	moved, broke := false, false

	for run != "" {
		if owner != nil && st.dropped(owner) {
			f.logger.Debug("text skipped with its dropped container", "node", n.Name())
			return
		}

		tb := page.NewText("", n)
		st.attachPoint().Append(tb)
		fits := func(prefix string) bool {
			tb.Text = prefix
			return !f.overflows()
		}
		res := text.Split(run, fits)

		switch {
		case res.Cancelled:
			tb.Detach()
			if owner != nil && !moved && st.Page.HasContentOutside(owner.Box) {
				moved = true
				f.moveToNextPage(owner)
				continue
			}
			if !broke && st.Page.HasContent() {
				broke = true
				f.newPage()
				continue
			}

			st.attachPoint().Append(tb)
			prefix := text.FitRunes(run, fits)
			if prefix == "" {
				tb.Detach()
				f.diagnose(pberrors.ErrCodeUnsplittableContent, n.Name(), "text does not fit on an empty page, dropped")
				return
			}
			tb.Text = prefix
			f.diagnose(pberrors.ErrCodeUnsplittableContent, n.Name(), "word wider than the page, broken inside the word")
			run = run[len(prefix):]
			f.newPage()
			broke = true

		case res.Placed == "":
			tb.Detach()
			f.diagnose(pberrors.ErrCodeUnsplittableContent, n.Name(), "whitespace does not fit, dropped")
			return

		default:
			tb.Text = res.Placed
			run = res.Remainder
			if run != "" {
				f.newPage()
				broke = true
			}
		}
	}
}

// moveToNextPage carries the open element d, with what it holds so far
// and its footnotes, over to a new page.
func (f *flow) moveToNextPage(d *Descriptor) {
	st := f.state
	f.popTo(d)

	box := d.Box
	notes := st.Page.TakeFootnotes(box)
	box.Detach()

	f.newPage()
	if st.anyDropped() {
		d.Dropped = true
		return
	}
	st.attachPoint().Append(box)
	st.push(d)
	st.Page.Footnotes = append(st.Page.Footnotes, notes...)
	f.logger.Debug("moved element to next page", "node", box.Name(), "page", len(st.Pages), "footnotes", len(notes))
}

// newPage creates a page, re-opens the path on it and runs the NewPage
// hooks. Ancestors that overflow the empty page are dropped, innermost
// first.
func (f *flow) newPage() *page.Page {
	st := f.state
	p := page.New(f.opts.Size, f.opts.Margins)

	parent, dropped := p.Flow, false
	for _, d := range st.Path {
		if dropped || d.Dropped {
			d.Dropped, dropped = true, true
			continue
		}
		shell := d.Box.ShellClone()
		shell.SetAttr(page.ContinuationAttr, "true")
		if id, ok := shell.Attr("id"); ok {
			shell.DelAttr("id")
			f.logger.Debug("continuation drops duplicate id", "id", id, "node", shell.Tag)
		}
		parent.Append(shell)
		parent = shell
		d.Box, d.Attrs, d.Continuation = shell, shell.Attrs, true
	}

	st.Pages = append(st.Pages, p)
	p.Index = len(st.Pages) - 1
	st.Page = p

	for _, r := range f.rules.rules {
		if r.NewPage != nil {
			r.NewPage(p, st)
		}
	}
	f.report()

	for f.overflows() {
		d := f.innermostOpen()
		if d == nil {
			break
		}
		d.Dropped = true
		d.Box.Detach()
		f.diagnose(pberrors.ErrCodeUnsplittableContent, d.Box.Name(), "element overflows an empty page, dropped with its remaining content")
	}
	return st.Page
}

func (f *flow) innermostOpen() *Descriptor {
	path := f.state.Path
	for i := len(path) - 1; i >= 0; i-- {
		if !path[i].Dropped {
			return path[i]
		}
	}
	return nil
}

// popTo pops the path up to and including d.
func (f *flow) popTo(d *Descriptor) {
	st := f.state
	for _, p := range st.Path {
		if p == d {
			for st.pop() != d {
			}
			return
		}
	}
}

func (f *flow) overflows() bool {
	f.session.Attach(f.state.Page)
	return f.session.Overflows()
}

func (f *flow) report() {
	if f.opts.Progress == nil {
		return
	}
	frac := 0.0
	if f.total > 0 {
		frac = float64(f.consumed) / float64(f.total)
	}
	if frac > 1 {
		frac = 1
	}
	done := f.state.Pages[:len(f.state.Pages)-1]
	f.opts.Progress(Progress{
		Pages:    len(f.state.Pages),
		Fraction: frac,
		Book:     &page.Book{Pages: done, Size: f.opts.Size, Margins: f.opts.Margins},
	})
}

func (f *flow) diagnose(code pberrors.Code, node, msg string) {
	idx := -1
	if f.state.Page != nil {
		idx = f.state.Page.Index
	}
	f.diags = append(f.diags, page.Diagnostic{Code: code, Node: node, Message: msg, Page: idx})
	f.logger.Warn(msg, "code", code, "node", node, "page", idx+1)
}

// reorder moves pages to the sides they prefer, inserting blanks, and
// points diagnostics at the pages' new positions.
func (f *flow) reorder() {
	st := f.state
	for i, p := range st.Pages {
		p.Index = i
	}
	ordered := arrange.Reorder(st.Pages, func() *page.Page {
		return page.NewBlank(f.opts.Size, f.opts.Margins)
	})
	moved := make(map[int]int, len(st.Pages))
	for i, p := range ordered {
		if !p.Blank {
			moved[p.Index] = i
		}
	}
	for i := range f.diags {
		if to, ok := moved[f.diags[i].Page]; ok {
			f.diags[i].Page = to
		}
	}
	if blanks := len(ordered) - len(st.Pages); blanks > 0 {
		f.logger.Debug("pages reordered for side preferences", "blanks", blanks)
	}
	st.Pages = ordered
}

// bind stamps indices and runs the AfterBind hooks, rule order outermost.
func (f *flow) bind() {
	st := f.state
	for i, p := range st.Pages {
		p.Index = i
	}
	for _, r := range f.rules.rules {
		if r.AfterBind == nil {
			continue
		}
		for i, p := range st.Pages {
			r.AfterBind(p, i, st)
		}
	}
}
