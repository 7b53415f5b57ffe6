package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagebind/internal/content"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

func TestBoxTreeOperations(t *testing.T) {
	src := content.Element("p", content.Attrs("id", "a", "class", "x"))
	p := Shell(src)
	txt := NewText("hello", nil)
	p.Append(txt)
	em := NewElement("em", nil, NewText(" world", nil))
	p.Append(em)

	assert.Equal(t, "hello world", p.TextContent())
	assert.True(t, p.Contains(txt))
	assert.False(t, txt.Contains(p))

	other := NewElement("div", nil)
	other.Append(em)
	assert.Len(t, p.Children, 1)
	assert.Same(t, other, em.Parent)

	p.AddClass("y")
	p.AddClass("x")
	v, _ := p.Attr("class")
	assert.Equal(t, "x y", v)
	assert.True(t, p.DelAttr("id"))
	assert.False(t, p.DelAttr("id"))
	assert.Equal(t, "p#a.x", p.Name())

	src.Attrs[1].Val = "changed"
	v, _ = p.Attr("class")
	assert.Equal(t, "x y", v, "shell must not alias source attributes")
}

func TestBoxClone(t *testing.T) {
	root := NewElement("div", nil, NewElement("p", nil, NewText("a", nil)))
	c := root.Clone()

	require.Len(t, c.Children, 1)
	assert.Nil(t, c.Parent)
	assert.NotSame(t, root.Children[0], c.Children[0])
	assert.Same(t, c, c.Children[0].Parent)
	c.Children[0].Children[0].Text = "b"
	assert.Equal(t, "a", root.TextContent())
}

func TestHasContent(t *testing.T) {
	pg := New(SizePocket, DefaultMargins)
	assert.False(t, pg.HasContent())

	shell := NewElement("div", nil)
	pg.Flow.Append(shell)
	shell.Append(NewText("   ", nil))
	assert.False(t, pg.HasContent())

	para := NewElement("p", nil, NewText("word", nil))
	shell.Append(para)
	assert.True(t, pg.HasContent())
	assert.False(t, pg.HasContentOutside(para))

	pg.Flow.Append(NewElement("img", nil))
	assert.True(t, pg.HasContentOutside(para))
}

func TestSnapshotRestore(t *testing.T) {
	pg := New(SizeA5, DefaultMargins)
	para := NewElement("p", nil, NewText("one", nil))
	pg.Flow.Append(para)
	pg.Footnotes = append(pg.Footnotes, &Footnote{Number: 1, Text: "n", Ref: para})

	snap, m := pg.Snapshot()
	require.Contains(t, m, para)
	assert.Same(t, m[para], snap.Footnotes[0].Ref)

	para.Append(NewText(" two", nil))
	pg.AddClass("bleed")
	pg.Footnotes = nil

	live := pg
	pg.Restore(snap)
	assert.Same(t, live, pg)
	assert.Equal(t, "one", pg.Text())
	assert.Empty(t, pg.Classes)
	require.Len(t, pg.Footnotes, 1)
	assert.Same(t, pg.Flow.Children[0], pg.Footnotes[0].Ref)
}

func TestTakeFootnotes(t *testing.T) {
	pg := New(SizeA5, DefaultMargins)
	a := NewElement("p", nil)
	b := NewElement("p", nil)
	inner := NewElement("span", nil)
	a.Append(inner)
	pg.Footnotes = []*Footnote{{Number: 1, Ref: inner}, {Number: 2, Ref: b}}

	taken := pg.TakeFootnotes(a)
	require.Len(t, taken, 1)
	assert.Equal(t, 1, taken[0].Number)
	require.Len(t, pg.Footnotes, 1)
	assert.Equal(t, 2, pg.Footnotes[0].Number)
}

func TestFindByIDSkipsContinuations(t *testing.T) {
	pg := New(SizeA5, DefaultMargins)
	cont := NewElement("h2", content.Attrs("id", "x", ContinuationAttr, "true"))
	orig := NewElement("h2", content.Attrs("id", "x"))
	pg.Flow.Append(cont)
	pg.Flow.Append(orig)

	assert.Same(t, orig, pg.FindByID("x"))
	assert.Nil(t, pg.FindByID(""))
}

func TestSizeByName(t *testing.T) {
	s, ok := SizeByName("letter")
	require.True(t, ok)
	assert.Equal(t, 612.0, s.Width)
	_, ok = SizeByName("tabloid")
	assert.False(t, ok)

	assert.InDelta(t, 220.0, DefaultMargins.ContentWidth(SizePocket), 1e-9)
	assert.InDelta(t, 300.0, DefaultMargins.ContentHeight(SizePocket), 1e-9)
}

func TestBookHelpers(t *testing.T) {
	b := &Book{Size: SizePocket, Margins: DefaultMargins, Pages: []*Page{New(SizePocket, DefaultMargins)}}
	b.Diagnostics = []Diagnostic{
		{Code: pberrors.ErrCodeUnsplittableContent, Node: "img", Message: "dropped", Page: 0},
		{Code: pberrors.ErrCodeUnsupportedNodeType, Node: "comment", Message: "skipped", Page: -1},
	}

	blank := b.Blank()
	assert.True(t, blank.Blank)
	assert.False(t, blank.HasContent())
	assert.Len(t, b.DiagnosticsByCode(pberrors.ErrCodeUnsplittableContent), 1)
	assert.Equal(t, "UNSPLITTABLE_CONTENT: img (page 1): dropped", b.Diagnostics[0].String())
	assert.Equal(t, "UNSUPPORTED_NODE_TYPE: comment: skipped", b.Diagnostics[1].String())
	assert.True(t, pberrors.Is(b.Diagnostics[0].Err(), pberrors.ErrCodeUnsplittableContent))

	c := b.WithPages(nil)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, 0, c.Len())
}

func TestInsertAfter(t *testing.T) {
	a, b, c := NewText("a", nil), NewText("b", nil), NewText("c", nil)
	parent := NewElement("p", nil, a, c)

	require.True(t, a.InsertAfter(b))
	assert.Equal(t, "abc", parent.TextContent())
	assert.Same(t, parent, b.Parent)

	assert.False(t, NewText("loose", nil).InsertAfter(NewText("x", nil)))
}
