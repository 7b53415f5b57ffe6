package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/style"
)

// grid gives every rune 6pt at the default 12px font.
var grid = GridMetrics{Advance: 0.5}

func flowWith(children ...*page.Box) *page.Box {
	return page.NewElement(page.FlowTag, nil, children...)
}

func TestLayoutWrapsWords(t *testing.T) {
	e := NewEngine(grid, nil)
	p := page.NewElement("p", nil, page.NewText("aaaa bbbb cccc", nil))

	f := e.Layout(flowWith(p), 60)

	require.Len(t, f.Lines, 2)
	assert.Equal(t, "aaaa", f.Lines[0].Runs[0].Text)
	assert.Equal(t, "bbbb", f.Lines[0].Runs[1].Text)
	assert.InDelta(t, 30.0, f.Lines[0].Runs[1].X, 1e-9)
	assert.Equal(t, "cccc", f.Lines[1].Runs[0].Text)
	assert.InDelta(t, 14.4, f.Lines[1].Y, 1e-9)
	assert.InDelta(t, 28.8, f.Height, 1e-9)
}

func TestLayoutInlineElementsShareLines(t *testing.T) {
	e := NewEngine(grid, nil)
	p := page.NewElement("p", nil,
		page.NewText("ab ", nil),
		page.NewElement("em", nil, page.NewText("cd", nil)),
		page.NewText(" ef", nil),
	)

	f := e.Layout(flowWith(p), 1000)

	require.Len(t, f.Lines, 1)
	require.Len(t, f.Lines[0].Runs, 3)
	assert.InDelta(t, 14.4, f.Height, 1e-9)
}

func TestLayoutBreaksAndBlocks(t *testing.T) {
	e := NewEngine(grid, nil)
	flow := flowWith(
		page.NewElement("p", nil, page.NewText("one", nil), page.NewElement("br", nil), page.NewText("two", nil)),
		page.NewElement("div", nil, page.NewText("three", nil)),
		page.NewElement("img", content.Attrs("height", "50")),
	)

	f := e.Layout(flow, 200)

	require.Len(t, f.Lines, 4)
	require.Len(t, f.Rects, 1)
	assert.Equal(t, "img", f.Rects[0].Tag)
	assert.InDelta(t, 3*14.4+50, f.Height, 1e-9)
}

func TestLayoutHonorsStyles(t *testing.T) {
	para := content.Element("p", nil, content.Text("word"))
	tall := content.Element("div", content.Attrs("style", "height: 500px"))
	root := content.Element("body", nil, para, tall)

	se := style.NewEngine(nil)
	require.NoError(t, se.AddCSS(`p { margin: 10px 0; font-size: 20px; line-height: 1; } body { font-size: 12px }`))
	styles := se.Compute(root)
	e := NewEngine(grid, styles)

	p := page.Shell(para)
	p.Append(page.NewText("word", para.Children[0]))
	f := e.Layout(flowWith(p), 300)
	assert.InDelta(t, 10+20, f.Height, 1e-9, "top margin plus one 20px line")

	p.SetAttr(page.ContinuationAttr, "true")
	f = e.Layout(flowWith(p), 300)
	assert.InDelta(t, 20.0, f.Height, 1e-9, "continuations drop their top margin")

	f = e.Layout(flowWith(page.Shell(tall)), 300)
	assert.InDelta(t, 500.0, f.Height, 1e-9)
}

func TestLayoutIsMonotonic(t *testing.T) {
	e := NewEngine(grid, nil)
	txt := page.NewText("", nil)
	flow := flowWith(page.NewElement("p", nil, txt))
	words := "the quick brown fox jumps over the lazy dog again and again"

	last := 0.0
	for i := 0; i <= len(words); i++ {
		txt.Text = words[:i]
		h := e.Layout(flow, 50).Height
		assert.GreaterOrEqual(t, h, last, "prefix %q", words[:i])
		last = h
	}
}

func TestLayoutFootnotes(t *testing.T) {
	e := NewEngine(grid, nil)
	f := e.LayoutFootnotes([]*page.Footnote{{Number: 1, Text: "first"}, {Number: 2, Text: "second"}}, 200)

	require.Len(t, f.Lines, 2)
	assert.Equal(t, "1", f.Lines[0].Runs[0].Text)
	assert.Greater(t, f.Height, 0.0)
	assert.Zero(t, e.LayoutFootnotes(nil, 200).Height)
}

func TestFontFor(t *testing.T) {
	st := style.Computed{
		"font-family": {Value: "'Courier New', monospace"},
		"font-weight": {Value: "bold"},
		"font-style":  {Value: "italic"},
		"font-size":   {Value: "9px"},
	}
	assert.Equal(t, Font{Family: "Courier", Style: "BI", Size: 9}, FontFor(st))
	assert.Equal(t, Font{Family: "Times", Size: style.DefaultFontSize}, FontFor(nil))
}

func TestFontMetricsMeasuresCoreFonts(t *testing.T) {
	var m FontMetrics
	narrow := m.Width("iiii", Font{Family: "Helvetica", Size: 12})
	wide := m.Width("MMMM", Font{Family: "Helvetica", Size: 12})
	assert.Greater(t, wide, narrow)
	assert.Zero(t, m.Width("", Font{Family: "Helvetica", Size: 12}))
	assert.InDelta(t, m.Width("iiii", Font{Family: "Courier", Size: 10}), m.Width("MMMM", Font{Family: "Courier", Size: 10}), 1e-9)
}
