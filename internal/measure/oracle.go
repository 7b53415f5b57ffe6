// Package measure answers whether a page's flow region overflows.
package measure

import (
	"github.com/gompdf/pagebind/internal/layout"
	"github.com/gompdf/pagebind/internal/page"
)

// Oracle reports whether the flow region of p exceeds its bounds.
// Implementations must be monotonic: adding content to an overflowing page
// keeps it overflowing.
type Oracle interface {
	Overflows(p *page.Page) bool
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(p *page.Page) bool

// Overflows implements Oracle.
func (f OracleFunc) Overflows(p *page.Page) bool {
	return f(p)
}

// epsilon absorbs floating point noise in accumulated line heights.
const epsilon = 0.01

// DefaultFootnoteGap separates the flow region from the footnotes.
const DefaultFootnoteGap = 8.0

// LayoutOracle measures pages with the layout approximation. Footnotes
// take their height out of the space left for the flow region.
type LayoutOracle struct {
	engine *layout.Engine
	gap    float64
}

// NewLayoutOracle creates an oracle on top of a layout engine.
func NewLayoutOracle(e *layout.Engine) *LayoutOracle {
	return &LayoutOracle{engine: e, gap: DefaultFootnoteGap}
}

// WithGap returns a copy using a different footnote gap.
func (o *LayoutOracle) WithGap(gap float64) *LayoutOracle {
	c := *o
	c.gap = gap
	return &c
}

// Overflows implements Oracle.
func (o *LayoutOracle) Overflows(p *page.Page) bool {
	width := p.Margins.ContentWidth(p.Size)
	avail := p.Margins.ContentHeight(p.Size)
	if notes := o.engine.LayoutFootnotes(p.Footnotes, width); notes.Height > 0 {
		avail -= notes.Height + o.gap
	}
	return o.engine.Layout(p.Flow, width).Height > avail+epsilon
}

// FlowHeight returns the laid out height of the flow region.
func (o *LayoutOracle) FlowHeight(p *page.Page) float64 {
	return o.engine.Layout(p.Flow, p.Margins.ContentWidth(p.Size)).Height
}
