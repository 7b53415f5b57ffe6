// Package preview draws a book as a PNG contact sheet: every sheet in
// reading order, with text shown as bars in its colour.
package preview

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fogleman/gg"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/layout"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/res"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// gap separates sheets, in points.
const gap = 12.0

// Renderer draws contact sheets.
type Renderer struct {
	Layout arrange.Layout
	// Scale is pixels per point.
	Scale float64
	// Columns is the number of sheets per row.
	Columns int

	out    io.Writer
	engine *layout.Engine
	logger *log.Logger
}

// NewRenderer creates a preview renderer writing PNG to out.
func NewRenderer(out io.Writer, e *layout.Engine, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	if e == nil {
		e = layout.NewEngine(layout.FontMetrics{}, nil)
	}
	return &Renderer{
		Layout:  arrange.LayoutPages,
		Scale:   0.5,
		Columns: 4,
		out:     out,
		engine:  e,
		logger:  logger,
	}
}

// UseResources sets the layout engine the book was measured with. Images
// are drawn as placeholders, so the loader is unused.
func (r *Renderer) UseResources(e *layout.Engine, _ *res.Loader) {
	if e != nil {
		r.engine = e
	}
}

// RenderProgress logs how far the pass has come.
func (r *Renderer) RenderProgress(book *page.Book, fraction float64) {
	r.logger.Debug("paginating", "pages", book.Len(), "progress", fmt.Sprintf("%3.0f%%", fraction*100))
}

// Render draws every sheet and encodes the result as PNG.
func (r *Renderer) Render(book *page.Book) error {
	if book == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "no book to render")
	}
	sheets := arrange.Arrange(book.Pages, r.Layout, book.Blank)
	if len(sheets) == 0 {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "book has no pages")
	}

	var cellW, cellH float64
	for _, sheet := range sheets {
		w, h := sheetSize(sheet)
		cellW, cellH = math.Max(cellW, w), math.Max(cellH, h)
	}
	cols := max(1, min(r.Columns, len(sheets)))
	rows := (len(sheets) + cols - 1) / cols
	scale := r.Scale
	if scale <= 0 {
		scale = 0.5
	}

	width := float64(cols)*cellW + float64(cols+1)*gap
	height := float64(rows)*cellH + float64(rows+1)*gap
	dc := gg.NewContext(int(math.Ceil(width*scale)), int(math.Ceil(height*scale)))
	dc.SetHexColor("#d1d5db")
	dc.Clear()
	dc.Scale(scale, scale)

	for i, sheet := range sheets {
		x := gap + float64(i%cols)*(cellW+gap)
		y := gap + float64(i/cols)*(cellH+gap)
		for slot, p := range sheet {
			r.drawPage(dc, p, x, y, len(sheet) == 2 && slot == 0)
			x += p.Size.Width
		}
	}

	if err := dc.EncodePNG(r.out); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeInternal, err, "encode png")
	}
	r.logger.Debug("rendered preview", "sheets", len(sheets), "width", dc.Width(), "height", dc.Height())
	return nil
}

func sheetSize(sheet arrange.Sheet) (w, h float64) {
	for _, p := range sheet {
		w += p.Size.Width
		h = math.Max(h, p.Size.Height)
	}
	return w, h
}

func (r *Renderer) drawPage(dc *gg.Context, p *page.Page, ox, oy float64, leftHand bool) {
	dc.DrawRectangle(ox, oy, p.Size.Width, p.Size.Height)
	if p.Blank {
		dc.SetHexColor("#f3f4f6")
		dc.Fill()
		return
	}
	dc.SetHexColor("#ffffff")
	dc.FillPreserve()
	dc.SetHexColor("#9ca3af")
	dc.SetLineWidth(0.5)
	dc.Stroke()

	m := p.Margins
	left := ox + m.Inner
	if leftHand {
		left = ox + m.Outer
	}
	width := m.ContentWidth(p.Size)

	r.drawFrame(dc, r.engine.Layout(p.Flow, width), left, oy+m.Top)
	if len(p.Footnotes) > 0 {
		notes := r.engine.LayoutFootnotes(p.Footnotes, width)
		r.drawFrame(dc, notes, left, oy+p.Size.Height-m.Bottom-notes.Height)
	}
}

func (r *Renderer) drawFrame(dc *gg.Context, f *layout.Frame, ox, oy float64) {
	for _, rect := range f.Rects {
		switch rect.Tag {
		case "hr":
			dc.SetHexColor("#6b7280")
			dc.SetLineWidth(math.Max(rect.H, 0.5))
			dc.DrawLine(ox+rect.X, oy+rect.Y, ox+rect.X+rect.W, oy+rect.Y)
			dc.Stroke()
		case "img":
			dc.SetHexColor("#cbd5e1")
			dc.DrawRectangle(ox+rect.X, oy+rect.Y, rect.W, rect.H)
			dc.Fill()
		}
	}
	metrics := r.engine.Metrics()
	for _, line := range f.Lines {
		for _, run := range line.Runs {
			if run.Text == "" {
				continue
			}
			w := metrics.Width(run.Text, run.Font)
			dc.SetHexColor(barColor(run.Color))
			dc.DrawRectangle(ox+run.X, oy+line.Y+line.Height*0.3, w, line.Height*0.4)
			dc.Fill()
		}
	}
}

// barColor keeps hex colours and greys out everything else.
func barColor(c string) string {
	c = strings.TrimSpace(c)
	if (len(c) == 4 || len(c) == 7) && c[0] == '#' {
		return c
	}
	return "#4b5563"
}
