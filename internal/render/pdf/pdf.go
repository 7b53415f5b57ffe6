// Package pdf draws a paginated book with the fpdf core fonts.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/layout"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/res"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Renderer handles rendering to PDF
type Renderer struct {
	Options RenderOptions
	// Layout selects how pages are imposed on sheets.
	Layout arrange.Layout
	// PageNumbers draws each page's number centered in the bottom margin.
	PageNumbers bool
	// RunningHeaders draws each page's running header in the top margin.
	RunningHeaders bool
	// DebugDrawBoxes outlines the flow and footer regions and every
	// replaced element.
	DebugDrawBoxes bool

	out    io.Writer
	engine *layout.Engine
	loader *res.Loader
	logger *log.Logger

	// images maps a source to its registered fpdf name, "" when loading
	// failed.
	images map[string]string
	tr     func(string) string
}

// RenderOptions contains options for rendering
type RenderOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	Producer string
}

// NewRenderer creates a PDF renderer writing to out. loader resolves image
// sources and may be nil, in which case images are drawn as outlines.
func NewRenderer(out io.Writer, e *layout.Engine, loader *res.Loader, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.Default()
	}
	if e == nil {
		e = layout.NewEngine(layout.FontMetrics{}, nil)
	}
	return &Renderer{
		Options:        RenderOptions{Creator: "pagebind", Producer: "pagebind"},
		Layout:         arrange.LayoutPages,
		PageNumbers:    true,
		RunningHeaders: true,
		out:            out,
		engine:         e,
		loader:         loader,
		logger:         logger,
	}
}

// UseResources sets the layout engine the book was measured with and the
// loader for image sources.
func (r *Renderer) UseResources(e *layout.Engine, loader *res.Loader) {
	if e != nil {
		r.engine = e
	}
	r.loader = loader
}

// RenderProgress logs how far the pass has come.
func (r *Renderer) RenderProgress(book *page.Book, fraction float64) {
	r.logger.Info("paginating", "pages", book.Len(), "progress", fmt.Sprintf("%3.0f%%", fraction*100))
}

// Sheets arranges the book for the renderer's layout.
func (r *Renderer) Sheets(book *page.Book) []arrange.Sheet {
	return arrange.Arrange(book.Pages, r.Layout, book.Blank)
}

// Render writes the book as one PDF document. Every sheet becomes one PDF
// page, twice the page width for two-up layouts.
func (r *Renderer) Render(book *page.Book) error {
	if book == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "no book to render")
	}
	sheets := r.Sheets(book)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: book.Size.Width, Ht: book.Size.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(false)
	pdf.SetTitle(r.Options.Title, true)
	pdf.SetAuthor(r.Options.Author, true)
	pdf.SetSubject(r.Options.Subject, true)
	pdf.SetKeywords(r.Options.Keywords, true)
	pdf.SetCreator(r.Options.Creator, true)
	pdf.SetProducer(r.Options.Producer, true)
	pdf.SetFont("Times", "", 12)
	r.tr = pdf.UnicodeTranslatorFromDescriptor("")
	r.images = make(map[string]string)

	for _, sheet := range sheets {
		w := 0.0
		h := 0.0
		for _, p := range sheet {
			w += p.Size.Width
			if p.Size.Height > h {
				h = p.Size.Height
			}
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})

		x := 0.0
		for slot, p := range sheet {
			r.renderPage(pdf, p, x, side(len(sheet), slot))
			x += p.Size.Width
		}
	}

	r.logger.Debug("rendered pdf", "pages", book.Len(), "sheets", len(sheets), "layout", r.Layout)
	if err := pdf.Output(r.out); err != nil {
		return pberrors.Wrap(pberrors.ErrCodeInternal, err, "write pdf")
	}
	return nil
}

// RenderFile renders book into a new file at path, creating its directory
// if needed.
func RenderFile(path string, book *page.Book, configure func(*Renderer)) error {
	dir := filepath.Dir(path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	r := NewRenderer(f, nil, nil, nil)
	if configure != nil {
		configure(r)
	}
	if err := r.Render(book); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

type pageSide int

const (
	sideRight pageSide = iota
	sideLeft
)

// side reports which hand a page is on. Single sheets are treated as
// right-hand pages.
func side(sheetLen, slot int) pageSide {
	if sheetLen == 2 && slot == 0 {
		return sideLeft
	}
	return sideRight
}

// renderPage draws one page with its top-left corner at (ox, 0). The inner
// margin faces the binding: on the right of a left-hand page.
func (r *Renderer) renderPage(pdf *fpdf.Fpdf, p *page.Page, ox float64, s pageSide) {
	if p.Blank {
		return
	}
	m := p.Margins
	left := ox + m.Inner
	if s == sideLeft {
		left = ox + m.Outer
	}
	top := m.Top
	width := m.ContentWidth(p.Size)

	flow := r.engine.Layout(p.Flow, width)
	r.drawFrame(pdf, flow, left, top)

	if len(p.Footnotes) > 0 {
		notes := r.engine.LayoutFootnotes(p.Footnotes, width)
		y := p.Size.Height - m.Bottom - notes.Height
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.5)
		pdf.Line(left, y-4, left+width/3, y-4)
		r.drawFrame(pdf, notes, left, y)
	}

	if r.RunningHeaders && p.RunningHeader != "" {
		pdf.SetFont("Times", "I", 9)
		pdf.SetTextColor(80, 80, 80)
		text := r.tr(p.RunningHeader)
		x := left
		if s == sideRight {
			x = left + width - pdf.GetStringWidth(text)
		}
		pdf.Text(x, m.Top/2+3, text)
	}

	if r.PageNumbers && p.Number > 0 {
		pdf.SetFont("Times", "", 9)
		pdf.SetTextColor(0, 0, 0)
		label := strconv.Itoa(p.Number)
		pdf.Text(left+(width-pdf.GetStringWidth(label))/2, p.Size.Height-m.Bottom/2+3, label)
	}

	if r.DebugDrawBoxes {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.3)
		pdf.Rect(left, top, width, m.ContentHeight(p.Size), "D")
	}
}

// drawFrame draws a laid out frame whose origin is at (ox, oy).
func (r *Renderer) drawFrame(pdf *fpdf.Fpdf, f *layout.Frame, ox, oy float64) {
	for _, rect := range f.Rects {
		r.drawRect(pdf, rect, ox, oy)
	}
	for _, line := range f.Lines {
		for _, run := range line.Runs {
			if run.Text == "" {
				continue
			}
			c := parseColor(run.Color)
			pdf.SetTextColor(c[0], c[1], c[2])
			pdf.SetFont(run.Font.Family, run.Font.Style, run.Font.Size)
			pdf.Text(ox+run.X, oy+line.Baseline, r.tr(run.Text))
		}
	}
}

func (r *Renderer) drawRect(pdf *fpdf.Fpdf, rect layout.Rect, ox, oy float64) {
	x, y := ox+rect.X, oy+rect.Y
	switch rect.Tag {
	case "hr":
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(rect.H)
		pdf.Line(x, y, x+rect.W, y)
		return
	case "img":
		if name := r.image(pdf, rect.Src); name != "" {
			pdf.ImageOptions(name, x, y, rect.W, rect.H, false, fpdf.ImageOptions{}, 0, "")
			return
		}
		pdf.SetDrawColor(180, 180, 180)
		pdf.SetLineWidth(0.5)
		pdf.Rect(x, y, rect.W, rect.H, "D")
		pdf.Line(x, y, x+rect.W, y+rect.H)
		pdf.Line(x, y+rect.H, x+rect.W, y)
		return
	}
	if r.DebugDrawBoxes {
		pdf.SetDrawColor(0, 0, 200)
		pdf.SetLineWidth(0.3)
		pdf.Rect(x, y, rect.W, rect.H, "D")
	}
}

// image registers src once and returns its fpdf name, or "" when it cannot
// be drawn.
func (r *Renderer) image(pdf *fpdf.Fpdf, src string) string {
	if src == "" || r.loader == nil {
		return ""
	}
	if name, ok := r.images[src]; ok {
		return name
	}
	r.images[src] = ""

	resrc, err := r.loader.LoadImage(src)
	if err != nil {
		r.logger.Warn("image not loaded", "src", src, "err", err)
		return ""
	}
	typ, data := imageType(resrc), resrc.Data
	if typ == "" {
		converted, err := transcode(resrc.Data, resrc.MimeType)
		if err != nil {
			r.logger.Warn("image format not supported", "src", src, "mime", resrc.MimeType, "err", err)
			return ""
		}
		typ, data = "PNG", converted
	}
	name := fmt.Sprintf("img%d", len(r.images))
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: typ}, bytes.NewReader(data))
	if err := pdf.Error(); err != nil {
		r.logger.Warn("image not decoded", "src", src, "err", err)
		pdf.ClearError()
		return ""
	}
	r.images[src] = name
	return name
}

// imageType maps a resource to an fpdf image type.
func imageType(resrc *res.Resource) string {
	mime := resrc.MimeType
	if mime == "" || mime == "application/octet-stream" {
		mime = http.DetectContentType(resrc.Data)
	}
	switch {
	case strings.HasPrefix(mime, "image/png"):
		return "PNG"
	case strings.HasPrefix(mime, "image/jpeg"):
		return "JPG"
	case strings.HasPrefix(mime, "image/gif"):
		return "GIF"
	}
	return ""
}

var namedColors = map[string][3]int{
	"black": {0, 0, 0},
	"white": {255, 255, 255},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
	"blue":  {0, 0, 255},
	"gray":  {128, 128, 128},
	"grey":  {128, 128, 128},
}

// parseColor parses a CSS color value
func parseColor(value string) [3]int {
	value = strings.ToLower(strings.TrimSpace(value))
	if strings.HasPrefix(value, "#") {
		if r, g, b, ok := parseHexColor(value); ok {
			return [3]int{r, g, b}
		}
	}
	if c, ok := namedColors[value]; ok {
		return c
	}

	var r, g, b int
	if _, err := fmt.Sscanf(value, "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}
	if _, err := fmt.Sscanf(value, "rgb(%d, %d, %d)", &r, &g, &b); err == nil {
		return [3]int{r, g, b}
	}

	return [3]int{0, 0, 0}
}

// parseHexColor parses #RRGGBB or #RGB into r,g,b
func parseHexColor(s string) (int, int, int, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}
