package layout

import (
	"strings"
	"sync"
	"unicode/utf8"

	"codeberg.org/go-pdf/fpdf"

	"github.com/gompdf/pagebind/internal/style"
)

// Font is a resolved core font.
type Font struct {
	Family string // Helvetica, Times or Courier
	Style  string // "", "B", "I" or "BI"
	Size   float64
}

// Metrics measures text advance widths.
type Metrics interface {
	Width(text string, f Font) float64
}

// GridMetrics is a monospace approximation: every rune advances
// Advance*Size points. It is deterministic and fast, suitable for tests and
// plain-text previews.
type GridMetrics struct {
	Advance float64
}

// Width implements Metrics.
func (g GridMetrics) Width(text string, f Font) float64 {
	adv := g.Advance
	if adv <= 0 {
		adv = 0.5
	}
	return float64(utf8.RuneCountInString(text)) * adv * f.Size
}

// Singleton PDF instance for text measurement using go-pdf/fpdf core font
// metrics
var (
	measureOnce sync.Once
	measurePDF  *fpdf.Fpdf
	measureMu   sync.Mutex
)

func initMeasurePDF() {
	measurePDF = fpdf.New("P", "pt", "", "")
	measurePDF.SetFont("Helvetica", "", 12)
}

// FontMetrics measures with the PDF core font tables, matching what the PDF
// renderer will draw.
type FontMetrics struct{}

// Width implements Metrics.
func (FontMetrics) Width(text string, f Font) float64 {
	if text == "" || f.Size <= 0 {
		return 0
	}
	measureOnce.Do(initMeasurePDF)
	measureMu.Lock()
	defer measureMu.Unlock()
	measurePDF.SetFont(f.Family, f.Style, f.Size)
	return measurePDF.GetStringWidth(text)
}

// FontFor maps a computed style to a core PDF font.
func FontFor(st style.Computed) Font {
	f := Font{Family: "Times", Size: style.ParseLength(st.Get("font-size"), style.DefaultFontSize, style.DefaultFontSize)}
	if ff := st.Get("font-family"); ff != "" {
		first := strings.TrimSpace(strings.Trim(strings.Split(ff, ",")[0], `'" `))
		switch strings.ToLower(first) {
		case "arial", "helvetica", "sans-serif":
			f.Family = "Helvetica"
		case "courier", "courier new", "monospace":
			f.Family = "Courier"
		}
	}
	switch st.Get("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		f.Style += "B"
	}
	if fs := st.Get("font-style"); fs == "italic" || fs == "oblique" {
		f.Style += "I"
	}
	return f
}
