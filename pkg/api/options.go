package api

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
)

// OracleKind selects the built-in overflow measurement.
type OracleKind string

const (
	// OracleMetrics measures text with the PDF core font tables.
	OracleMetrics OracleKind = "metrics"
	// OracleGrid treats every glyph as half an em wide.
	OracleGrid OracleKind = "grid"
)

// Options represents configuration options for binding a book
type Options struct {
	// Page dimensions in points
	PageWidth  float64
	PageHeight float64

	// Page margins. Inner is the binding side.
	MarginTop    float64
	MarginBottom float64
	MarginInner  float64
	MarginOuter  float64

	// Rules are registered in order before RuleMap.
	Rules []*pagination.Rule
	// RuleMap is registered in sorted key order.
	RuleMap map[string]*pagination.Rule

	// Oracle replaces the built-in measurement when set.
	Oracle     measure.Oracle
	OracleKind OracleKind

	Layout   arrange.Layout
	Progress func(pagination.Progress)
	// Delay pauses the pass at every element boundary.
	Delay time.Duration

	// Stylesheets are author CSS texts applied after the document's own.
	Stylesheets   []string
	ResourcePaths []string

	Logger *log.Logger

	// Document metadata
	Title    string
	Author   string
	Subject  string
	Keywords string
}

// Option is a function that modifies Options
type Option func(*Options)

// DefaultOptions returns the default options
func DefaultOptions() Options {
	return Options{
		PageWidth:    page.SizePocket.Width,
		PageHeight:   page.SizePocket.Height,
		MarginTop:    page.DefaultMargins.Top,
		MarginBottom: page.DefaultMargins.Bottom,
		MarginInner:  page.DefaultMargins.Inner,
		MarginOuter:  page.DefaultMargins.Outer,
		OracleKind:   OracleMetrics,
		Layout:       arrange.LayoutPages,
	}
}

// Size returns the configured page size.
func (o Options) Size() page.Size {
	if s, ok := sizeFor(o.PageWidth, o.PageHeight); ok {
		return s
	}
	return page.Size{Width: o.PageWidth, Height: o.PageHeight, Name: "Custom"}
}

func sizeFor(w, h float64) (page.Size, bool) {
	for _, s := range []page.Size{page.SizeA3, page.SizeA4, page.SizeA5, page.SizeA6, page.SizeLetter, page.SizeLegal, page.SizePocket} {
		if s.Width == w && s.Height == h {
			return s, true
		}
	}
	return page.Size{}, false
}

// Margins returns the configured margins.
func (o Options) Margins() page.Margins {
	return page.Margins{Top: o.MarginTop, Bottom: o.MarginBottom, Inner: o.MarginInner, Outer: o.MarginOuter}
}

// WithPageSize sets the page size
func WithPageSize(width, height float64) Option {
	return func(o *Options) {
		o.PageWidth = width
		o.PageHeight = height
	}
}

// WithMargins sets the page margins
func WithMargins(top, bottom, inner, outer float64) Option {
	return func(o *Options) {
		o.MarginTop = top
		o.MarginBottom = bottom
		o.MarginInner = inner
		o.MarginOuter = outer
	}
}

// WithRules appends rules in registration order.
func WithRules(rules ...*pagination.Rule) Option {
	return func(o *Options) {
		o.Rules = append(o.Rules, rules...)
	}
}

// WithRuleMap registers keyed rules. Keys are applied in sorted order and
// name rules that have no name of their own.
func WithRuleMap(rules map[string]*pagination.Rule) Option {
	return func(o *Options) {
		if o.RuleMap == nil {
			o.RuleMap = make(map[string]*pagination.Rule, len(rules))
		}
		for k, r := range rules {
			o.RuleMap[k] = r
		}
	}
}

// WithOracle replaces the overflow measurement.
func WithOracle(oracle measure.Oracle) Option {
	return func(o *Options) {
		o.Oracle = oracle
	}
}

// WithOracleKind selects a built-in overflow measurement.
func WithOracleKind(kind OracleKind) Option {
	return func(o *Options) {
		o.OracleKind = kind
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithLayout sets the output imposition.
func WithLayout(l arrange.Layout) Option {
	return func(o *Options) {
		o.Layout = l
	}
}

// WithProgress sets a callback run at every page creation.
func WithProgress(fn func(pagination.Progress)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithStylesheet adds an author stylesheet.
func WithStylesheet(css string) Option {
	return func(o *Options) {
		o.Stylesheets = append(o.Stylesheets, css)
	}
}

// WithDelay pauses the pass at every element boundary.
func WithDelay(d time.Duration) Option {
	return func(o *Options) {
		o.Delay = d
	}
}

// WithResourcePath adds a path to search for resources
func WithResourcePath(path string) Option {
	return func(o *Options) {
		o.ResourcePaths = append(o.ResourcePaths, path)
	}
}

// WithTitle sets the document title
func WithTitle(title string) Option {
	return func(o *Options) {
		o.Title = title
	}
}

// WithAuthor sets the document author
func WithAuthor(author string) Option {
	return func(o *Options) {
		o.Author = author
	}
}

// WithSubject sets the document subject
func WithSubject(subject string) Option {
	return func(o *Options) {
		o.Subject = subject
	}
}

// WithKeywords sets the document keywords
func WithKeywords(keywords string) Option {
	return func(o *Options) {
		o.Keywords = keywords
	}
}

// WithPageSizeA4 sets the page size to A4
func WithPageSizeA4() Option {
	return WithPageSize(page.SizeA4.Width, page.SizeA4.Height)
}

// WithPageSizeA5 sets the page size to A5
func WithPageSizeA5() Option {
	return WithPageSize(page.SizeA5.Width, page.SizeA5.Height)
}

// WithPageSizeLetter sets the page size to US Letter
func WithPageSizeLetter() Option {
	return WithPageSize(page.SizeLetter.Width, page.SizeLetter.Height)
}

// WithPageSizePocket sets the 300x400pt pocket format
func WithPageSizePocket() Option {
	return WithPageSize(page.SizePocket.Width, page.SizePocket.Height)
}
