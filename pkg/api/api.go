// Package api is the public entry point: it parses a source, computes its
// styles, paginates it with the configured rules and renders the result.
package api

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/layout"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
	"github.com/gompdf/pagebind/internal/parser/docx"
	htmlparser "github.com/gompdf/pagebind/internal/parser/html"
	"github.com/gompdf/pagebind/internal/parser/markdown"
	"github.com/gompdf/pagebind/internal/render"
	htmlrender "github.com/gompdf/pagebind/internal/render/html"
	"github.com/gompdf/pagebind/internal/render/pdf"
	"github.com/gompdf/pagebind/internal/render/preview"
	"github.com/gompdf/pagebind/internal/res"
	"github.com/gompdf/pagebind/internal/style"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Binder is the main API for paginating documents
type Binder struct {
	options  Options
	renderer render.Renderer
}

// Result is a paginated book together with what is needed to draw it the
// way it was measured.
type Result struct {
	Book  *page.Book
	Title string
	// Styles are the author stylesheets in cascade order.
	Styles []string
	// PassID tags the log lines of the pass that produced the book.
	PassID string

	layout *layout.Engine
	loader *res.Loader
}

// ResourceUser is implemented by renderers that draw with the measuring
// layout engine and load images through the source's loader.
type ResourceUser interface {
	UseResources(e *layout.Engine, loader *res.Loader)
}

// New creates a binder with default options modified by opts.
func New(opts ...Option) *Binder {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return NewWithOptions(o)
}

// NewWithOptions creates a binder with the specified options
func NewWithOptions(options Options) *Binder {
	return &Binder{options: options}
}

// Options returns the binder's options.
func (b *Binder) Options() Options {
	return b.options
}

// WithOption returns a new binder with the specified option set
func (b *Binder) WithOption(option Option) *Binder {
	o := b.options
	option(&o)
	return &Binder{options: o, renderer: b.renderer}
}

// WithRenderer returns a binder that reports progress to r while binding.
// The caller still calls r.Render with the finished book.
func (b *Binder) WithRenderer(r render.Renderer) *Binder {
	return &Binder{options: b.options, renderer: r}
}

func (b *Binder) logger() *log.Logger {
	if b.options.Logger != nil {
		return b.options.Logger
	}
	return log.Default()
}

// Validate checks the page geometry, layout and oracle settings.
func (b *Binder) Validate() error {
	o := b.options
	if o.PageWidth <= 0 || o.PageHeight <= 0 {
		return pberrors.New(pberrors.ErrCodeInvalidConfig, "page size %.2fx%.2f is not positive", o.PageWidth, o.PageHeight)
	}
	size, m := o.Size(), o.Margins()
	if m.ContentWidth(size) <= 0 || m.ContentHeight(size) <= 0 {
		return pberrors.New(pberrors.ErrCodeInvalidConfig, "margins leave no room on a %.2fx%.2f page", o.PageWidth, o.PageHeight)
	}
	if _, err := arrange.ParseLayout(string(o.Layout)); err != nil {
		return err
	}
	if o.Oracle == nil {
		if _, err := metricsFor(o.OracleKind); err != nil {
			return err
		}
	}
	return nil
}

func metricsFor(kind OracleKind) (layout.Metrics, error) {
	switch kind {
	case OracleMetrics, "":
		return layout.FontMetrics{}, nil
	case OracleGrid:
		return layout.GridMetrics{}, nil
	}
	return nil, pberrors.New(pberrors.ErrCodeInvalidConfig, "unknown oracle %q (want metrics or grid)", kind)
}

// Bind paginates a content tree. Only the stylesheets from the options
// apply.
func (b *Binder) Bind(ctx context.Context, root *content.Node) (*Result, error) {
	return b.bind(ctx, root, "", nil, res.NewLoader("", b.logger()))
}

// BindHTML paginates an HTML document. Relative stylesheet links resolve
// against the working directory.
func (b *Binder) BindHTML(ctx context.Context, htmlContent string) (*Result, error) {
	loader := b.newLoader("")
	doc, err := htmlparser.NewParser().ParseString(htmlContent)
	if err != nil {
		return nil, err
	}
	return b.bindHTML(ctx, doc, loader)
}

// BindMarkdown paginates a Markdown document.
func (b *Binder) BindMarkdown(ctx context.Context, md string) (*Result, error) {
	doc, err := markdown.NewParser().ParseString(md)
	if err != nil {
		return nil, err
	}
	return b.bind(ctx, doc.Body, doc.Title, nil, b.newLoader(""))
}

// BindFile paginates the HTML, Markdown or Word document at path, which may
// also be an http(s) URL. Linked stylesheets and images resolve relative to
// it.
func (b *Binder) BindFile(ctx context.Context, path string) (*Result, error) {
	loader := b.newLoader(path)
	src, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	switch src.Type {
	case res.ResourceTypeMarkdown:
		doc, err := markdown.NewParser().Parse(src.GetReader())
		if err != nil {
			return nil, err
		}
		return b.bind(ctx, doc.Body, doc.Title, nil, loader)
	case res.ResourceTypeDocx:
		doc, err := docx.NewParser().ParseBytes(src.Data)
		if err != nil {
			return nil, err
		}
		return b.bind(ctx, doc.Body, doc.Title, nil, loader)
	}
	doc, err := htmlparser.NewParser().Parse(src.GetReader())
	if err != nil {
		return nil, err
	}
	return b.bindHTML(ctx, doc, loader)
}

func (b *Binder) newLoader(base string) *res.Loader {
	l := res.NewLoader(base, b.logger())
	for _, p := range b.options.ResourcePaths {
		l.AddSearchPath(p)
	}
	return l
}

func (b *Binder) bindHTML(ctx context.Context, doc *htmlparser.Document, loader *res.Loader) (*Result, error) {
	styles := collectDocumentStylesheets(ctx, doc, loader, b.logger())
	return b.bind(ctx, doc.Body, doc.Title, styles, loader)
}

// collectDocumentStylesheets returns the linked stylesheets followed by the
// inline <style> blocks. Links that fail to load are skipped.
func collectDocumentStylesheets(ctx context.Context, doc *htmlparser.Document, loader *res.Loader, logger *log.Logger) []string {
	var styles []string
	if len(doc.StylesheetLinks) > 0 {
		sheets, err := loader.LoadAll(ctx, doc.StylesheetLinks)
		if err != nil {
			logger.Warn("linked stylesheets not loaded", "links", len(doc.StylesheetLinks), "err", err)
		}
		for _, s := range sheets {
			if s.Type != res.ResourceTypeCSS {
				logger.Warn("linked resource is not css", "url", s.URL, "mime", s.MimeType)
				continue
			}
			styles = append(styles, s.GetString())
		}
	}
	for _, s := range doc.Styles {
		if strings.TrimSpace(s) != "" {
			styles = append(styles, s)
		}
	}
	return styles
}

func (b *Binder) bind(ctx context.Context, root *content.Node, title string, styles []string, loader *res.Loader) (*Result, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, pberrors.New(pberrors.ErrCodeInvalidInput, "document has no body")
	}
	o := b.options
	passID := uuid.NewString()
	logger := b.logger().With("pass", passID[:8])

	styles = append(styles, o.Stylesheets...)
	se := style.NewEngine(logger)
	for _, css := range styles {
		if err := se.AddCSS(css); err != nil {
			logger.Warn("stylesheet skipped", "err", err)
		}
	}
	metrics, _ := metricsFor(o.OracleKind)
	le := layout.NewEngine(metrics, se.Compute(root))

	oracle := o.Oracle
	if oracle == nil {
		oracle = measure.NewLayoutOracle(le)
	}
	rules := pagination.NewRuleSet(logger).Add(o.Rules...).AddMap(o.RuleMap)
	engine := pagination.NewEngine(measure.NewContext(oracle, logger), rules)
	engine.SetOptions(pagination.Options{
		Size:     o.Size(),
		Margins:  o.Margins(),
		Progress: b.progress(),
		Delay:    o.Delay,
		Logger:   logger,
	})
	if ru, ok := b.renderer.(ResourceUser); ok {
		ru.UseResources(le, loader)
	}

	book, err := engine.Flow(ctx, root)
	if err != nil {
		return nil, err
	}
	if o.Title != "" {
		title = o.Title
	}
	logger.Debug("bound book", "title", title, "pages", book.Len(), "rules", rules.Len(), "diagnostics", len(book.Diagnostics))
	return &Result{Book: book, Title: title, Styles: styles, PassID: passID, layout: le, loader: loader}, nil
}

func (b *Binder) progress() func(pagination.Progress) {
	user, r := b.options.Progress, b.renderer
	if user == nil && r == nil {
		return nil
	}
	return func(p pagination.Progress) {
		if user != nil {
			user(p)
		}
		if r != nil {
			r.RenderProgress(p.Book, p.Fraction)
		}
	}
}

// RenderPDF writes the result as PDF using the binder's layout.
func (b *Binder) RenderPDF(result *Result, w io.Writer) error {
	if result == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "nothing to render")
	}
	r := pdf.NewRenderer(w, result.layout, result.loader, b.logger())
	b.configurePDF(r, result.Title)
	return r.Render(result.Book)
}

// NewPDFRenderer returns a PDF renderer configured from the options, to be
// handed to WithRenderer.
func (b *Binder) NewPDFRenderer(w io.Writer) *pdf.Renderer {
	r := pdf.NewRenderer(w, nil, nil, b.logger())
	b.configurePDF(r, b.options.Title)
	return r
}

func (b *Binder) configurePDF(r *pdf.Renderer, title string) {
	r.Layout = b.options.Layout
	r.Options.Title = title
	r.Options.Author = b.options.Author
	r.Options.Subject = b.options.Subject
	r.Options.Keywords = b.options.Keywords
}

// RenderHTML writes the result as a paged HTML preview.
func (b *Binder) RenderHTML(result *Result, w io.Writer) error {
	if result == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "nothing to render")
	}
	r := b.NewHTMLRenderer(w)
	r.Title = result.Title
	r.Styles = result.Styles
	return r.Render(result.Book)
}

// RenderPNG writes the result as a PNG contact sheet.
func (b *Binder) RenderPNG(result *Result, w io.Writer) error {
	if result == nil {
		return pberrors.New(pberrors.ErrCodeInvalidInput, "nothing to render")
	}
	r := preview.NewRenderer(w, result.layout, b.logger())
	r.Layout = b.options.Layout
	return r.Render(result.Book)
}

// NewPreviewRenderer returns a contact sheet renderer configured from the
// options.
func (b *Binder) NewPreviewRenderer(w io.Writer) *preview.Renderer {
	r := preview.NewRenderer(w, nil, b.logger())
	r.Layout = b.options.Layout
	return r
}

// NewHTMLRenderer returns an HTML renderer configured from the options.
func (b *Binder) NewHTMLRenderer(w io.Writer) *htmlrender.Renderer {
	r := htmlrender.NewRenderer(w, b.logger())
	r.Layout = b.options.Layout
	r.Title = b.options.Title
	return r
}
