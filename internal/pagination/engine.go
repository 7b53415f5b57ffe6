// Package pagination flows a content tree into fixed-size pages.
package pagination

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Progress is reported each time a page is created.
type Progress struct {
	// Pages is the number of pages created so far.
	Pages int
	// Fraction of the source nodes consumed, between 0 and 1.
	Fraction float64
	// Book holds the pages completed so far, excluding the page just
	// opened. Pages in it are not yet numbered.
	Book *page.Book
}

// Options represents options for the pagination engine
type Options struct {
	Size    page.Size
	Margins page.Margins

	// Progress, if set, is called at every page creation.
	Progress func(Progress)
	// Delay pauses the pass at every element boundary. Useful to watch a
	// flow happen.
	Delay time.Duration

	Logger *log.Logger
}

// DefaultOptions returns the pocket page with default margins.
func DefaultOptions() Options {
	return Options{Size: page.SizePocket, Margins: page.DefaultMargins}
}

// Engine handles the pagination process
type Engine struct {
	options Options
	rules   *RuleSet
	measure *measure.Context
}

// NewEngine creates a new pagination engine. rules may be nil.
func NewEngine(m *measure.Context, rules *RuleSet) *Engine {
	if rules == nil {
		rules = NewRuleSet(nil)
	}
	return &Engine{options: DefaultOptions(), rules: rules, measure: m}
}

// SetOptions sets the options for the pagination engine
func (e *Engine) SetOptions(options Options) {
	e.options = options
}

// Options returns the options in use.
func (e *Engine) Options() Options {
	return e.options
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() *RuleSet {
	return e.rules
}

// Flow paginates root. Side preferences are settled before the AfterBind
// hooks run, so blanks inserted for them take part in numbering. Recoverable conditions end up in the book's
// diagnostics; only cancellation of ctx aborts the pass.
func (e *Engine) Flow(ctx context.Context, root *content.Node) (*page.Book, error) {
	if root == nil {
		return nil, pberrors.New(pberrors.ErrCodeInvalidInput, "no content to paginate")
	}
	if e.measure == nil {
		return nil, pberrors.New(pberrors.ErrCodeInvalidConfig, "no overflow oracle configured")
	}
	logger := e.options.Logger
	if logger == nil {
		logger = log.Default()
	}

	session, err := e.measure.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Release()

	start := time.Now()
	f := &flow{
		opts:    e.options,
		rules:   e.rules,
		session: session,
		logger:  logger,
		total:   root.Count(),
	}
	f.state = &State{store: newStore(), f: f}

	f.newPage()
	if err := f.node(ctx, root, nil); err != nil {
		logger.Debug("pagination aborted", "pages", len(f.state.Pages), "err", err)
		return nil, err
	}
	f.reorder()
	f.bind()

	diags := append([]page.Diagnostic(nil), e.rules.Rejected()...)
	diags = append(diags, f.diags...)
	book := &page.Book{
		Pages:       f.state.Pages,
		Size:        e.options.Size,
		Margins:     e.options.Margins,
		Diagnostics: diags,
	}
	logger.Debug("pagination finished",
		"pages", len(book.Pages),
		"queries", session.Queries(),
		"diagnostics", len(f.diags),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return book, nil
}
