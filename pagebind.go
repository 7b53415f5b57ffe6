// Package pagebind flows HTML, Markdown or programmatic content trees into
// fixed-size book pages.
//
//	b := pagebind.New(pagebind.WithPageSizeA5(), pagebind.WithRules(
//		pagebind.BreakBefore("h1"),
//		pagebind.Footnote(".fn", nil),
//	))
//	result, err := b.BindFile(ctx, "book.md")
//	if err != nil {
//		return err
//	}
//	return b.RenderPDF(result, w)
package pagebind

import (
	"github.com/gompdf/pagebind/internal/arrange"
	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/measure"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/pagination"
	"github.com/gompdf/pagebind/internal/rules"
	"github.com/gompdf/pagebind/pkg/api"
)

type Binder = api.Binder
type Result = api.Result
type Options = api.Options
type Option = api.Option
type OracleKind = api.OracleKind

type Node = content.Node
type Book = page.Book
type Page = page.Page
type Box = page.Box
type Rule = pagination.Rule
type State = pagination.State
type Progress = pagination.Progress
type Oracle = measure.Oracle
type OracleFunc = measure.OracleFunc
type Layout = arrange.Layout
type TextFunc = rules.TextFunc

func New(opts ...Option) *Binder             { return api.New(opts...) }
func NewWithOptions(options Options) *Binder { return api.NewWithOptions(options) }
func DefaultOptions() Options                { return api.DefaultOptions() }

var (
	WithPageSize       = api.WithPageSize
	WithMargins        = api.WithMargins
	WithRules          = api.WithRules
	WithRuleMap        = api.WithRuleMap
	WithOracle         = api.WithOracle
	WithOracleKind     = api.WithOracleKind
	WithLogger         = api.WithLogger
	WithLayout         = api.WithLayout
	WithProgress       = api.WithProgress
	WithStylesheet     = api.WithStylesheet
	WithDelay          = api.WithDelay
	WithResourcePath   = api.WithResourcePath
	WithTitle          = api.WithTitle
	WithAuthor         = api.WithAuthor
	WithSubject        = api.WithSubject
	WithKeywords       = api.WithKeywords
	WithPageSizeA4     = api.WithPageSizeA4
	WithPageSizeA5     = api.WithPageSizeA5
	WithPageSizeLetter = api.WithPageSizeLetter
	WithPageSizePocket = api.WithPageSizePocket
)

// Built-in rules.
var (
	BreakBefore   = rules.BreakBefore
	FullPage      = rules.FullPage
	Spread        = rules.Spread
	Footnote      = rules.Footnote
	AttrText      = rules.AttrText
	PageReference = rules.PageReference
	PageNumber    = rules.PageNumber
	RunningHeader = rules.RunningHeader
)

// Content tree constructors.
var (
	Element = content.Element
	Text    = content.Text
	Attrs   = content.Attrs
)

const (
	OracleMetrics = api.OracleMetrics
	OracleGrid    = api.OracleGrid

	LayoutPages   = arrange.LayoutPages
	LayoutSpreads = arrange.LayoutSpreads
	LayoutBooklet = arrange.LayoutBooklet
	LayoutFlip    = arrange.LayoutFlip
)
