// Package style computes the cascaded style of content nodes and compiles
// the selectors used both by stylesheets and by pagination rules.
package style

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/parser/css"
)

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// Source represents the origin of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceAuthor
	SourceInline
)

// Property is a computed style property
type Property struct {
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Computed maps property names to their cascaded values.
type Computed map[string]Property

// Get returns the value of a property or "".
func (c Computed) Get(name string) string {
	return strings.TrimSpace(c[name].Value)
}

// inherited lists the properties children take from their parent when they
// do not set them.
var inherited = []string{
	"font-size", "font-family", "font-weight", "font-style",
	"line-height", "text-align", "color", "white-space", "text-indent",
}

type compiledRule struct {
	selector     *Selector
	declarations []*css.Declaration
}

type sheet struct {
	source Source
	rules  []compiledRule
}

// Engine holds stylesheets and computes styles for content trees.
type Engine struct {
	sheets []sheet
	logger *log.Logger
}

// NewEngine creates a style engine preloaded with the default user agent
// stylesheet.
func NewEngine(logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{logger: logger}
	ua, _ := css.NewParser().ParseString(UserAgentStylesheet)
	e.add(ua, SourceUserAgent)
	return e
}

// AddStylesheet adds an author stylesheet. Rules with selectors the engine
// cannot match are skipped with a debug message.
func (e *Engine) AddStylesheet(s *css.Stylesheet) {
	e.add(s, SourceAuthor)
}

// AddCSS parses and adds an author stylesheet.
func (e *Engine) AddCSS(text string) error {
	s, err := css.NewParser().ParseString(text)
	if err != nil {
		return err
	}
	e.AddStylesheet(s)
	return nil
}

func (e *Engine) add(s *css.Stylesheet, src Source) {
	sh := sheet{source: src}
	for _, r := range s.Rules {
		for _, selText := range r.Selectors {
			sel, err := Compile(selText)
			if err != nil {
				e.logger.Debug("skipping css rule", "selector", selText, "err", err)
				continue
			}
			sh.rules = append(sh.rules, compiledRule{selector: sel, declarations: r.Declarations})
		}
	}
	e.sheets = append(e.sheets, sh)
}

// Compute returns the computed style of every element and text node in the
// tree rooted at root. Text nodes share their parent's style.
func (e *Engine) Compute(root *content.Node) map[*content.Node]Computed {
	out := make(map[*content.Node]Computed)
	e.compute(root, nil, out)
	return out
}

func (e *Engine) compute(n *content.Node, parent Computed, out map[*content.Node]Computed) {
	if n == nil {
		return
	}
	switch n.Kind {
	case content.KindText:
		out[n] = parent
		return
	case content.KindElement:
	default:
		return
	}

	st := make(Computed)
	for _, sh := range e.sheets {
		for _, r := range sh.rules {
			if r.selector.Match(n) {
				apply(st, r.declarations, r.selector.Specificity(n), sh.source)
			}
		}
	}
	if inline, ok := n.Attr("style"); ok {
		apply(st, css.ParseDeclarations(inline), Specificity{ID: 1}, SourceInline)
	}
	for _, name := range inherited {
		if _, ok := st[name]; !ok {
			if p, ok := parent[name]; ok {
				st[name] = p
			}
		}
	}
	resolveFontSize(st, parent)

	out[n] = st
	for _, c := range n.Children {
		e.compute(c, st, out)
	}
}

// apply merges declarations into st following importance, origin and
// specificity, later declarations winning ties.
func apply(st Computed, decls []*css.Declaration, sp Specificity, src Source) {
	for _, d := range decls {
		next := Property{Value: d.Value, Important: d.Important, Source: src, Specificity: sp}
		if cur, ok := st[d.Property]; ok && outranks(cur, next) {
			continue
		}
		st[d.Property] = next
	}
}

func outranks(cur, next Property) bool {
	if cur.Important != next.Important {
		return cur.Important
	}
	if cur.Source != next.Source {
		return cur.Source > next.Source
	}
	return compareSpecificity(cur.Specificity, next.Specificity) > 0
}

// resolveFontSize turns relative font sizes into absolute pixel values so
// descendants inherit a concrete size.
func resolveFontSize(st, parent Computed) {
	base := DefaultFontSize
	if parent != nil {
		base = ParseLength(parent.Get("font-size"), DefaultFontSize, DefaultFontSize)
	}
	v := st.Get("font-size")
	if v == "" {
		return
	}
	p := st["font-size"]
	p.Value = formatPx(ParseLength(v, base, base))
	st["font-size"] = p
}

func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// UserAgentStylesheet is the built-in base stylesheet.
const UserAgentStylesheet = `
body { font-family: Times; font-size: 12px; line-height: 1.3; }
h1 { font-size: 2em; margin: 0.67em 0; font-weight: bold; }
h2 { font-size: 1.5em; margin: 0.75em 0; font-weight: bold; }
h3 { font-size: 1.17em; margin: 0.83em 0; font-weight: bold; }
h4 { margin: 1.12em 0; font-weight: bold; }
h5 { font-size: 0.83em; margin: 1.5em 0; font-weight: bold; }
h6 { font-size: 0.75em; margin: 1.67em 0; font-weight: bold; }
p { margin: 1em 0; }
blockquote { margin: 1em 40px; }
ul, ol { margin: 1em 0; padding-left: 40px; }
pre, code { font-family: Courier; }
pre { white-space: pre; margin: 1em 0; }
b, strong { font-weight: bold; }
i, em { font-style: italic; }
sup { font-size: 0.7em; }
hr { margin: 0.5em 0; height: 1px; }
`
