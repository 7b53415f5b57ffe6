package pagination

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/internal/style"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// ElementHook runs on an element box while it is being flowed.
type ElementHook func(el *page.Box, st *State)

// PageHook runs on a freshly created page.
type PageHook func(pg *page.Page, st *State)

// BindHook runs once per finished page after the sequence is final.
type BindHook func(pg *page.Page, index int, st *State)

// Rule is a selector with optional hooks. BeforeAdd and AfterAdd fire for
// elements whose source matches Selector; NewPage and AfterBind fire for
// every page regardless of the selector. Registering a rule never modifies
// it, so one Rule may serve any number of concurrent passes.
type Rule struct {
	Name     string
	Selector string

	BeforeAdd ElementHook
	AfterAdd  ElementHook
	NewPage   PageHook
	AfterBind BindHook
}

// Matches reports whether the rule's element hooks apply to n. The
// selector is compiled on every call; an invalid selector matches nothing.
func (r *Rule) Matches(n *content.Node) bool {
	sel, err := style.Compile(r.Selector)
	return err == nil && sel.Match(n)
}

func (r *Rule) hasHooks() bool {
	return r.BeforeAdd != nil || r.AfterAdd != nil || r.NewPage != nil || r.AfterBind != nil
}

func (r *Rule) hasElementHooks() bool {
	return r.BeforeAdd != nil || r.AfterAdd != nil
}

func (r *Rule) label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Selector != "" {
		return r.Selector
	}
	return "rule"
}

// entry is a registered rule with the selector compiled for this set.
type entry struct {
	*Rule
	name string
	sel  *style.Selector
}

func (e *entry) label() string {
	if e.name != "" {
		return e.name
	}
	return e.Rule.label()
}

func (e *entry) matches(n *content.Node) bool {
	return e.sel != nil && e.sel.Match(n)
}

// RuleSet is an ordered collection of validated rules.
type RuleSet struct {
	rules    []*entry
	rejected []page.Diagnostic
	logger   *log.Logger
}

// NewRuleSet creates an empty rule set. A nil logger uses log.Default().
func NewRuleSet(logger *log.Logger) *RuleSet {
	if logger == nil {
		logger = log.Default()
	}
	return &RuleSet{logger: logger}
}

// Add registers rules in order. Malformed rules are not registered; each
// rejection is logged once and kept for the book's diagnostics.
func (rs *RuleSet) Add(rules ...*Rule) *RuleSet {
	for _, r := range rules {
		rs.add(r, "")
	}
	return rs
}

// AddMap registers keyed rules in sorted key order. A rule without a name
// takes its key.
func (rs *RuleSet) AddMap(rules map[string]*Rule) *RuleSet {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := ""
		if r := rules[k]; r != nil && r.Name == "" {
			name = k
		}
		rs.add(rules[k], name)
	}
	return rs
}

func (rs *RuleSet) add(r *Rule, name string) {
	if r == nil {
		return
	}
	e := &entry{Rule: r, name: name}
	if !r.hasHooks() {
		rs.reject(e, pberrors.ErrCodeUnknownRuleTarget, "rule has no hooks")
		return
	}
	if r.Selector != "" {
		sel, err := style.Compile(r.Selector)
		if err != nil {
			rs.reject(e, pberrors.ErrCodeInvalidSelector, pberrors.UserMessage(err))
			return
		}
		e.sel = sel
	} else if r.hasElementHooks() {
		rs.reject(e, pberrors.ErrCodeUnknownRuleTarget, "element hooks need a selector")
		return
	}
	rs.rules = append(rs.rules, e)
}

func (rs *RuleSet) reject(e *entry, code pberrors.Code, msg string) {
	rs.logger.Warn("rule rejected", "rule", e.label(), "code", code, "reason", msg)
	rs.rejected = append(rs.rejected, page.Diagnostic{Code: code, Node: e.label(), Message: msg, Page: -1})
}

// Names returns the registered rules' names in order. Rules added through
// AddMap without a name of their own carry their key.
func (rs *RuleSet) Names() []string {
	out := make([]string, len(rs.rules))
	for i, e := range rs.rules {
		out[i] = e.label()
	}
	return out
}

// Rules returns the registered rules in order.
func (rs *RuleSet) Rules() []*Rule {
	out := make([]*Rule, len(rs.rules))
	for i, e := range rs.rules {
		out[i] = e.Rule
	}
	return out
}

// Rejected returns the diagnostics of rules that were not registered.
func (rs *RuleSet) Rejected() []page.Diagnostic {
	return rs.rejected
}

// Len returns the number of registered rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// matching returns the rules whose element hooks apply to n.
func (rs *RuleSet) matching(n *content.Node) []*entry {
	var out []*entry
	for _, r := range rs.rules {
		if r.hasElementHooks() && r.matches(n) {
			out = append(out, r)
		}
	}
	return out
}
