package style

import (
	"strings"

	"github.com/gompdf/pagebind/internal/content"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Selector is a compiled selector group: a list of alternatives separated by
// commas, each a chain of compound selectors joined by descendant
// combinators.
type Selector struct {
	source string
	groups [][]compound
}

// compound is a single tag#id.class1.class2 selector.
type compound struct {
	tag     string
	id      string
	classes []string
}

// Compile parses a selector such as "h1, section p.note" or "*".
// Attributes, pseudo-classes and child/sibling combinators are rejected.
func Compile(sel string) (*Selector, error) {
	s := &Selector{source: strings.TrimSpace(sel)}
	if s.source == "" {
		return nil, pberrors.New(pberrors.ErrCodeInvalidSelector, "empty selector")
	}
	for _, alt := range strings.Split(s.source, ",") {
		parts := strings.Fields(alt)
		if len(parts) == 0 {
			return nil, pberrors.New(pberrors.ErrCodeInvalidSelector, "empty alternative in %q", sel)
		}
		chain := make([]compound, 0, len(parts))
		for _, p := range parts {
			c, ok := parseCompound(p)
			if !ok {
				return nil, pberrors.New(pberrors.ErrCodeInvalidSelector, "unsupported selector %q in %q", p, sel)
			}
			chain = append(chain, c)
		}
		s.groups = append(s.groups, chain)
	}
	return s, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(sel string) *Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether n matches any alternative of the selector.
func (s *Selector) Match(n *content.Node) bool {
	if s == nil || !n.IsElement() {
		return false
	}
	for _, chain := range s.groups {
		if matchChain(n, chain) {
			return true
		}
	}
	return false
}

// Specificity returns the highest specificity among alternatives that match
// n.
func (s *Selector) Specificity(n *content.Node) Specificity {
	var best Specificity
	for _, chain := range s.groups {
		if !matchChain(n, chain) {
			continue
		}
		var sp Specificity
		for _, c := range chain {
			if c.id != "" {
				sp.ID++
			}
			sp.Class += len(c.classes)
			if c.tag != "" && c.tag != "*" {
				sp.Element++
			}
		}
		if compareSpecificity(sp, best) > 0 {
			best = sp
		}
	}
	return best
}

// matchChain matches the rightmost compound against n and the rest against
// ancestors, innermost first.
func matchChain(n *content.Node, chain []compound) bool {
	if !chain[len(chain)-1].match(n) {
		return false
	}
	cur := n.Parent
	for i := len(chain) - 2; i >= 0; i-- {
		found := false
		for anc := cur; anc != nil; anc = anc.Parent {
			if chain[i].match(anc) {
				found = true
				cur = anc.Parent
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (c compound) match(n *content.Node) bool {
	if !n.IsElement() {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != n.Tag {
		return false
	}
	if c.id != "" && n.ID() != c.id {
		return false
	}
	for _, need := range c.classes {
		if !n.HasClass(need) {
			return false
		}
	}
	return true
}

// parseCompound scans sel once, extracting an optional tag, an optional id
// and any number of classes.
func parseCompound(sel string) (compound, bool) {
	var c compound
	i := 0
	if sel[0] != '.' && sel[0] != '#' {
		j := strings.IndexAny(sel, "#.")
		if j < 0 {
			j = len(sel)
		}
		c.tag = strings.ToLower(sel[:j])
		i = j
	}
	for i < len(sel) {
		j := i + 1
		for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
			j++
		}
		name := sel[i+1 : j]
		if name == "" {
			return c, false
		}
		if sel[i] == '#' {
			c.id = name
		} else {
			c.classes = append(c.classes, name)
		}
		i = j
	}
	if !validIdent(c.tag) || !validIdent(c.id) {
		return c, false
	}
	for _, cl := range c.classes {
		if !validIdent(cl) {
			return c, false
		}
	}
	return c, true
}

func validIdent(s string) bool {
	if s == "*" {
		return true
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r > 127:
		default:
			return false
		}
	}
	return true
}
