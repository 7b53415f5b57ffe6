// Package content defines the immutable source tree that gets paginated.
//
// A tree is built once, either programmatically with Element and Text or by
// one of the parsers, and is never mutated afterwards. The paginator reads it
// to produce working copies (page.Box values) that it is free to split and
// clone.
package content

import (
	"strings"
)

// Kind identifies what a Node represents.
type Kind int

const (
	// KindElement is a tagged element with attributes and children
	KindElement Kind = iota
	// KindText is a run of character data
	KindText
	// KindComment is a markup comment
	KindComment
	// KindDoctype is a document type declaration
	KindDoctype
	// KindRaw is any other node the parsers pass through unchanged
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindText:
		return "text"
	case KindComment:
		return "comment"
	case KindDoctype:
		return "doctype"
	default:
		return "raw"
	}
}

// Attr is a single element attribute.
type Attr struct {
	Key string
	Val string
}

// Node is one vertex of the source tree.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Node
	Parent   *Node
}

// Element creates an element node and adopts children.
// Tags are stored lower-case.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	n := &Node{
		Kind:  KindElement,
		Tag:   strings.ToLower(tag),
		Attrs: attrs,
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// AppendChild adopts c as the last child.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Text creates a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Other creates a node of an arbitrary non-element kind.
func Other(kind Kind, data string) *Node {
	return &Node{Kind: kind, Text: data}
}

// Attrs builds an attribute list from key/value pairs.
// A trailing key without a value gets an empty value.
func Attrs(kv ...string) []Attr {
	out := make([]Attr, 0, (len(kv)+1)/2)
	for i := 0; i < len(kv); i += 2 {
		a := Attr{Key: kv[i]}
		if i+1 < len(kv) {
			a.Val = kv[i+1]
		}
		out = append(out, a)
	}
	return out
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// ID returns the id attribute, or "".
func (n *Node) ID() string {
	v, _ := n.Attr("id")
	return v
}

// Classes returns the class list in source order.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the class list contains c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool {
	return n != nil && n.Kind == KindElement
}

// TextContent concatenates all descendant text.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.Kind == KindText {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// Find returns the first node in document order for which match is true.
func (n *Node) Find(match func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Name renders a short human readable label such as p#intro.lead or
// "text "Lorem ipsum..."" for diagnostics.
func (n *Node) Name() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindElement:
		var b strings.Builder
		b.WriteString(n.Tag)
		if id := n.ID(); id != "" {
			b.WriteByte('#')
			b.WriteString(id)
		}
		for _, c := range n.Classes() {
			b.WriteByte('.')
			b.WriteString(c)
		}
		return b.String()
	case KindText:
		return "text " + quoteSnippet(n.Text)
	default:
		return n.Kind.String()
	}
}

func quoteSnippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > 25 {
		s = string(r[:25]) + "..."
	}
	return `"` + s + `"`
}
