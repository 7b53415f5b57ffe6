package page

import (
	"strings"

	"github.com/gompdf/pagebind/internal/content"
)

// ContinuationAttr marks element shells re-opened on a later page.
const ContinuationAttr = "data-continuation"

// Box is a mutable working copy of a content node placed on a page.
type Box struct {
	Kind     content.Kind
	Tag      string
	Attrs    []content.Attr
	Text     string
	Children []*Box
	Parent   *Box
	// Source is the content node this box was copied from. Nil for boxes
	// synthesized by rules.
	Source *content.Node
}

// Shell returns an element box with the tag and attributes of src and no
// children.
func Shell(src *content.Node) *Box {
	attrs := make([]content.Attr, len(src.Attrs))
	copy(attrs, src.Attrs)
	return &Box{
		Kind:   src.Kind,
		Tag:    src.Tag,
		Attrs:  attrs,
		Text:   src.Text,
		Source: src,
	}
}

// NewText returns a text box copied from src with the given value.
func NewText(value string, src *content.Node) *Box {
	return &Box{Kind: content.KindText, Text: value, Source: src}
}

// NewElement returns a synthesized element box.
func NewElement(tag string, attrs []content.Attr, children ...*Box) *Box {
	b := &Box{Kind: content.KindElement, Tag: tag, Attrs: attrs}
	for _, c := range children {
		b.Append(c)
	}
	return b
}

// IsElement reports whether b is an element box.
func (b *Box) IsElement() bool {
	return b != nil && b.Kind == content.KindElement
}

// Append attaches child as the last child of b, detaching it first.
func (b *Box) Append(child *Box) {
	child.Detach()
	child.Parent = b
	b.Children = append(b.Children, child)
}

// Prepend attaches child as the first child of b.
func (b *Box) Prepend(child *Box) {
	child.Detach()
	child.Parent = b
	b.Children = append([]*Box{child}, b.Children...)
}

// InsertAfter places sibling right after b in b's parent. A detached b
// gets no sibling and InsertAfter reports false.
func (b *Box) InsertAfter(sibling *Box) bool {
	parent := b.Parent
	if parent == nil {
		return false
	}
	sibling.Detach()
	for i, c := range parent.Children {
		if c == b {
			sibling.Parent = parent
			parent.Children = append(parent.Children[:i+1], append([]*Box{sibling}, parent.Children[i+1:]...)...)
			return true
		}
	}
	return false
}

// Remove detaches child from b. It reports whether child was found.
func (b *Box) Remove(child *Box) bool {
	for i, c := range b.Children {
		if c == child {
			b.Children = append(b.Children[:i:i], b.Children[i+1:]...)
			child.Parent = nil
			return true
		}
	}
	return false
}

// Detach removes b from its parent, if any.
func (b *Box) Detach() {
	if b.Parent != nil {
		b.Parent.Remove(b)
	}
}

// Empty removes all children.
func (b *Box) Empty() {
	for _, c := range b.Children {
		c.Parent = nil
	}
	b.Children = nil
}

// ShellClone copies b without its children.
func (b *Box) ShellClone() *Box {
	attrs := make([]content.Attr, len(b.Attrs))
	copy(attrs, b.Attrs)
	return &Box{Kind: b.Kind, Tag: b.Tag, Attrs: attrs, Text: b.Text, Source: b.Source}
}

// Clone deep-copies b. The copy is detached.
func (b *Box) Clone() *Box {
	return b.cloneInto(nil)
}

// cloneInto deep-copies b and records every old->new pair in m when m is
// non-nil.
func (b *Box) cloneInto(m map[*Box]*Box) *Box {
	c := b.ShellClone()
	if m != nil {
		m[b] = c
	}
	if len(b.Children) > 0 {
		c.Children = make([]*Box, 0, len(b.Children))
		for _, ch := range b.Children {
			cc := ch.cloneInto(m)
			cc.Parent = c
			c.Children = append(c.Children, cc)
		}
	}
	return c
}

// Attr returns the value of the named attribute.
func (b *Box) Attr(key string) (string, bool) {
	for _, a := range b.Attrs {
		if strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func (b *Box) SetAttr(key, val string) {
	for i, a := range b.Attrs {
		if strings.EqualFold(a.Key, key) {
			b.Attrs[i].Val = val
			return
		}
	}
	b.Attrs = append(b.Attrs, content.Attr{Key: key, Val: val})
}

// DelAttr removes an attribute and reports whether it was present.
func (b *Box) DelAttr(key string) bool {
	for i, a := range b.Attrs {
		if strings.EqualFold(a.Key, key) {
			b.Attrs = append(b.Attrs[:i:i], b.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// HasClass reports whether the class attribute contains c.
func (b *Box) HasClass(c string) bool {
	v, _ := b.Attr("class")
	for _, have := range strings.Fields(v) {
		if have == c {
			return true
		}
	}
	return false
}

// AddClass appends c to the class attribute if missing.
func (b *Box) AddClass(c string) {
	if b.HasClass(c) {
		return
	}
	v, _ := b.Attr("class")
	b.SetAttr("class", strings.TrimSpace(v+" "+c))
}

// IsContinuation reports whether b was re-opened after a page break.
func (b *Box) IsContinuation() bool {
	_, ok := b.Attr(ContinuationAttr)
	return ok
}

// TextContent concatenates the text of b and its descendants.
func (b *Box) TextContent() string {
	var sb strings.Builder
	b.Walk(func(c *Box) bool {
		if c.Kind == content.KindText {
			sb.WriteString(c.Text)
		}
		return true
	})
	return sb.String()
}

// Walk visits b and its descendants in document order. Returning false
// skips the children of the visited box.
func (b *Box) Walk(fn func(*Box) bool) {
	if b == nil || !fn(b) {
		return
	}
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Find returns the first box in document order for which match is true.
func (b *Box) Find(match func(*Box) bool) *Box {
	var found *Box
	b.Walk(func(c *Box) bool {
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

// Contains reports whether other is b or one of its descendants.
func (b *Box) Contains(other *Box) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == b {
			return true
		}
	}
	return false
}

// Name renders a short label for diagnostics.
func (b *Box) Name() string {
	if b == nil {
		return "<nil>"
	}
	if b.Source != nil {
		return b.Source.Name()
	}
	if b.Kind == content.KindText {
		return content.Text(b.Text).Name()
	}
	return b.Tag
}
