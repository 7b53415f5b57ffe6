package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gompdf/pagebind/internal/content"
)

const sample = `<!DOCTYPE html>
<html>
<head>
  <title> The Book </title>
  <link rel="stylesheet" href="print.css">
  <link rel="icon" href="favicon.ico">
  <style>p { margin: 0 }</style>
</head>
<body>
  <h1 id="top" class="title big">Hello</h1>
  <!-- draft -->
  <p>One <em>two</em> three</p>
  <pre>
  keep
  </pre>
</body>
</html>`

func TestParseDocument(t *testing.T) {
	doc, err := NewParser().ParseString(sample)
	require.NoError(t, err)

	assert.Equal(t, "html", doc.Root.Tag)
	assert.Equal(t, "The Book", doc.Title)
	assert.Equal(t, []string{"print.css"}, doc.StylesheetLinks)
	assert.Equal(t, []string{"p { margin: 0 }"}, doc.Styles)

	require.NotNil(t, doc.Body)
	var tags []string
	for _, c := range doc.Body.Children {
		if c.IsElement() {
			tags = append(tags, c.Tag)
		}
	}
	assert.Equal(t, []string{"h1", "p", "pre"}, tags)

	h1 := doc.Body.Find(func(n *content.Node) bool { return n.Tag == "h1" })
	require.NotNil(t, h1)
	assert.Equal(t, "top", h1.ID())
	assert.Equal(t, []string{"title", "big"}, h1.Classes())
	assert.Same(t, doc.Body, h1.Parent)

	comment := doc.Body.Find(func(n *content.Node) bool { return n.Kind == content.KindComment })
	require.NotNil(t, comment)
	assert.Equal(t, " draft ", comment.Text)

	p := doc.Body.Find(func(n *content.Node) bool { return n.Tag == "p" })
	assert.Equal(t, "One two three", p.TextContent())

	pre := doc.Body.Find(func(n *content.Node) bool { return n.Tag == "pre" })
	assert.Contains(t, pre.TextContent(), "  keep\n")
}

func TestParseDropsIndentationOnly(t *testing.T) {
	doc, err := NewParser().ParseString("<body><div>\n  <p>a</p>\n</div><p>b <i>c</i> d</p></body>")
	require.NoError(t, err)
	div := doc.Body.Children[0]
	require.Len(t, div.Children, 1)
	assert.Equal(t, "p", div.Children[0].Tag)

	p := doc.Body.Children[1]
	assert.Len(t, p.Children, 3, "inline spaces survive")

	kept, err := (&Parser{KeepWhitespace: true}).ParseString("<body><div>\n  <p>a</p>\n</div></body>")
	require.NoError(t, err)
	assert.Len(t, kept.Body.Children[0].Children, 3)
}

func TestParseFragment(t *testing.T) {
	body, err := NewParser().ParseFragment(`<p class="x">one</p><p>two</p>`)
	require.NoError(t, err)
	assert.Equal(t, "body", body.Tag)
	require.Len(t, body.Children, 2)
	assert.True(t, body.Children[0].HasClass("x"))
	assert.Same(t, body, body.Children[1].Parent)
}

func TestParseWithoutBodyGetsOne(t *testing.T) {
	doc, err := NewParser().ParseString("plain text")
	require.NoError(t, err)
	require.NotNil(t, doc.Body)
	assert.Equal(t, "plain text", doc.Body.TextContent())
}

func TestParseComposesText(t *testing.T) {
	body, err := NewParser().ParseFragment("<p>Cafe\u0301</p>")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9", body.TextContent())
}
