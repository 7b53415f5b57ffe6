package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gompdf/pagebind/internal/page"
	"github.com/gompdf/pagebind/pkg/api"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

func TestPrintSummary(t *testing.T) {
	book := &page.Book{Size: page.SizePocket, Margins: page.DefaultMargins}
	book.Pages = []*page.Page{page.New(book.Size, book.Margins), page.New(book.Size, book.Margins)}
	result := &api.Result{Book: book, Title: "The Estuary", PassID: "0b7c"}

	var buf bytes.Buffer
	printSummary(&buf, "book.pdf", "pdf", result)
	out := buf.String()
	assert.Contains(t, out, "Bound 2 pages")
	assert.Contains(t, out, "book.pdf")
	assert.Contains(t, out, "The Estuary")
	assert.NotContains(t, out, "diagnostics")

	book.Diagnostics = []page.Diagnostic{{Code: pberrors.ErrCodeUnsplittableContent, Node: "p", Message: "word wider than page", Page: 0}}
	buf.Reset()
	printSummary(&buf, "book.pdf", "pdf", result)
	assert.Contains(t, buf.String(), "1 diagnostics")
	assert.Contains(t, buf.String(), "word wider than page")
}
