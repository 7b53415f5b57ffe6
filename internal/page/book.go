package page

import (
	"fmt"

	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Diagnostic records a condition the paginator recovered from.
type Diagnostic struct {
	Code    pberrors.Code
	Node    string
	Message string
	// Page is the index of the page being written when the condition
	// occurred, or -1.
	Page int
}

func (d Diagnostic) String() string {
	if d.Page >= 0 {
		return fmt.Sprintf("%s: %s (page %d): %s", d.Code, d.Node, d.Page+1, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Code, d.Node, d.Message)
}

// Err converts the diagnostic into a structured error.
func (d Diagnostic) Err() error {
	return pberrors.New(d.Code, "%s: %s", d.Node, d.Message)
}

// Book is the ordered result of a pagination pass.
type Book struct {
	Pages       []*Page
	Size        Size
	Margins     Margins
	Diagnostics []Diagnostic
}

// Blank returns a padding page with the book's geometry. It is the blank
// factory handed to the arrangement functions.
func (b *Book) Blank() *Page {
	return NewBlank(b.Size, b.Margins)
}

// Len returns the number of pages.
func (b *Book) Len() int {
	return len(b.Pages)
}

// WithPages returns a shallow copy of the book carrying a different page
// sequence.
func (b *Book) WithPages(pages []*Page) *Book {
	c := *b
	c.Pages = pages
	return &c
}

// DiagnosticsByCode filters diagnostics.
func (b *Book) DiagnosticsByCode(code pberrors.Code) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.Diagnostics {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}
