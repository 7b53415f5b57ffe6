// Package render defines the presentation adapters that consume a finished
// book.
package render

import "github.com/gompdf/pagebind/internal/page"

// Renderer presents a book. Render is called once with the final page
// sequence; RenderProgress may be called any number of times before that
// with the pages completed so far.
type Renderer interface {
	Render(book *page.Book) error
	RenderProgress(book *page.Book, fraction float64)
}
