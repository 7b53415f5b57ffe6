package pagination

import (
	"github.com/charmbracelet/log"

	"github.com/gompdf/pagebind/internal/content"
	"github.com/gompdf/pagebind/internal/page"
	pberrors "github.com/gompdf/pagebind/pkg/errors"
)

// Descriptor is one open ancestor element on the path. On a page break
// the engine re-opens it in place on the new page.
type Descriptor struct {
	Tag   string
	Attrs []content.Attr
	// Continuation is set once the element has been re-opened on a later
	// page.
	Continuation bool
	Source       *content.Node
	// Box is the element's box on the page being written.
	Box *page.Box
	// Dropped is set when the element could not fit on an empty page. Its
	// remaining children are skipped.
	Dropped bool
}

// State is the flow state of one pass. Rule hooks receive it to inspect
// and steer the flow.
type State struct {
	// Page is the page being written.
	Page *page.Page
	// Path is the chain of open ancestors, outermost first.
	Path []*Descriptor
	// Pages holds every page created so far, in order.
	Pages []*page.Page

	store *Store
	f     *flow
}

// Store returns the per-pass rule store.
func (s *State) Store() *Store {
	return s.store
}

// Logger returns the pass logger.
func (s *State) Logger() *log.Logger {
	return s.f.logger
}

// NewPage starts a new page, re-opens the path on it and makes it current.
func (s *State) NewPage() *page.Page {
	return s.f.newPage()
}

// Overflows reports whether the current page overflows.
func (s *State) Overflows() bool {
	return s.f.overflows()
}

// Diagnose records a recovered condition against the current page.
func (s *State) Diagnose(code pberrors.Code, node, msg string) {
	s.f.diagnose(code, node, msg)
}

// Bookmark is a saved flow position: a page and the path written on it.
type Bookmark struct {
	page *page.Page
	path []Descriptor
}

// Save records the current flow position.
func (s *State) Save() Bookmark {
	b := Bookmark{page: s.Page, path: make([]Descriptor, len(s.Path))}
	for i, d := range s.Path {
		b.path[i] = *d
	}
	return b
}

// Resume returns the flow to a saved position. Pages created in between
// stay in the sequence.
func (s *State) Resume(b Bookmark) {
	if b.page == nil {
		return
	}
	s.Page = b.page
	for i := 0; i < len(s.Path) && i < len(b.path); i++ {
		*s.Path[i] = b.path[i]
	}
}

// attachPoint returns the box new content is appended to.
func (s *State) attachPoint() *page.Box {
	for i := len(s.Path) - 1; i >= 0; i-- {
		if !s.Path[i].Dropped {
			return s.Path[i].Box
		}
	}
	return s.Page.Flow
}

func (s *State) push(d *Descriptor) {
	s.Path = append(s.Path, d)
}

func (s *State) pop() *Descriptor {
	if len(s.Path) == 0 {
		return nil
	}
	d := s.Path[len(s.Path)-1]
	s.Path = s.Path[:len(s.Path)-1]
	return d
}

// dropped reports whether d or any of its ancestors on the path has been
// dropped.
func (s *State) dropped(d *Descriptor) bool {
	for _, p := range s.Path {
		if p.Dropped {
			return true
		}
		if p == d {
			break
		}
	}
	return d != nil && d.Dropped
}

// anyDropped reports whether any open ancestor has been dropped.
func (s *State) anyDropped() bool {
	for _, p := range s.Path {
		if p.Dropped {
			return true
		}
	}
	return false
}
