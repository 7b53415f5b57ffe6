package measure

import (
	"context"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/semaphore"

	"github.com/gompdf/pagebind/internal/page"
)

// Context is the shared measurement context. Only one Session may hold it
// at a time, and a Session measures one attached page at a time.
type Context struct {
	oracle Oracle
	sem    *semaphore.Weighted
	logger *log.Logger
}

// NewContext wraps an oracle. A nil logger uses log.Default().
func NewContext(o Oracle, logger *log.Logger) *Context {
	if logger == nil {
		logger = log.Default()
	}
	return &Context{oracle: o, sem: semaphore.NewWeighted(1), logger: logger}
}

// Acquire blocks until the context is free or ctx is done.
func (c *Context) Acquire(ctx context.Context) (*Session, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return &Session{c: c}, nil
}

// TryAcquire returns a session if the context is free right now.
func (c *Context) TryAcquire() (*Session, bool) {
	if !c.sem.TryAcquire(1) {
		return nil, false
	}
	return &Session{c: c}, true
}

// Session is an exclusive hold on a Context. Release must be called on
// every exit path; it is safe to call more than once.
type Session struct {
	c        *Context
	attached *page.Page
	queries  int
	released bool
}

// Attach makes p the page being measured, detaching any previous one.
func (s *Session) Attach(p *page.Page) {
	if s.released {
		panic("measure: attach on released session")
	}
	s.attached = p
}

// Detach clears the attached page.
func (s *Session) Detach() {
	s.attached = nil
}

// Attached returns the page being measured, or nil.
func (s *Session) Attached() *page.Page {
	return s.attached
}

// Overflows queries the oracle for the attached page. With no page
// attached nothing can overflow.
func (s *Session) Overflows() bool {
	if s.released {
		panic("measure: query on released session")
	}
	if s.attached == nil {
		return false
	}
	s.queries++
	return s.c.oracle.Overflows(s.attached)
}

// Queries returns the number of oracle queries made so far.
func (s *Session) Queries() int {
	return s.queries
}

// Release detaches and frees the context.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true
	s.attached = nil
	s.c.sem.Release(1)
	s.c.logger.Debug("measurement session released", "queries", s.queries)
}
