package indexer

// PageCursor tracks pagination state for one indexing run. The range is
// inclusive; End of 0 means unbounded. A cyclic cursor wraps back to
// Start once the bounded range is exhausted, which is the only way it
// ever moves backwards.
type PageCursor struct {
	start   int
	end     int
	cyclic  bool
	current int
}

func NewPageCursor(start, end int, cyclic bool) *PageCursor {
	if start < 1 {
		start = 1
	}
	return &PageCursor{start: start, end: end, cyclic: cyclic, current: start}
}

// Current returns the page the cursor points at.
func (c *PageCursor) Current() int {
	return c.current
}

// Cyclic reports whether the cursor wraps instead of terminating.
func (c *PageCursor) Cyclic() bool {
	return c.cyclic
}

// Advance moves to the next page, wrapping to the start when the cursor
// is cyclic and the bounded range is exhausted.
func (c *PageCursor) Advance() {
	if c.cyclic && c.end > 0 && c.current >= c.end {
		c.current = c.start
		return
	}
	c.current++
}

// Exhausted reports whether a bounded, non-cyclic cursor has moved past
// its end page.
func (c *PageCursor) Exhausted() bool {
	return !c.cyclic && c.end > 0 && c.current > c.end
}

// Reset rewinds a cyclic cursor to its start page. It is a no-op for
// non-cyclic cursors, which never rewind.
func (c *PageCursor) Reset() {
	if c.cyclic {
		c.current = c.start
	}
}
