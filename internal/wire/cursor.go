// Package wire provides the low-level, zero-copy primitives the NBT parser
// is built from: a position-tracked byte cursor, the tag discriminant codec,
// and a generic big-endian slice view. None of these types allocate or copy
// the bytes they are handed; they only ever borrow.
package wire

// Cursor is a thin, position-tracked view over a borrowed byte slice.
//
// A Cursor never copies or allocates. Its only state is the borrowed slice
// and a monotonically non-decreasing position; a failed Consume leaves the
// position untouched.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a Cursor positioned at the start of data.
func NewCursor(data []byte) Cursor {
	return Cursor{data: data}
}

// Available returns the unconsumed suffix of the borrowed slice.
func (c Cursor) Available() []byte {
	return c.data[c.pos:]
}

// Consumed returns the already-consumed prefix of the borrowed slice.
func (c Cursor) Consumed() []byte {
	return c.data[:c.pos]
}

// Len returns the number of unconsumed bytes.
func (c Cursor) Len() int {
	return len(c.data) - c.pos
}

// Peek returns the next n bytes without advancing the position, or false if
// fewer than n bytes remain available.
func (c Cursor) Peek(n int) ([]byte, bool) {
	if n > c.Len() {
		return nil, false
	}
	return c.data[c.pos : c.pos+n], true
}

// Consume returns the next n bytes and advances the position by n. On
// failure (fewer than n bytes available) the position is left untouched.
func (c *Cursor) Consume(n int) ([]byte, bool) {
	b, ok := c.Peek(n)
	if !ok {
		return nil, false
	}
	c.pos += n
	return b, true
}

