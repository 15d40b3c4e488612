package nbt

import (
	"errors"
	"fmt"
)

// ErrMaxDepth is returned when the nesting stack would grow past the
// Parser's configured MaxDepth. It guards against pathological or
// adversarial input; the reference state machine this parser is modeled
// on has no such guard.
var ErrMaxDepth = errors.New("nbt: nesting depth exceeds configured maximum")

// InvalidTag reports that a tag discriminant byte fell outside the closed
// 0..=12 range.
type InvalidTag struct {
	Byte byte
}

func (e *InvalidTag) Error() string {
	return fmt.Sprintf("nbt: invalid tag byte 0x%02x", e.Byte)
}

// InvalidLen reports a negative length prefix on a ByteArray, IntArray,
// LongArray, or List, or a structurally impossible list (an End element
// tag with a nonzero declared length).
type InvalidLen struct {
	Len int32
}

func (e *InvalidLen) Error() string {
	return fmt.Sprintf("nbt: invalid length %d", e.Len)
}

// Needs is returned by NextFragment when the parser cannot make progress
// without at least N more bytes beyond the current position. It is not an
// error: it is the parser's cooperative flow-control signal to the caller,
// mirroring the teacher's own container.ParseStatus distinction between
// ParseNeedMoreData and ParseError.
type Needs struct {
	N int
}
