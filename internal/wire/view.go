package wire

import (
	"encoding/binary"
	"math"
)

// Scalar is the set of fixed-width types a View can be instantiated over.
// The FSM only ever needs {int16,int32,int64,float32,float64}; the wider set
// is exposed so callers building their own consumers over borrowed payloads
// (e.g. reinterpreting a ByteArrayFrame) get the same zero-copy guarantees.
type Scalar interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func byteWidth[T Scalar]() int {
	var zero T
	switch any(zero).(type) {
	case int8, uint8:
		return 1
	case int16, uint16:
		return 2
	case int32, uint32, float32:
		return 4
	case int64, uint64, float64:
		return 8
	default:
		panic("wire: unreachable scalar width")
	}
}

// View is a typed, zero-copy window over a borrowed byte slice, interpreted
// as a sequence of big-endian fixed-width scalars. It never copies; its
// lifetime is bounded by the lifetime of the byte slice it borrows.
type View[T Scalar] struct {
	data []byte
}

// NewView constructs a View over data, iff len(data) is a multiple of the
// element width. An empty slice always succeeds, yielding a zero-length view.
func NewView[T Scalar](data []byte) (View[T], bool) {
	if len(data)%byteWidth[T]() != 0 {
		return View[T]{}, false
	}
	return View[T]{data: data}, true
}

// Len returns the number of elements in the view.
func (v View[T]) Len() int {
	w := byteWidth[T]()
	if w == 0 {
		return 0
	}
	return len(v.data) / w
}

// Empty reports whether the view has zero elements.
func (v View[T]) Empty() bool {
	return len(v.data) == 0
}

// Bytes returns the raw, borrowed byte slice backing the view.
func (v View[T]) Bytes() []byte {
	return v.data
}

// At returns the element at idx, performing an unaligned big-endian load.
// It panics if idx is out of range, matching slice indexing semantics.
func (v View[T]) At(idx int) T {
	w := byteWidth[T]()
	return decodeAt[T](v.data[idx*w : idx*w+w])
}

func decodeAt[T Scalar](b []byte) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		return any(int8(b[0])).(T)
	case uint8:
		return any(b[0]).(T)
	case int16:
		return any(int16(binary.BigEndian.Uint16(b))).(T)
	case uint16:
		return any(binary.BigEndian.Uint16(b)).(T)
	case int32:
		return any(int32(binary.BigEndian.Uint32(b))).(T)
	case uint32:
		return any(binary.BigEndian.Uint32(b)).(T)
	case int64:
		return any(int64(binary.BigEndian.Uint64(b))).(T)
	case uint64:
		return any(binary.BigEndian.Uint64(b)).(T)
	case float32:
		return any(math.Float32frombits(binary.BigEndian.Uint32(b))).(T)
	case float64:
		return any(math.Float64frombits(binary.BigEndian.Uint64(b))).(T)
	default:
		panic("wire: unreachable scalar decode")
	}
}

// Iter returns a forward iterator over the view's elements, from index 0.
func (v View[T]) Iter() *ViewIter[T] {
	return &ViewIter[T]{v: v, i: 0, j: v.Len()}
}

// ViewIter is a forward/reverse cursor over a View. Its zero value is not
// usable; obtain one via View.Iter.
type ViewIter[T Scalar] struct {
	v    View[T]
	i, j int // remaining range is [i, j)
}

// Next returns the next element in forward order, or false when exhausted.
func (it *ViewIter[T]) Next() (T, bool) {
	if it.i >= it.j {
		var zero T
		return zero, false
	}
	val := it.v.At(it.i)
	it.i++
	return val, true
}

// NextBack returns the next element in reverse order, or false when exhausted.
func (it *ViewIter[T]) NextBack() (T, bool) {
	if it.i >= it.j {
		var zero T
		return zero, false
	}
	it.j--
	return it.v.At(it.j), true
}

// Nth advances the forward cursor by n elements and returns the one it
// lands on (equivalent to calling Next n+1 times and keeping the last).
func (it *ViewIter[T]) Nth(n int) (T, bool) {
	it.i += n
	return it.Next()
}

// Len reports the number of elements remaining in the iterator.
func (it *ViewIter[T]) Len() int {
	if it.j <= it.i {
		return 0
	}
	return it.j - it.i
}
