package nbt

import (
	"encoding/binary"
	"math"

	"github.com/streamnbt/nbt/internal/pool"
	"github.com/streamnbt/nbt/internal/wire"
)

// DefaultMaxDepth bounds the nesting stack when a Parser is constructed
// with NewParser. It is generous enough for any real-world NBT document;
// callers parsing untrusted input at tighter bounds should use
// NewParserWithMaxDepth.
const DefaultMaxDepth = 512

type tagKind int

const (
	tagEmpty tagKind = iota
	tagByte
	tagShort
	tagInt
	tagLong
	tagFloat
	tagDouble
	tagByteArrayNoLength
	tagByteArray
	tagStringNoLength
	tagString
	tagListNoTag
	tagListNoLength
	tagList
)

// tagState is the flat representation of spec.md §3.4's TagState sum type:
// kind selects the variant, elem and remaining hold the payload for the
// variants that carry one (array/string remaining-length, list
// element-tag + remaining-count).
type tagState struct {
	kind      tagKind
	elem      wire.Tag
	remaining int32
}

type nameKind int

const (
	nameComplete nameKind = iota
	nameNoLen
	nameRemaining
)

type nameState struct {
	kind      nameKind
	remaining uint16
}

type frameKind int

const (
	frameCompound frameKind = iota
	frameList
)

// frame is one entry of the nesting stack: either a bare Compound marker
// or a List/Array resumption point (element tag + remaining count).
type frame struct {
	kind      frameKind
	elem      wire.Tag
	remaining int32
}

var framePool pool.Slices[frame]

// Parser is the fragmenting state machine described in spec.md §4.4: a
// resumable, pull-based, zero-copy decoder for one NBT byte stream. The
// zero value is not ready to use; construct one with NewParser or
// NewParserWithMaxDepth.
type Parser struct {
	cur      wire.Cursor
	tag      tagState
	name     nameState
	stack    []frame
	maxDepth int
}

// NewParser returns a Parser with DefaultMaxDepth.
func NewParser() *Parser {
	return NewParserWithMaxDepth(DefaultMaxDepth)
}

// NewParserWithMaxDepth returns a Parser whose nesting stack is bounded at
// maxDepth; a zero or negative maxDepth disables the bound entirely,
// matching the reference implementation's unguarded behavior.
func NewParserWithMaxDepth(maxDepth int) *Parser {
	return &Parser{
		stack:    framePool.Get(pool.Size16),
		maxDepth: maxDepth,
	}
}

// Attach rebinds the parser to a new input slice, preserving tag state,
// name state, and the nesting stack. The cursor position resets to 0; the
// caller is expected to have already trimmed data to begin where the
// previous call's Consumed() left off.
func (p *Parser) Attach(data []byte) {
	p.cur = wire.NewCursor(data)
}

// Consumed returns the number of bytes absorbed from the currently
// attached buffer. The caller uses this to advance its external sliding
// window before the next Attach.
func (p *Parser) Consumed() int {
	return len(p.cur.Consumed())
}

// Release returns the parser's nesting stack to the shared pool. Call it
// when the parser itself goes out of use (e.g. after the stream
// completes) to let a future Parser reuse the backing array.
func (p *Parser) Release() {
	if p.stack != nil {
		framePool.Put(p.stack[:0])
		p.stack = nil
	}
}

func scalarWidth(t wire.Tag) int {
	switch t {
	case wire.TagByte:
		return 1
	case wire.TagShort:
		return 2
	case wire.TagInt, wire.TagFloat:
		return 4
	case wire.TagLong, wire.TagDouble:
		return 8
	default:
		return 0
	}
}

func (p *Parser) pushFrame(f frame) error {
	if p.maxDepth > 0 && len(p.stack) >= p.maxDepth {
		return ErrMaxDepth
	}
	p.stack = append(p.stack, f)
	return nil
}

// popOuter pops the top of the nesting stack and sets TagState to resume
// whatever it reveals, per spec.md §4.4.5: a Compound reveals TagState =
// Empty; a List/Array reveals TagState = List(elem, remaining); an empty
// stack also resolves to Empty (top level). Every entry's completion
// (scalar value, or the terminal empty-sentinel frame of a string or byte
// array) triggers exactly one call, regardless of whether the entry sits
// directly under the revealed frame — this is the literal nesting-pop
// contract, not a per-container pop.
func (p *Parser) popOuter() {
	if len(p.stack) == 0 {
		p.tag = tagState{kind: tagEmpty}
		return
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	switch top.kind {
	case frameCompound:
		p.tag = tagState{kind: tagEmpty}
	case frameList:
		p.tag = tagState{kind: tagList, elem: top.elem, remaining: top.remaining}
	}
}

func scalarFragment(t wire.Tag, b []byte) Fragment {
	switch t {
	case wire.TagByte:
		return Fragment{Kind: ByteValue, Byte: int8(b[0])}
	case wire.TagShort:
		return Fragment{Kind: ShortValue, Short: int16(binary.BigEndian.Uint16(b))}
	case wire.TagInt:
		return Fragment{Kind: IntValue, Int: int32(binary.BigEndian.Uint32(b))}
	case wire.TagLong:
		return Fragment{Kind: LongValue, Long: int64(binary.BigEndian.Uint64(b))}
	case wire.TagFloat:
		bits := binary.BigEndian.Uint32(b)
		return Fragment{Kind: FloatValue, Float: math.Float32frombits(bits)}
	case wire.TagDouble:
		bits := binary.BigEndian.Uint64(b)
		return Fragment{Kind: DoubleValue, Double: math.Float64frombits(bits)}
	default:
		panic("nbt: scalarFragment called with non-scalar tag")
	}
}

// NextFragment drives the state machine forward until it can report
// exactly one of: a fully-decoded fragment (err == nil, needs.N == 0), an
// input-exhaustion point (err == nil, needs.N > 0 — at least that many
// more bytes are required beyond the current position before the next
// Attach/NextFragment call can make progress), or a parse error (err !=
// nil, in which case the other two return values are meaningless and the
// parser must be discarded).
func (p *Parser) NextFragment() (Fragment, Needs, error) {
	for {
		if p.name.kind != nameComplete {
			frag, needs, done, err := p.stepName()
			if err != nil || needs.N > 0 || done {
				return frag, needs, err
			}
			continue
		}

		frag, needs, done, err := p.stepTag()
		if err != nil || needs.N > 0 || done {
			return frag, needs, err
		}
	}
}

// stepName resolves one step of the name sub-phase (spec.md §4.4.3).
// done reports whether a fragment was produced (frag is then valid).
func (p *Parser) stepName() (frag Fragment, needs Needs, done bool, err error) {
	switch p.name.kind {
	case nameNoLen:
		b, ok := p.cur.Consume(2)
		if !ok {
			return Fragment{}, Needs{N: 2}, false, nil
		}
		p.name.kind = nameRemaining
		p.name.remaining = binary.BigEndian.Uint16(b)
		return Fragment{}, Needs{}, false, nil

	case nameRemaining:
		if p.name.remaining == 0 {
			p.name.kind = nameComplete
			return Fragment{Kind: NameFrame}, Needs{}, true, nil
		}
		avail := p.cur.Len()
		if avail == 0 {
			return Fragment{}, Needs{N: 1}, false, nil
		}
		n := avail
		if int(p.name.remaining) < n {
			n = int(p.name.remaining)
		}
		b, _ := p.cur.Consume(n)
		p.name.remaining -= uint16(n)
		return Fragment{Kind: NameFrame, Bytes: b}, Needs{}, true, nil

	default:
		panic("nbt: stepName called with NameComplete")
	}
}

// stepTag resolves one step of the tag sub-phase (spec.md §4.4.4).
func (p *Parser) stepTag() (frag Fragment, needs Needs, done bool, err error) {
	switch p.tag.kind {
	case tagEmpty:
		return p.stepTagEmpty()

	case tagByte, tagShort, tagInt, tagLong, tagFloat, tagDouble:
		return p.stepScalar()

	case tagStringNoLength:
		b, ok := p.cur.Consume(2)
		if !ok {
			return Fragment{}, Needs{N: 2}, false, nil
		}
		p.tag.kind = tagString
		p.tag.remaining = int32(binary.BigEndian.Uint16(b))
		return Fragment{}, Needs{}, false, nil

	case tagString:
		return p.stepVariableLength(StringFrame)

	case tagByteArrayNoLength:
		b, ok := p.cur.Consume(4)
		if !ok {
			return Fragment{}, Needs{N: 4}, false, nil
		}
		length := int32(binary.BigEndian.Uint32(b))
		if length < 0 {
			return Fragment{}, Needs{}, false, &InvalidLen{Len: length}
		}
		p.tag.kind = tagByteArray
		p.tag.remaining = length
		return Fragment{}, Needs{}, false, nil

	case tagByteArray:
		return p.stepVariableLength(ByteArrayFrame)

	case tagListNoTag:
		b, ok := p.cur.Consume(1)
		if !ok {
			return Fragment{}, Needs{N: 1}, false, nil
		}
		elem, ok := wire.DecodeTag(b[0])
		if !ok {
			return Fragment{}, Needs{}, false, &InvalidTag{Byte: b[0]}
		}
		p.tag.kind = tagListNoLength
		p.tag.elem = elem
		return Fragment{}, Needs{}, false, nil

	case tagListNoLength:
		return p.stepListNoLength()

	case tagList:
		return p.stepList()

	default:
		panic("nbt: unreachable tag state")
	}
}

func (p *Parser) stepTagEmpty() (Fragment, Needs, bool, error) {
	b, ok := p.cur.Consume(1)
	if !ok {
		return Fragment{}, Needs{N: 1}, false, nil
	}
	tg, ok := wire.DecodeTag(b[0])
	if !ok {
		return Fragment{}, Needs{}, false, &InvalidTag{Byte: b[0]}
	}

	switch tg {
	case wire.TagEnd:
		p.popOuter()
		return Fragment{Kind: End}, Needs{}, true, nil

	case wire.TagCompound:
		if err := p.pushFrame(frame{kind: frameCompound}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		p.tag = tagState{kind: tagEmpty}
		p.name = nameState{kind: nameNoLen}
		return Fragment{Kind: CompoundTag}, Needs{}, true, nil

	default:
		p.setWaitingState(tg)
		p.name = nameState{kind: nameNoLen}
		return Fragment{}, Needs{}, false, nil
	}
}

// setWaitingState assigns TagState to the payload-waiting state matching
// tg (spec.md §4.4.4's "for all scalar/array/string/list tags" clause).
func (p *Parser) setWaitingState(tg wire.Tag) {
	switch tg {
	case wire.TagByte:
		p.tag = tagState{kind: tagByte}
	case wire.TagShort:
		p.tag = tagState{kind: tagShort}
	case wire.TagInt:
		p.tag = tagState{kind: tagInt}
	case wire.TagLong:
		p.tag = tagState{kind: tagLong}
	case wire.TagFloat:
		p.tag = tagState{kind: tagFloat}
	case wire.TagDouble:
		p.tag = tagState{kind: tagDouble}
	case wire.TagByteArray:
		p.tag = tagState{kind: tagByteArrayNoLength}
	case wire.TagString:
		p.tag = tagState{kind: tagStringNoLength}
	case wire.TagList:
		p.tag = tagState{kind: tagListNoTag}
	case wire.TagIntArray:
		p.tag = tagState{kind: tagListNoLength, elem: wire.TagInt}
	case wire.TagLongArray:
		p.tag = tagState{kind: tagListNoLength, elem: wire.TagLong}
	default:
		panic("nbt: setWaitingState called with unhandled tag")
	}
}

func (p *Parser) stepScalar() (Fragment, Needs, bool, error) {
	var tg wire.Tag
	switch p.tag.kind {
	case tagByte:
		tg = wire.TagByte
	case tagShort:
		tg = wire.TagShort
	case tagInt:
		tg = wire.TagInt
	case tagLong:
		tg = wire.TagLong
	case tagFloat:
		tg = wire.TagFloat
	case tagDouble:
		tg = wire.TagDouble
	}

	width := scalarWidth(tg)
	b, ok := p.cur.Consume(width)
	if !ok {
		return Fragment{}, Needs{N: width}, false, nil
	}
	frag := scalarFragment(tg, b)
	p.popOuter()
	return frag, Needs{}, true, nil
}

// stepVariableLength handles the String/ByteArray remaining-length states,
// which share an identical chunking and terminal-sentinel shape.
func (p *Parser) stepVariableLength(fragKind Kind) (Fragment, Needs, bool, error) {
	if p.tag.remaining == 0 {
		p.popOuter()
		return Fragment{Kind: fragKind}, Needs{}, true, nil
	}
	avail := p.cur.Len()
	if avail == 0 {
		return Fragment{}, Needs{N: 1}, false, nil
	}
	n := avail
	if int(p.tag.remaining) < n {
		n = int(p.tag.remaining)
	}
	b, _ := p.cur.Consume(n)
	p.tag.remaining -= int32(n)
	return Fragment{Kind: fragKind, Bytes: b}, Needs{}, true, nil
}

// stepListNoLength reads the 32-bit outer list length, for every element
// tag including ByteArray (corrected relative to the reference's
// ByteArray collapse bug — see DESIGN.md) and End (needed to tell an
// empty list, length 0, from a malformed one, length >0 — see DESIGN.md's
// note on spec.md §9 open question 2).
func (p *Parser) stepListNoLength() (Fragment, Needs, bool, error) {
	elem := p.tag.elem

	b, ok := p.cur.Consume(4)
	if !ok {
		return Fragment{}, Needs{N: 4}, false, nil
	}
	length := int32(binary.BigEndian.Uint32(b))
	if length < 0 {
		return Fragment{}, Needs{}, false, &InvalidLen{Len: length}
	}

	if elem == wire.TagEnd {
		if length > 0 {
			return Fragment{}, Needs{}, false, &InvalidLen{Len: length}
		}
		p.popOuter()
		return Fragment{Kind: End}, Needs{}, true, nil
	}

	p.tag = tagState{kind: tagList, elem: elem, remaining: length}
	return Fragment{}, Needs{}, false, nil
}

func (p *Parser) stepList() (Fragment, Needs, bool, error) {
	elem := p.tag.elem
	remaining := p.tag.remaining

	if remaining == 0 {
		p.popOuter()
		return Fragment{}, Needs{}, false, nil
	}

	switch elem {
	case wire.TagCompound:
		p.tag.remaining--
		if err := p.pushFrame(frame{kind: frameList, elem: elem, remaining: p.tag.remaining}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		if err := p.pushFrame(frame{kind: frameCompound}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		p.tag = tagState{kind: tagEmpty}
		p.name = nameState{kind: nameComplete}
		return Fragment{}, Needs{}, false, nil

	case wire.TagList:
		p.tag.remaining--
		if err := p.pushFrame(frame{kind: frameList, elem: elem, remaining: p.tag.remaining}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		p.tag = tagState{kind: tagListNoTag}
		p.name = nameState{kind: nameComplete}
		return Fragment{}, Needs{}, false, nil

	case wire.TagIntArray, wire.TagLongArray:
		p.tag.remaining--
		if err := p.pushFrame(frame{kind: frameList, elem: elem, remaining: p.tag.remaining}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		inner := wire.TagInt
		if elem == wire.TagLongArray {
			inner = wire.TagLong
		}
		p.tag = tagState{kind: tagListNoLength, elem: inner}
		p.name = nameState{kind: nameComplete}
		return Fragment{}, Needs{}, false, nil

	case wire.TagString:
		p.tag.remaining--
		if err := p.pushFrame(frame{kind: frameList, elem: elem, remaining: p.tag.remaining}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		p.tag = tagState{kind: tagStringNoLength}
		p.name = nameState{kind: nameComplete}
		return Fragment{}, Needs{}, false, nil

	case wire.TagByteArray:
		p.tag.remaining--
		if err := p.pushFrame(frame{kind: frameList, elem: elem, remaining: p.tag.remaining}); err != nil {
			return Fragment{}, Needs{}, false, err
		}
		p.tag = tagState{kind: tagByteArrayNoLength}
		p.name = nameState{kind: nameComplete}
		return Fragment{}, Needs{}, false, nil

	case wire.TagByte:
		// List(Byte, n>0): bulk-emitted analogously to ByteArray, reusing
		// ByteArrayFrame since no dedicated list-of-byte fragment kind
		// exists in the closed set.
		avail := p.cur.Len()
		if avail == 0 {
			return Fragment{}, Needs{N: 1}, false, nil
		}
		n := avail
		if int(remaining) < n {
			n = int(remaining)
		}
		b, _ := p.cur.Consume(n)
		p.tag.remaining -= int32(n)
		return Fragment{Kind: ByteArrayFrame, Bytes: b}, Needs{}, true, nil

	case wire.TagEnd:
		// List(End, n>0) is structurally impossible: an End tag cannot
		// repeat as a list element type.
		return Fragment{}, Needs{}, false, &InvalidLen{Len: remaining}

	case wire.TagShort, wire.TagInt, wire.TagLong, wire.TagFloat, wire.TagDouble:
		return p.stepNumericList(elem, remaining)

	default:
		panic("nbt: unreachable list element tag")
	}
}

func (p *Parser) stepNumericList(elem wire.Tag, remaining int32) (Fragment, Needs, bool, error) {
	width := scalarWidth(elem)
	avail := p.cur.Len()
	maxElems := avail / width
	if maxElems == 0 {
		return Fragment{}, Needs{N: width}, false, nil
	}
	n := int(remaining)
	if maxElems < n {
		n = maxElems
	}
	b, _ := p.cur.Consume(n * width)
	p.tag.remaining -= int32(n)

	frag := Fragment{}
	switch elem {
	case wire.TagShort:
		v, _ := wire.NewView[int16](b)
		frag = Fragment{Kind: ShortListFrame, ShortList: v}
	case wire.TagInt:
		v, _ := wire.NewView[int32](b)
		frag = Fragment{Kind: IntListFrame, IntList: v}
	case wire.TagLong:
		v, _ := wire.NewView[int64](b)
		frag = Fragment{Kind: LongListFrame, LongList: v}
	case wire.TagFloat:
		v, _ := wire.NewView[float32](b)
		frag = Fragment{Kind: FloatListFrame, FloatList: v}
	case wire.TagDouble:
		v, _ := wire.NewView[float64](b)
		frag = Fragment{Kind: DoubleListFrame, DoubleList: v}
	}
	return frag, Needs{}, true, nil
}
