// Package tree assembles the flat fragment stream produced by nbt.Parser
// into an in-memory tree, the way mux.Demuxer assembles RIFF chunks into
// Features and FrameInfo values. Building a tree defeats the point of
// streaming for very large documents, but it's the natural shape for
// small configs, save-file fragments, and anything a caller wants to
// walk more than once.
package tree

import (
	"errors"
	"fmt"

	"github.com/streamnbt/nbt"
)

// Kind identifies the Go-level shape a Node holds.
type Kind int

const (
	KindEnd Kind = iota
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindByteArray
	KindString
	KindCompound
	KindIntArray
	KindLongArray
	KindShortList
	KindFloatList
	KindDoubleList
)

// Node is one entry in a reconstructed tree. Name is empty for the
// synthetic root and for list elements after the first (the first
// element's Node carries the list's own name, since a list gets no Node of
// its own). Exactly one of the value fields is meaningful, selected by
// Kind.
//
// List entries whose element type is Compound or List are not assembled
// into their own nested Nodes. Every other tag's payload is preceded by
// at least one fragment of its own (a name-read, a CompoundTag, a value),
// but fsm.go's stepList pushes a Compound or List list-element's frame
// and moves straight into reading that element's contents without ever
// surfacing a fragment for the element itself (see stepList's
// wire.TagCompound and wire.TagList cases) — so Build has no marker to
// distinguish "a new list element started here" from "the enclosing
// compound's own next entry started here", and the element's children
// are attached directly to whatever compound encloses the list instead
// of being grouped under their own element Node. This is a property of
// the fragment vocabulary itself, not something tree special-cases
// around. List<String> and List<ByteArray> have no such gap: each
// element still produces its own fragment run ending in the usual
// empty-payload sentinel, so Build reconstructs one Node per element
// same as it would for a bare String/ByteArray entry. Numeric lists
// (Byte/Short/Int/Long/Float/Double) have no gap either — the parser
// bulk-emits them as a run of same-kind fragments regardless of whether
// they came from a List or an Array tag — so those round-trip through
// Ints/Longs/Shorts/Floats/Doubles below same as arrays do (a Byte list
// arrives as ByteArrayFrames and becomes a KindByteArray Node in Bytes).
//
// A zero-length List of any element type other than End emits no
// fragment at all (the parser pops the list frame before ever dispatching
// on the element tag), so such an entry has nothing for Build to hook a
// Node on and is silently absent from the reconstructed tree. IntArray and
// LongArray are parsed through the same List state, so a zero-length one
// is absent too. A zero-length ByteArray is unaffected: it emits one empty
// terminal fragment and gets a Node with a nil slice.
type Node struct {
	Name     string
	Kind     Kind
	Byte     int8
	Short    int16
	Int      int32
	Long     int64
	Float    float32
	Double   float64
	Bytes    []byte
	Ints     []int32
	Longs    []int64
	Shorts   []int16
	Floats   []float32
	Doubles  []float64
	Children []*Node
}

// ErrUnsupported guards nodeFromScalar's default case. Every fragment
// Kind that Build can actually receive there is handled; it exists as a
// fail-closed response to a future Kind the builder hasn't been taught
// about yet, not a path List<Compound>/List<List> entries hit today
// (see the Node doc comment for what actually happens to those).
var ErrUnsupported = errors.New("nbt/tree: fragment kind not supported by tree builder")

// accumulator collects a run of same-kind chunked fragments (a string,
// byte array, or numeric list may arrive as many fragments across
// several NextFragment calls) into the payload for a single Node.
type accumulator struct {
	kind    nbt.Kind
	open    bool
	bytes   []byte
	ints    []int32
	longs   []int64
	shorts  []int16
	floats  []float32
	doubles []float64
}

func (a *accumulator) reset() {
	*a = accumulator{}
}

func (a *accumulator) absorb(frag nbt.Fragment) {
	a.open = true
	a.kind = frag.Kind
	switch frag.Kind {
	case nbt.StringFrame, nbt.ByteArrayFrame:
		a.bytes = append(a.bytes, frag.Bytes...)
	case nbt.IntListFrame:
		it := frag.IntList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			a.ints = append(a.ints, v)
		}
	case nbt.LongListFrame:
		it := frag.LongList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			a.longs = append(a.longs, v)
		}
	case nbt.ShortListFrame:
		it := frag.ShortList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			a.shorts = append(a.shorts, v)
		}
	case nbt.FloatListFrame:
		it := frag.FloatList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			a.floats = append(a.floats, v)
		}
	case nbt.DoubleListFrame:
		it := frag.DoubleList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			a.doubles = append(a.doubles, v)
		}
	}
}

func (a *accumulator) node() *Node {
	switch a.kind {
	case nbt.StringFrame:
		return &Node{Kind: KindString, Bytes: a.bytes}
	case nbt.ByteArrayFrame:
		return &Node{Kind: KindByteArray, Bytes: a.bytes}
	case nbt.IntListFrame:
		return &Node{Kind: KindIntArray, Ints: a.ints}
	case nbt.LongListFrame:
		return &Node{Kind: KindLongArray, Longs: a.longs}
	case nbt.ShortListFrame:
		return &Node{Kind: KindShortList, Shorts: a.shorts}
	case nbt.FloatListFrame:
		return &Node{Kind: KindFloatList, Floats: a.floats}
	case nbt.DoubleListFrame:
		return &Node{Kind: KindDoubleList, Doubles: a.doubles}
	default:
		panic("nbt/tree: node() called on an accumulator with no open run")
	}
}

// isChunkable reports whether k is one of the kinds accumulator handles.
func isChunkable(k nbt.Kind) bool {
	switch k {
	case nbt.StringFrame, nbt.ByteArrayFrame,
		nbt.ShortListFrame, nbt.IntListFrame, nbt.LongListFrame, nbt.FloatListFrame, nbt.DoubleListFrame:
		return true
	default:
		return false
	}
}

// Build drains a nbt.Parser, growing window from src as Needs demands,
// and returns a synthetic root compound *Node whose Children are the
// document's top-level entries. It is the same driver-loop
// shape as spec.md's reference pseudocode, wrapped around a stack-based
// assembler instead of a caller-supplied callback.
func Build(src []byte) (*Node, error) {
	p := nbt.NewParser()
	defer p.Release()

	root := &Node{Kind: KindCompound}
	stack := []*Node{root}
	pendingName := ""
	havePendingName := false
	nameBuf := ""
	// awaitingSelfName holds a Compound Node whose CompoundTag fragment
	// has already fired but whose own name-read hasn't completed yet.
	// fsm.go emits CompoundTag, then reads that same compound's name, so
	// the next NameFrame run belongs to it, not to the entry that comes
	// after it — a single flat pendingName can't represent both at once.
	var awaitingSelfName *Node
	var acc accumulator

	push := func(n *Node) {
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, n)
	}

	flushAcc := func() {
		if !acc.open {
			return
		}
		n := acc.node()
		if havePendingName {
			n.Name = pendingName
			pendingName, havePendingName = "", false
		}
		push(n)
		acc.reset()
	}

	var window []byte
	pos := 0

	for {
		p.Attach(window)
		frag, needs, err := p.NextFragment()
		if err != nil {
			return nil, err
		}
		window = window[p.Consumed():]

		if needs.N > 0 {
			if pos >= len(src) {
				break
			}
			end := pos + needs.N
			if end > len(src) {
				end = len(src)
			}
			window = append(window, src[pos:end]...)
			pos = end
			continue
		}

		if isChunkable(frag.Kind) {
			if acc.open && acc.kind != frag.Kind {
				flushAcc()
			}
			acc.absorb(frag)
			// StringFrame/ByteArrayFrame use an empty-payload sentinel to
			// mark completion explicitly; numeric lists have none and
			// simply stop arriving, so they flush on the next kind change
			// (handled by the branch above on the following iteration) or
			// when the document ends.
			if (frag.Kind == nbt.StringFrame || frag.Kind == nbt.ByteArrayFrame) && len(frag.Bytes) == 0 {
				flushAcc()
			}
			continue
		}

		flushAcc()

		switch frag.Kind {
		case nbt.NameFrame:
			if len(frag.Bytes) > 0 {
				nameBuf += string(frag.Bytes)
				continue
			}
			// Empty-payload fragment: the name run (possibly zero-length
			// from the start) is complete. Route it to whichever of the
			// two name sinks is currently open.
			name := nameBuf
			nameBuf = ""
			if awaitingSelfName != nil {
				awaitingSelfName.Name = name
				awaitingSelfName = nil
			} else if name != "" {
				pendingName = name
				havePendingName = true
			}
			continue
		case nbt.CompoundTag:
			n := &Node{Kind: KindCompound}
			push(n)
			stack = append(stack, n)
			awaitingSelfName = n
			continue
		case nbt.End:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		n, err := nodeFromScalar(frag)
		if err != nil {
			return nil, err
		}
		if havePendingName {
			n.Name = pendingName
			pendingName, havePendingName = "", false
		}
		push(n)
	}

	flushAcc()
	return root, nil
}

func nodeFromScalar(frag nbt.Fragment) (*Node, error) {
	switch frag.Kind {
	case nbt.ByteValue:
		return &Node{Kind: KindByte, Byte: frag.Byte}, nil
	case nbt.ShortValue:
		return &Node{Kind: KindShort, Short: frag.Short}, nil
	case nbt.IntValue:
		return &Node{Kind: KindInt, Int: frag.Int}, nil
	case nbt.LongValue:
		return &Node{Kind: KindLong, Long: frag.Long}, nil
	case nbt.FloatValue:
		return &Node{Kind: KindFloat, Float: frag.Float}, nil
	case nbt.DoubleValue:
		return &Node{Kind: KindDouble, Double: frag.Double}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, frag.Kind)
	}
}
