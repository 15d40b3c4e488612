package nbt

import "github.com/streamnbt/nbt/internal/wire"

// Kind identifies which variant of the closed Fragment set a Fragment value
// holds. Only the fields relevant to Kind are populated; the rest are zero.
type Kind int

const (
	// CompoundTag marks the opening of a compound. A name fragment
	// sequence for the compound's own name follows.
	CompoundTag Kind = iota
	// End marks the close of a compound, the close of an enclosing named
	// entry, or an empty List whose element tag is End. A list of any
	// other element type emits no End when it is exhausted.
	End

	ByteValue
	ShortValue
	IntValue
	LongValue
	FloatValue
	DoubleValue

	// NameFrame carries a slice of a name. A name is one-or-more
	// non-empty NameFrames followed by an empty NameFrame sentinel.
	NameFrame
	// StringFrame follows the same non-empty*, then-empty-sentinel
	// pattern as NameFrame.
	StringFrame
	// ByteArrayFrame follows the same pattern as StringFrame.
	ByteArrayFrame

	// ShortListFrame, IntListFrame, LongListFrame, FloatListFrame, and
	// DoubleListFrame carry a typed big-endian view over some prefix of a
	// homogeneous numeric list or array payload. No empty sentinel: the
	// element count was announced by the preceding declaration.
	ShortListFrame
	IntListFrame
	LongListFrame
	FloatListFrame
	DoubleListFrame
)

func (k Kind) String() string {
	switch k {
	case CompoundTag:
		return "CompoundTag"
	case End:
		return "End"
	case ByteValue:
		return "Byte"
	case ShortValue:
		return "Short"
	case IntValue:
		return "Int"
	case LongValue:
		return "Long"
	case FloatValue:
		return "Float"
	case DoubleValue:
		return "Double"
	case NameFrame:
		return "NameFrame"
	case StringFrame:
		return "StringFrame"
	case ByteArrayFrame:
		return "ByteArrayFrame"
	case ShortListFrame:
		return "ShortListFrame"
	case IntListFrame:
		return "IntListFrame"
	case LongListFrame:
		return "LongListFrame"
	case FloatListFrame:
		return "FloatListFrame"
	case DoubleListFrame:
		return "DoubleListFrame"
	default:
		return "Kind(?)"
	}
}

// Fragment is one atomic unit of parser output. Byte slices and views
// borrow directly from the buffer most recently passed to Attach; they
// remain valid only until the next Attach call.
type Fragment struct {
	Kind Kind

	Byte   int8
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64

	// Bytes holds the borrowed payload for NameFrame, StringFrame, and
	// ByteArrayFrame.
	Bytes []byte

	// ShortList, IntList, LongList, FloatList, and DoubleList hold the
	// borrowed typed view for the correspondingly-named *ListFrame kinds.
	ShortList  wire.View[int16]
	IntList    wire.View[int32]
	LongList   wire.View[int64]
	FloatList  wire.View[float32]
	DoubleList wire.View[float64]
}
