package nbt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMonotonicConsumption checks spec.md §8.1's first universal
// invariant: within one attached buffer, Consumed() never decreases
// across calls, and never exceeds the buffer length.
func TestMonotonicConsumption(t *testing.T) {
	var b nbtBuilder
	b.end().byteEntry("A", 1).intEntry("B", 2).end()
	data := b.bytes()

	p := NewParser()
	p.Attach(data)
	last := 0
	for {
		_, needs, err := p.NextFragment()
		require.NoError(t, err)
		got := p.Consumed()
		require.GreaterOrEqual(t, got, last, "consumed must be non-decreasing")
		require.LessOrEqual(t, got, len(data), "consumed must not exceed buffer length")
		last = got
		if needs.N > 0 {
			break
		}
	}
}

// TestChunkSizeIndependence checks spec.md §8.1's second universal
// invariant: feeding the same input at different chunk granularities
// yields the same fragment kinds and, for variable-length payloads, the
// same concatenated bytes.
func TestChunkSizeIndependence(t *testing.T) {
	vals := make([]int32, 64)
	for i := range vals {
		vals[i] = int32(i * 7)
	}
	var b nbtBuilder
	b.byteArrayEntry("arr", bytes32(vals)).
		stringEntry("s", "the quick brown fox jumps over the lazy dog, repeated a few times for good measure").
		intListEntry("list", vals)
	data := b.bytes()

	chunkSizes := []int{1, 3, 7, 16, 64, 4096}
	var reference []Kind
	var referenceBytes [][]byte
	var referenceInts []int32

	for _, cs := range chunkSizes {
		frags := drain(t, data, cs)
		kinds := collapseKinds(frags)
		payload := collapsePayload(frags)
		ints := collectIntListElements(frags)

		if reference == nil {
			reference = kinds
			referenceBytes = payload
			referenceInts = ints
			continue
		}
		require.Equal(t, reference, kinds, "chunk size %d produced a different collapsed kind sequence", cs)
		require.Equal(t, referenceBytes, payload, "chunk size %d produced different reassembled payload bytes", cs)
		require.Equal(t, referenceInts, ints, "chunk size %d produced a different decoded int-list sequence", cs)
	}
}

func collectIntListElements(frags []Fragment) []int32 {
	var out []int32
	for _, f := range frags {
		if f.Kind != IntListFrame {
			continue
		}
		it := f.IntList.Iter()
		for {
			v, ok := it.Next()
			if !ok {
				break
			}
			out = append(out, v)
		}
	}
	return out
}

// collapseKinds reduces adjacent variable-length frames of the same kind
// into one entry, matching spec.md §8.1's "after collapsing adjacent
// variable-length frames of the same kind" qualifier.
func collapseKinds(frags []Fragment) []Kind {
	var out []Kind
	for i, f := range frags {
		if i > 0 && isVariableLength(f.Kind) && out[len(out)-1] == f.Kind {
			continue
		}
		out = append(out, f.Kind)
	}
	return out
}

func isVariableLength(k Kind) bool {
	switch k {
	case NameFrame, StringFrame, ByteArrayFrame,
		ShortListFrame, IntListFrame, LongListFrame, FloatListFrame, DoubleListFrame:
		return true
	default:
		return false
	}
}

// isBytePayload is the subset of isVariableLength kinds that carry a raw
// byte payload (as opposed to a typed numeric view) and terminate with an
// empty sentinel.
func isBytePayload(k Kind) bool {
	switch k {
	case NameFrame, StringFrame, ByteArrayFrame:
		return true
	default:
		return false
	}
}

// collapsePayload concatenates every run of adjacent same-kind byte-payload
// frames (see isBytePayload) into one []byte, to check round-trip equality
// regardless of chunking.
func collapsePayload(frags []Fragment) [][]byte {
	var out [][]byte
	var cur []byte
	var curKind Kind
	inRun := false
	for _, f := range frags {
		if !isBytePayload(f.Kind) {
			if inRun {
				out = append(out, cur)
				inRun = false
			}
			continue
		}
		if inRun && f.Kind == curKind {
			cur = append(cur, f.Bytes...)
			continue
		}
		if inRun {
			out = append(out, cur)
		}
		inRun = true
		curKind = f.Kind
		cur = append([]byte{}, f.Bytes...)
	}
	if inRun {
		out = append(out, cur)
	}
	return out
}

func bytes32(vals []int32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return out
}
