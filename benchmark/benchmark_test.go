// Package benchmark compares parser throughput across delivery shapes:
// whole-buffer vs. byte-at-a-time vs. fixed-size chunks, and streaming
// fragment iteration vs. full tree reconstruction.
//
// Run with:
//
//	go test -bench=. -benchmem -count=3
package benchmark

import (
	"encoding/binary"
	"testing"

	"github.com/streamnbt/nbt"
	"github.com/streamnbt/nbt/tree"
)

type docBuilder struct {
	buf []byte
}

func (b *docBuilder) tag(t byte) *docBuilder {
	b.buf = append(b.buf, t)
	return b
}

func (b *docBuilder) name(s string) *docBuilder {
	b.u16(uint16(len(s)))
	b.buf = append(b.buf, s...)
	return b
}

func (b *docBuilder) u16(v uint16) *docBuilder {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *docBuilder) i32(v int32) *docBuilder {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
	return b
}

func (b *docBuilder) i8(v int8) *docBuilder {
	b.buf = append(b.buf, byte(v))
	return b
}

func (b *docBuilder) raw(p []byte) *docBuilder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *docBuilder) end() *docBuilder {
	b.buf = append(b.buf, 0)
	return b
}

func (b *docBuilder) byteEntry(name string, v int8) *docBuilder {
	return b.tag(1).name(name).i8(v)
}

func (b *docBuilder) intEntry(name string, v int32) *docBuilder {
	return b.tag(3).name(name).i32(v)
}

func (b *docBuilder) byteArrayEntry(name string, p []byte) *docBuilder {
	b.tag(7).name(name).i32(int32(len(p)))
	return b.raw(p)
}

func (b *docBuilder) intListEntry(name string, vals []int32) *docBuilder {
	b.tag(9).name(name).tag(3).i32(int32(len(vals)))
	for _, v := range vals {
		b.i32(v)
	}
	return b
}

func (b *docBuilder) bytes() []byte {
	return b.buf
}

// flatDocument builds a wide, shallow compound: n scalar entries plus one
// sizable byte array and int list.
func flatDocument(n int) []byte {
	var b docBuilder
	b.tag(10).name("root")
	for i := 0; i < n; i++ {
		b.intEntry("field", int32(i))
	}
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i)
	}
	b.byteArrayEntry("blob", payload)
	vals := make([]int32, 2048)
	for i := range vals {
		vals[i] = int32(i * 3)
	}
	b.intListEntry("values", vals)
	b.end().end()
	return b.bytes()
}

// deepDocument builds n levels of nested compounds, with one scalar entry
// in the innermost level, stressing the nesting-frame stack.
func deepDocument(n int) []byte {
	var b docBuilder
	for i := 0; i < n; i++ {
		b.tag(10).name("level")
	}
	b.byteEntry("leaf", 1)
	for i := 0; i < n; i++ {
		b.end()
	}
	b.end()
	return b.bytes()
}

func runFragmentsOverChunks(b *testing.B, data []byte, chunkSize int) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := nbt.NewParser()
		var window []byte
		pos := 0
		for {
			p.Attach(window)
			_, needs, err := p.NextFragment()
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			window = window[p.Consumed():]
			if needs.N > 0 {
				if pos >= len(data) {
					break
				}
				end := pos + chunkSize
				if end > len(data) {
					end = len(data)
				}
				window = append(window, data[pos:end]...)
				pos = end
			}
		}
		p.Release()
	}
}

func BenchmarkFlat_WholeBuffer(b *testing.B) {
	data := flatDocument(200)
	runFragmentsOverChunks(b, data, len(data))
}

func BenchmarkFlat_Chunk4096(b *testing.B) {
	data := flatDocument(200)
	runFragmentsOverChunks(b, data, 4096)
}

func BenchmarkFlat_Chunk64(b *testing.B) {
	data := flatDocument(200)
	runFragmentsOverChunks(b, data, 64)
}

func BenchmarkFlat_Chunk1(b *testing.B) {
	data := flatDocument(200)
	runFragmentsOverChunks(b, data, 1)
}

func BenchmarkDeep_WholeBuffer(b *testing.B) {
	data := deepDocument(200)
	runFragmentsOverChunks(b, data, len(data))
}

func BenchmarkDeep_Chunk1(b *testing.B) {
	data := deepDocument(200)
	runFragmentsOverChunks(b, data, 1)
}

// BenchmarkTreeBuild measures the cost of full reconstruction against
// the streaming fragment walk above, using the same document.
func BenchmarkTreeBuild(b *testing.B) {
	data := flatDocument(200)
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tree.Build(data); err != nil {
			b.Fatalf("Build: %v", err)
		}
	}
}
