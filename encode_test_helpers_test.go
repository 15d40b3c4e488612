package nbt

import "encoding/binary"

// The helpers below build well-formed NBT byte streams for tests. They
// exist only to construct fixtures; the parser itself never encodes.

type nbtBuilder struct {
	buf []byte
}

func (b *nbtBuilder) bytes() []byte { return b.buf }

func (b *nbtBuilder) tag(t byte) *nbtBuilder {
	b.buf = append(b.buf, t)
	return b
}

func (b *nbtBuilder) name(s string) *nbtBuilder {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	b.buf = append(b.buf, lenBuf[:]...)
	b.buf = append(b.buf, s...)
	return b
}

func (b *nbtBuilder) i8(v int8) *nbtBuilder {
	b.buf = append(b.buf, byte(v))
	return b
}

func (b *nbtBuilder) i16(v int16) *nbtBuilder {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(v))
	b.buf = append(b.buf, buf[:]...)
	return b
}

func (b *nbtBuilder) i32(v int32) *nbtBuilder {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	b.buf = append(b.buf, buf[:]...)
	return b
}

func (b *nbtBuilder) i64(v int64) *nbtBuilder {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	b.buf = append(b.buf, buf[:]...)
	return b
}

func (b *nbtBuilder) raw(p []byte) *nbtBuilder {
	b.buf = append(b.buf, p...)
	return b
}

// byteEntry and the *Entry helpers below each append a single named entry
// (tag + name + payload).
func (b *nbtBuilder) byteEntry(name string, v int8) *nbtBuilder {
	return b.tag(1).name(name).i8(v)
}

func (b *nbtBuilder) shortEntry(name string, v int16) *nbtBuilder {
	return b.tag(2).name(name).i16(v)
}

func (b *nbtBuilder) intEntry(name string, v int32) *nbtBuilder {
	return b.tag(3).name(name).i32(v)
}

func (b *nbtBuilder) longEntry(name string, v int64) *nbtBuilder {
	return b.tag(4).name(name).i64(v)
}

func (b *nbtBuilder) floatEntry(name string, v int32) *nbtBuilder {
	return b.tag(5).name(name).i32(v)
}

func (b *nbtBuilder) doubleEntry(name string, v int64) *nbtBuilder {
	return b.tag(6).name(name).i64(v)
}

func (b *nbtBuilder) byteArrayEntry(name string, payload []byte) *nbtBuilder {
	return b.tag(7).name(name).i32(int32(len(payload))).raw(payload)
}

func (b *nbtBuilder) stringEntry(name string, s string) *nbtBuilder {
	return b.tag(8).name(name).str(s)
}

func (b *nbtBuilder) str(s string) *nbtBuilder {
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(s)))
	b.buf = append(b.buf, lenBuf[:]...)
	b.buf = append(b.buf, s...)
	return b
}

func (b *nbtBuilder) intListEntry(name string, vals []int32) *nbtBuilder {
	b.tag(9).name(name).tag(3).i32(int32(len(vals)))
	for _, v := range vals {
		b.i32(v)
	}
	return b
}

func (b *nbtBuilder) intArrayEntry(name string, vals []int32) *nbtBuilder {
	b.tag(11).name(name).i32(int32(len(vals)))
	for _, v := range vals {
		b.i32(v)
	}
	return b
}

func (b *nbtBuilder) end() *nbtBuilder {
	return b.tag(0)
}

// drain runs a freshly attached parser over data in chunks of chunkSize
// bytes (0 meaning "all at once"), collecting every fragment until Needs
// is returned with no further bytes available.
func drain(t interface{ Fatalf(string, ...any) }, data []byte, chunkSize int) []Fragment {
	if chunkSize <= 0 {
		chunkSize = len(data)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}
	p := NewParser()
	var frags []Fragment
	var window []byte
	pos := 0
	for {
		p.Attach(window)
		frag, needs, err := p.NextFragment()
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		if needs.N > 0 {
			window = window[p.Consumed():]
			if pos >= len(data) {
				return frags
			}
			end := pos + chunkSize
			if end > len(data) {
				end = len(data)
			}
			window = append(window, data[pos:end]...)
			pos = end
			continue
		}
		frags = append(frags, frag)
		window = window[p.Consumed():]
	}
}
