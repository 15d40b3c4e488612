// Package nbt provides an incremental, pull-based parser for the Named
// Binary Tag (NBT) format: a compact, tagged, big-endian binary tree
// format originally used by a popular voxel game to persist world state.
//
// The parser accepts input in arbitrary-sized chunks, never buffers
// unbounded amounts of input internally, and borrows directly from the
// caller-supplied buffer wherever possible — strings, byte arrays, and
// homogeneous numeric list payloads are handed back as zero-copy views,
// never duplicated onto the heap.
//
// The package does not do chunked input sourcing, decompression (NBT is
// commonly wrapped in gzip or zlib; unwrap before feeding this parser),
// tree reconstruction, or schema validation. See the tree subpackage for
// an AST-assembling consumer built on top of the fragment stream, and
// cmd/nbtdump for a complete driver.
//
// Basic usage:
//
//	p := nbt.NewParser()
//	window := []byte(nil)
//	for {
//		p.Attach(window)
//		frag, needs, err := p.NextFragment()
//		if err != nil {
//			// malformed input; discard the parser
//		}
//		if needs.N > 0 {
//			window = window[p.Consumed():]
//			// append at least needs.N more bytes from the source, or
//			// stop if the source is at EOF
//			continue
//		}
//		// handle frag
//		window = window[p.Consumed():]
//	}
package nbt
