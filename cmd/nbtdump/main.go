// Command nbtdump streams fragments (or a reconstructed tree) out of an
// NBT byte stream from a file or stdin.
//
// Usage:
//
//	nbtdump frags [options] <input>   Dump the raw fragment stream
//	nbtdump tree [options] <input>    Reconstruct and print a value tree
//	nbtdump batch <config.yaml>       Run frags/tree over a batch of files
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/streamnbt/nbt"
	"github.com/streamnbt/nbt/tree"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "frags":
		err = runFrags(os.Args[2:])
	case "tree":
		err = runTree(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "nbtdump: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "nbtdump: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  nbtdump frags [options] <input>   Dump the raw fragment stream
  nbtdump tree [options] <input>    Reconstruct and print a value tree
  nbtdump batch <config.yaml>       Run frags/tree over a batch of files

Use "-" as input to read from stdin.

Run "nbtdump <command> -h" for command-specific options.
`)
}

// openInput returns an io.ReadCloser for the given path. If path is "-",
// stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- frags ---

func runFrags(args []string) error {
	fs := flag.NewFlagSet("frags", flag.ContinueOnError)
	chunkSize := fs.Int("chunk", 0, "feed the parser in chunks of this many bytes (0=whole buffer at once)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("frags: missing input file\nUsage: nbtdump frags [options] <input>")
	}

	in, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("frags: %w", err)
	}

	return dumpFragments(os.Stdout, data, *chunkSize)
}

func dumpFragments(w io.Writer, data []byte, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = len(data)
		if chunkSize == 0 {
			chunkSize = 1
		}
	}

	p := nbt.NewParser()
	defer p.Release()

	var window []byte
	pos := 0
	for {
		p.Attach(window)
		frag, needs, err := p.NextFragment()
		if err != nil {
			return fmt.Errorf("frags: %w", err)
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
			continue
		}

		printFragment(w, frag)
	}
	return nil
}

func printFragment(w io.Writer, frag nbt.Fragment) {
	switch frag.Kind {
	case nbt.ByteValue:
		fmt.Fprintf(w, "%s %d\n", frag.Kind, frag.Byte)
	case nbt.ShortValue:
		fmt.Fprintf(w, "%s %d\n", frag.Kind, frag.Short)
	case nbt.IntValue:
		fmt.Fprintf(w, "%s %d\n", frag.Kind, frag.Int)
	case nbt.LongValue:
		fmt.Fprintf(w, "%s %d\n", frag.Kind, frag.Long)
	case nbt.FloatValue:
		fmt.Fprintf(w, "%s %g\n", frag.Kind, frag.Float)
	case nbt.DoubleValue:
		fmt.Fprintf(w, "%s %g\n", frag.Kind, frag.Double)
	case nbt.NameFrame, nbt.StringFrame:
		if len(frag.Bytes) > 0 {
			fmt.Fprintf(w, "%s %q\n", frag.Kind, frag.Bytes)
		}
	case nbt.ByteArrayFrame:
		fmt.Fprintf(w, "%s %d bytes\n", frag.Kind, len(frag.Bytes))
	case nbt.IntListFrame:
		fmt.Fprintf(w, "%s %d elements\n", frag.Kind, frag.IntList.Len())
	case nbt.LongListFrame:
		fmt.Fprintf(w, "%s %d elements\n", frag.Kind, frag.LongList.Len())
	case nbt.ShortListFrame:
		fmt.Fprintf(w, "%s %d elements\n", frag.Kind, frag.ShortList.Len())
	case nbt.FloatListFrame:
		fmt.Fprintf(w, "%s %d elements\n", frag.Kind, frag.FloatList.Len())
	case nbt.DoubleListFrame:
		fmt.Fprintf(w, "%s %d elements\n", frag.Kind, frag.DoubleList.Len())
	default:
		fmt.Fprintf(w, "%s\n", frag.Kind)
	}
}

// --- tree ---

func runTree(args []string) error {
	fs := flag.NewFlagSet("tree", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("tree: missing input file\nUsage: nbtdump tree <input>")
	}

	in, err := openInput(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}

	root, err := tree.Build(data)
	if err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	printNode(os.Stdout, root, 0)
	return nil
}

func printNode(w io.Writer, n *tree.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	label := n.Name
	if label == "" {
		label = "<root>"
	}
	switch n.Kind {
	case tree.KindCompound:
		fmt.Fprintf(w, "%s%s (compound)\n", indent, label)
		for _, c := range n.Children {
			printNode(w, c, depth+1)
		}
	case tree.KindByte:
		fmt.Fprintf(w, "%s%s = %d (byte)\n", indent, label, n.Byte)
	case tree.KindShort:
		fmt.Fprintf(w, "%s%s = %d (short)\n", indent, label, n.Short)
	case tree.KindInt:
		fmt.Fprintf(w, "%s%s = %d (int)\n", indent, label, n.Int)
	case tree.KindLong:
		fmt.Fprintf(w, "%s%s = %d (long)\n", indent, label, n.Long)
	case tree.KindFloat:
		fmt.Fprintf(w, "%s%s = %g (float)\n", indent, label, n.Float)
	case tree.KindDouble:
		fmt.Fprintf(w, "%s%s = %g (double)\n", indent, label, n.Double)
	case tree.KindString:
		fmt.Fprintf(w, "%s%s = %q (string)\n", indent, label, n.Bytes)
	case tree.KindByteArray:
		fmt.Fprintf(w, "%s%s = %d bytes (byte array)\n", indent, label, len(n.Bytes))
	case tree.KindIntArray:
		fmt.Fprintf(w, "%s%s = %d ints (int array)\n", indent, label, len(n.Ints))
	case tree.KindLongArray:
		fmt.Fprintf(w, "%s%s = %d longs (long array)\n", indent, label, len(n.Longs))
	case tree.KindShortList:
		fmt.Fprintf(w, "%s%s = %d shorts (short list)\n", indent, label, len(n.Shorts))
	case tree.KindFloatList:
		fmt.Fprintf(w, "%s%s = %d floats (float list)\n", indent, label, len(n.Floats))
	case tree.KindDoubleList:
		fmt.Fprintf(w, "%s%s = %d doubles (double list)\n", indent, label, len(n.Doubles))
	default:
		fmt.Fprintf(w, "%s%s (%v)\n", indent, label, n.Kind)
	}
}
