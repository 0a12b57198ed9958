// colcsv-cat mmaps a CSV file and drives colcsv.Parse over the whole
// thing, printing each column's name, reconciled type and width. It
// exists as a standing smoke target: feed it an arbitrary file and it
// exercises the full pipeline end to end.
//
// Grounded on original_source/afl/csvread.c, walshb/camog's AFL fuzz
// harness: same mmap-a-file-and-parse-it shape, minus the fuzzing
// driver — add_column there just prints and mallocs; AllocateColumn
// here prints and returns a real destination buffer since Go doesn't
// need a no-op allocator to stay memory-safe.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/csvquery/colcsv"
	"github.com/csvquery/colcsv/internal/iomap"
	"github.com/csvquery/colcsv/internal/typecache"
)

func main() {
	threads := flag.Int("threads", 2, "worker count")
	headers := flag.Bool("headers", true, "treat the first record as a header row")
	sep := flag.String("sep", ",", "cell separator")
	useTypeCache := flag.Bool("typecache", false, "remember each column's reconciled type across runs against this file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: colcsv-cat [flags] <file>")
		os.Exit(1)
	}
	path := flag.Arg(0)

	f, err := iomap.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-cat:", err)
		os.Exit(1)
	}
	defer f.Close()

	in := colcsv.DefaultInput()
	in.Data = f.Bytes()
	in.Threads = *threads
	in.Headers = *headers
	if len(*sep) == 1 {
		in.Separator = (*sep)[0]
	}

	sink := &printingSink{}
	if *useTypeCache {
		cache, err := typecache.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "colcsv-cat: typecache:", err)
			os.Exit(1)
		}
		sink.cache = cache
	}

	if err := colcsv.Parse(in, sink); err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-cat: parse:", err)
		os.Exit(1)
	}

	if sink.cache != nil {
		if err := sink.cache.Save(); err != nil {
			fmt.Fprintln(os.Stderr, "colcsv-cat: typecache save:", err)
			os.Exit(1)
		}
	}
}

type printingSink struct {
	headers []string
	col     int
	cache   *typecache.Cache
}

func (s *printingSink) EmitHeader(cell []byte) error {
	s.headers = append(s.headers, string(cell))
	return nil
}

func (s *printingSink) AllocateColumn(col int, typ colcsv.ColumnType, nrows, width int) ([]byte, error) {
	name := fmt.Sprintf("col%d", col)
	if col < len(s.headers) {
		name = s.headers[col]
	}
	fmt.Printf("%-20s %-8s width=%d rows=%d\n", name, typ, width, nrows)
	return make([]byte, nrows*typ.ElemSize(width)), nil
}

// NarrowType makes printingSink a colcsv.TypeNarrower only in effect when
// -typecache is set; with no cache loaded it's the identity, equivalent to
// colcsv.Parse seeing no TypeNarrower at all.
func (s *printingSink) NarrowType(col int, inferred colcsv.ColumnType) colcsv.ColumnType {
	if s.cache == nil {
		return inferred
	}
	return s.cache.NarrowType(col, inferred)
}
