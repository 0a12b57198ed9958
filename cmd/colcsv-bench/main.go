// colcsv-bench generates a synthetic CSV file of a requested size and
// times a full colcsv.Parse over it, reporting throughput in MB/s.
//
// Adapted from the teacher's cmd/benchmark: the same generate-then-time
// shape, but driving colcsv.Parse directly instead of the teacher's
// indexer.Indexer, since this repo's core is the parser, not a secondary
// index builder.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/csvquery/colcsv"
	"github.com/csvquery/colcsv/internal/iomap"
)

func main() {
	sizeMB := flag.Int("size-mb", 500, "size in MB of the generated CSV")
	threads := flag.Int("threads", runtime.NumCPU(), "worker count")
	flag.Parse()

	tmpDir, err := os.MkdirTemp("", "colcsv-bench")
	if err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-bench:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmpDir)

	csvPath := filepath.Join(tmpDir, "bench.csv")
	bytesWritten, rows, err := generateCSV(csvPath, int64(*sizeMB)*1024*1024)
	if err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-bench: generate:", err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d rows (%.2f MB)\n", rows, float64(bytesWritten)/1024/1024)

	f, err := iomap.Open(csvPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-bench: open:", err)
		os.Exit(1)
	}
	defer f.Close()

	in := colcsv.DefaultInput()
	in.Data = f.Bytes()
	in.Threads = *threads
	in.Headers = true

	sink := &countingSink{}
	fmt.Println("Parsing...")
	start := time.Now()
	if err := colcsv.Parse(in, sink); err != nil {
		fmt.Fprintln(os.Stderr, "colcsv-bench: parse:", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	mbPerSec := float64(bytesWritten) / 1024 / 1024 / elapsed.Seconds()
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Columns:    %d\n", sink.ncols)
	fmt.Printf("Throughput: %.2f MB/s\n", mbPerSec)
	fmt.Printf("Time:       %v\n", elapsed)
	fmt.Println("--------------------------------------------------")
}

// countingSink just accepts every column colcsv.Parse reconciles; it
// exists to give Parse somewhere to write, not to inspect the data.
type countingSink struct {
	ncols int
}

func (s *countingSink) EmitHeader(cell []byte) error { return nil }

func (s *countingSink) AllocateColumn(col int, typ colcsv.ColumnType, nrows, width int) ([]byte, error) {
	s.ncols++
	return make([]byte, nrows*typ.ElemSize(width)), nil
}

func generateCSV(path string, limit int64) (bytesWritten int64, rows int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 64*1024)
	w.WriteString("id,code,value,description\n")

	rng := rand.New(rand.NewSource(123))
	buf := make([]byte, 0, 1024)
	for bytesWritten < limit {
		rows++
		buf = buf[:0]
		buf = fmt.Appendf(buf, "%d,US-%d,%d,\"Description for item %d with some padding to make it longer\"\n",
			rows, rng.Intn(1000), rng.Intn(10000), rows)
		n, werr := w.Write(buf)
		bytesWritten += int64(n)
		if werr != nil {
			return bytesWritten, rows, werr
		}
	}
	if err := w.Flush(); err != nil {
		return bytesWritten, rows, err
	}
	return bytesWritten, rows, nil
}
