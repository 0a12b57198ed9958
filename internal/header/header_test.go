package header

import (
	"testing"

	"github.com/csvquery/colcsv/internal/scanner"
)

type recordingSink struct {
	cells [][]byte
}

func (r *recordingSink) EmitHeader(cell []byte) error {
	// copy, since scanHeaderCell reuses no buffer but callers shouldn't
	// have to assume the slice outlives the call
	cp := append([]byte(nil), cell...)
	r.cells = append(r.cells, cp)
	return nil
}

func (r *recordingSink) strings() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = string(c)
	}
	return out
}

func TestParse_SimpleHeaderRow(t *testing.T) {
	data := "id,name,amount\n1,Alice,10\n"
	sink := &recordingSink{}
	next, err := Parse([]byte(data), 0, scanner.DefaultOptions(), sink)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"id", "name", "amount"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
	if data[next:] != "1,Alice,10\n" {
		t.Fatalf("next = %d, remaining = %q", next, data[next:])
	}
}

func TestParse_QuotedHeaderCellWithEscapedQuote(t *testing.T) {
	data := "\"a\"\"b\",plain\ndata\n"
	sink := &recordingSink{}
	next, err := Parse([]byte(data), 0, scanner.DefaultOptions(), sink)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`a"b`, "plain"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
	if data[next:] != "data\n" {
		t.Fatalf("remaining = %q", data[next:])
	}
}

func TestParse_QuotedHeaderCellWithEmbeddedSeparator(t *testing.T) {
	data := "\"a,b\",c\n"
	sink := &recordingSink{}
	_, err := Parse([]byte(data), 0, scanner.DefaultOptions(), sink)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a,b", "c"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
}

func TestParse_NoTrailingNewlineHeaderOnly(t *testing.T) {
	data := "x,y"
	sink := &recordingSink{}
	next, err := Parse([]byte(data), 0, scanner.DefaultOptions(), sink)
	if err != nil {
		t.Fatal(err)
	}
	if next != len(data) {
		t.Fatalf("next = %d, want %d", next, len(data))
	}
	want := []string{"x", "y"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
}

func TestParse_CRLFHeaderStripsCRFromLastCell(t *testing.T) {
	data := "a,b\r\n1,2\r\n"
	sink := &recordingSink{}
	next, err := Parse([]byte(data), 0, scanner.DefaultOptions(), sink)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v (no trailing \\r)", got, want)
	}
	if data[next:] != "1,2\r\n" {
		t.Fatalf("remaining = %q", data[next:])
	}
}

func TestParse_ExcelQuotesDisabledTreatsQuoteLiterally(t *testing.T) {
	data := "\"x\",y\nrest\n"
	sink := &recordingSink{}
	_, err := Parse([]byte(data), 0, scanner.Options{Separator: ',', ExcelQuotes: false}, sink)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`"x"`, "y"}
	if got := sink.strings(); !equalStrings(got, want) {
		t.Fatalf("cells = %v, want %v", got, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
