// Package header implements header-row parsing (component C6): reading
// exactly one CSV record's worth of cells before stage 1 begins, so the
// host can be told each column's name ahead of the data proper.
//
// Ported from fastcsv.c's parse_headers, which runs single-threaded before
// any chunk is handed to a worker. Quote handling here is written as its
// own small cell scanner rather than reused from internal/scanner: the
// original keeps parse_headers entirely separate from parse_stage1 too,
// since a header cell is decoded straight to bytes and never needs the
// numeric classification or offset-buffer bookkeeping stage 1 does.
package header

import "github.com/csvquery/colcsv/internal/scanner"

// Sink receives each header cell, in column order.
type Sink interface {
	EmitHeader(cell []byte) error
}

// Parse reads one header record from data starting at start and emits each
// cell to sink. It returns the offset of the first byte of the data proper
// (one past the header's trailing newline, or len(data) if the header ran
// to the end of input with no trailing newline). An error returned by
// sink.EmitHeader is ignored and does not stop the header scan, so the
// returned error is always nil.
func Parse(data []byte, start int, opt scanner.Options, sink Sink) (int, error) {
	p := start
	for {
		cell, next, done := scanHeaderCell(data, p, opt)
		cell = scanner.StripCR(cell)
		_ = sink.EmitHeader(cell)
		if done {
			return next, nil
		}
		if data[next] == '\n' {
			return next + 1, nil
		}
		p = next + 1
	}
}

// scanHeaderCell reads one cell starting at data[start], honoring
// Excel-style "" escaping inside a leading quote and tolerating trailing
// bytes after a closing quote (the same leniency internal/scanner's
// scanCell applies). next is the index of the cell's terminating
// separator or newline; done is true if input ran out before either was
// found.
func scanHeaderCell(data []byte, start int, opt scanner.Options) (cell []byte, next int, done bool) {
	n := len(data)
	p := start
	if p >= n {
		return nil, p, true
	}
	c := data[p]

	if c == '"' && opt.ExcelQuotes {
		for {
			p++
			if p >= n {
				return cell, p, true
			}
			c = data[p]
			if c == '"' {
				p++
				if p >= n {
					return cell, p, true
				}
				c = data[p]
				if c != '"' {
					break
				}
			}
			cell = append(cell, c)
		}
	}

	for c != opt.Separator && c != '\n' {
		cell = append(cell, c)
		p++
		if p >= n {
			return cell, p, true
		}
		c = data[p]
	}
	return cell, p, false
}
