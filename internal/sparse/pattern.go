// Package sparse implements bit-packed sparsity patterns.
//
// A Pattern is a rows × cols boolean matrix stored row-major with each
// row packed into 64-bit words. The sparsity sweeps treat a row as the
// dependency set of one tape variable and combine rows with bitwise
// union.
package sparse

import (
	"fmt"
	"math/bits"
)

const wordBits = 64

// Pattern is a bit-packed boolean matrix.
type Pattern struct {
	rows  int
	cols  int
	words int // packed words per row
	data  []uint64
}

// WordsFor returns the number of packed words needed for cols columns.
func WordsFor(cols int) int {
	return (cols + wordBits - 1) / wordBits
}

// New creates an all-false pattern.
func New(rows, cols int) *Pattern {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("sparse: invalid dimensions %dx%d", rows, cols))
	}
	w := WordsFor(cols)
	return &Pattern{
		rows:  rows,
		cols:  cols,
		words: w,
		data:  make([]uint64, rows*w),
	}
}

// FromBools builds a pattern from a row-major boolean slice of length rows*cols.
func FromBools(rows, cols int, b []bool) (*Pattern, error) {
	if len(b) != rows*cols {
		return nil, fmt.Errorf("sparse: got %d values for a %dx%d pattern", len(b), rows, cols)
	}
	p := New(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if b[i*cols+j] {
				p.Set(i, j)
			}
		}
	}
	return p, nil
}

// Identity returns the n × n identity pattern.
func Identity(n int) *Pattern {
	p := New(n, n)
	for i := 0; i < n; i++ {
		p.Set(i, i)
	}
	return p
}

// Rows returns the number of rows.
func (p *Pattern) Rows() int { return p.rows }

// Cols returns the number of columns.
func (p *Pattern) Cols() int { return p.cols }

// Words returns the number of packed words per row.
func (p *Pattern) Words() int { return p.words }

// Set marks element (i, j).
func (p *Pattern) Set(i, j int) {
	p.check(i, j)
	p.data[i*p.words+j/wordBits] |= 1 << uint(j%wordBits)
}

// Has reports whether element (i, j) is marked.
func (p *Pattern) Has(i, j int) bool {
	p.check(i, j)
	return p.data[i*p.words+j/wordBits]&(1<<uint(j%wordBits)) != 0
}

// Row returns the packed words of row i. The slice aliases the pattern.
func (p *Pattern) Row(i int) []uint64 {
	return p.data[i*p.words : (i+1)*p.words]
}

// ClearRow empties row i.
func (p *Pattern) ClearRow(i int) {
	clear(p.Row(i))
}

// CopyRow sets row dst to row src.
func (p *Pattern) CopyRow(dst, src int) {
	copy(p.Row(dst), p.Row(src))
}

// UnionRow sets row dst to the union of rows dst and src.
func (p *Pattern) UnionRow(dst, src int) {
	d := p.Row(dst)
	for k, w := range p.Row(src) {
		d[k] |= w
	}
}

// UnionFrom unions row src of other into row dst of p.
// Both patterns must have the same number of columns.
func (p *Pattern) UnionFrom(dst int, other *Pattern, src int) {
	if other.words != p.words {
		panic(fmt.Sprintf("sparse: column mismatch %d != %d", other.cols, p.cols))
	}
	d := p.Row(dst)
	for k, w := range other.Row(src) {
		d[k] |= w
	}
}

// UnionWords unions packed words into row dst.
func (p *Pattern) UnionWords(dst int, words []uint64) {
	d := p.Row(dst)
	for k, w := range words {
		d[k] |= w
	}
}

// RowEmpty reports whether row i has no marked element.
func (p *Pattern) RowEmpty(i int) bool {
	for _, w := range p.Row(i) {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of marked elements.
func (p *Pattern) Count() int {
	n := 0
	for _, w := range p.data {
		n += bits.OnesCount64(w)
	}
	return n
}

// Bools returns the pattern as a row-major boolean slice.
func (p *Pattern) Bools() []bool {
	out := make([]bool, p.rows*p.cols)
	for i := 0; i < p.rows; i++ {
		for j := 0; j < p.cols; j++ {
			out[i*p.cols+j] = p.Has(i, j)
		}
	}
	return out
}

// Memory returns the number of bytes held by the packed words.
func (p *Pattern) Memory() int {
	return len(p.data) * 8
}

// String renders the pattern one row per line with '1' and '.'.
func (p *Pattern) String() string {
	buf := make([]byte, 0, p.rows*(p.cols+1))
	for i := 0; i < p.rows; i++ {
		for j := 0; j < p.cols; j++ {
			if p.Has(i, j) {
				buf = append(buf, '1')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

func (p *Pattern) check(i, j int) {
	if i < 0 || i >= p.rows || j < 0 || j >= p.cols {
		panic(fmt.Sprintf("sparse: index (%d, %d) out of range for %dx%d pattern", i, j, p.rows, p.cols))
	}
}
