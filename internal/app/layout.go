package app

import (
	"github.com/rivo/uniseg"
)

// cell is one grapheme cluster on screen.
type cell struct {
	loc   int // rune offset in the text
	str   string
	width int
}

// row is one visual line of the text area.
type row struct {
	start int
	// end is the offset just past the last cell; for a row ended by a
	// newline it is the offset of that newline.
	end   int
	hard  bool
	cells []cell
}

// wrap breaks text into rows no wider than width, splitting on newlines
// and between grapheme clusters.
func wrap(text string, width int) []row {
	width = max(width, 1)
	rows := []row{{}}
	cur := &rows[0]
	x, loc := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		if runes[0] == '\n' || runes[0] == '\r' {
			cur.end = loc
			cur.hard = true
			loc += len(runes)
			rows = append(rows, row{start: loc, end: loc})
			cur = &rows[len(rows)-1]
			x = 0
			continue
		}
		w := max(g.Width(), 1)
		if x+w > width && len(cur.cells) > 0 {
			rows = append(rows, row{start: loc, end: loc})
			cur = &rows[len(rows)-1]
			x = 0
		}
		cur.cells = append(cur.cells, cell{loc: loc, str: g.Str(), width: w})
		loc += len(runes)
		cur.end = loc
		x += w
	}
	return rows
}

// caretPos finds the row and column of loc.
func caretPos(rows []row, loc int) (int, int) {
	ri := 0
	for i := range rows {
		if rows[i].start <= loc {
			ri = i
		}
	}
	col := 0
	for _, c := range rows[ri].cells {
		if c.loc >= loc {
			break
		}
		col += c.width
	}
	return ri, col
}

// locAt is the offset shown at column col of r, clamped to the row.
func locAt(r row, col int) int {
	x := 0
	for _, c := range r.cells {
		if x+c.width > col {
			return c.loc
		}
		x += c.width
	}
	if !r.hard && len(r.cells) > 0 && r.end > r.start {
		// a soft-wrapped row ends where the next one starts
		return r.cells[len(r.cells)-1].loc
	}
	return r.end
}

// graphemeBounds lists the rune offsets at which clusters start, plus the
// end of the text.
func graphemeBounds(text string) []int {
	bounds := []int{0}
	loc := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		loc += len(g.Runes())
		bounds = append(bounds, loc)
	}
	return bounds
}

func prevBoundary(text string, loc int) int {
	prev := 0
	for _, b := range graphemeBounds(text) {
		if b >= loc {
			break
		}
		prev = b
	}
	return prev
}

func nextBoundary(text string, loc int) int {
	bounds := graphemeBounds(text)
	for _, b := range bounds {
		if b > loc {
			return b
		}
	}
	return bounds[len(bounds)-1]
}
