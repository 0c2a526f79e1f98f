package generals

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when a snapshot does not match the board
// size fixed at match start.
var ErrDimensionMismatch = errors.New("snapshot dimensions do not match grid")

// PendingMove is a move issued on one tick whose effect is not yet visible.
// It is settled speculatively at the start of the next reconciliation.
type PendingMove struct {
	From Coord
	To   Coord
	Half bool
}

// Grid is the persistent model of one match's board.
type Grid struct {
	rows  int
	cols  int
	cells []Cell // row-major

	color   string
	home    *Coord
	cursor  *Coord
	pending *PendingMove
	turn    int
}

// New creates an all-fog grid for a match.
func New(info MatchInfo) *Grid {
	return &Grid{
		rows:  info.Rows,
		cols:  info.Cols,
		cells: make([]Cell, info.Rows*info.Cols),
		color: info.Color,
	}
}

func (g *Grid) Rows() int     { return g.rows }
func (g *Grid) Cols() int     { return g.cols }
func (g *Grid) Color() string { return g.color }
func (g *Grid) Turn() int     { return g.turn }

// Home returns the local player's general, if it has been seen.
func (g *Grid) Home() (Coord, bool) {
	if g.home == nil {
		return Coord{}, false
	}
	return *g.home, true
}

// Cursor returns the last focused cell.
func (g *Grid) Cursor() (Coord, bool) {
	if g.cursor == nil {
		return Coord{}, false
	}
	return *g.cursor, true
}

// SetCursor records that the game surface now focuses c.
func (g *Grid) SetCursor(c Coord) { g.cursor = &c }

// ClearCursor records that the game surface lost its focus.
func (g *Grid) ClearCursor() { g.cursor = nil }

// Pending returns the move awaiting settlement.
func (g *Grid) Pending() (PendingMove, bool) {
	if g.pending == nil {
		return PendingMove{}, false
	}
	return *g.pending, true
}

// RecordMove stores a dispatched move for settlement on the next
// reconciliation. Only the latest move is kept.
func (g *Grid) RecordMove(from, to Coord, half bool) {
	g.pending = &PendingMove{From: from, To: to, Half: half}
}

// InBounds reports whether c lies on the board.
func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

func (g *Grid) at(c Coord) *Cell {
	return &g.cells[c.Row*g.cols+c.Col]
}

// Cell returns a copy of the cell at c. c must be in bounds.
func (g *Grid) Cell(c Coord) Cell {
	return *g.at(c)
}

// Army returns the signed army at c.
func (g *Grid) Army(c Coord) int {
	return g.at(c).Army
}

// Passable reports whether c is on the board and can be entered.
func (g *Grid) Passable(c Coord) bool {
	return g.InBounds(c) && !g.at(c).Type.Impassable()
}

// CanMove is the local legality guard: a move is worth issuing only if the
// combined armies leave the destination decisively friendly.
func (g *Grid) CanMove(from, to Coord) bool {
	return g.Army(from)+g.Army(to) < -1
}

// Neighbors returns the in-bounds cardinal neighbors of c in Cardinals order.
func (g *Grid) Neighbors(c Coord) []Coord {
	out := make([]Coord, 0, len(Cardinals))
	for _, d := range Cardinals {
		if n := c.Add(d); g.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// FindAll returns every coordinate matching pred in row-major order.
func (g *Grid) FindAll(pred func(Coord, Cell) bool) []Coord {
	var out []Coord
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			c := Coord{Row: i, Col: j}
			if pred(c, *g.at(c)) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Find returns the first coordinate matching pred in row-major order.
func (g *Grid) Find(pred func(Coord, Cell) bool) (Coord, bool) {
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			c := Coord{Row: i, Col: j}
			if pred(c, *g.at(c)) {
				return c, true
			}
		}
	}
	return Coord{}, false
}

// Reconcile merges one tick's snapshot into the model.
func (g *Grid) Reconcile(snap *Snapshot, turn int) error {
	if snap.Rows != g.rows || snap.Cols != g.cols || len(snap.Cells) != g.rows {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, snap.Rows, snap.Cols, g.rows, g.cols)
	}
	for i, row := range snap.Cells {
		if len(row) != g.cols {
			return fmt.Errorf("%w: row %d has %d cells", ErrDimensionMismatch, i, len(row))
		}
	}

	g.turn = turn
	g.settle()

	g.home = nil
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			c := Coord{Row: i, Col: j}
			cell := g.at(c)
			o := Observe(snap.Cells[i][j], g.color)
			cell.update(o)

			if cell.Type == General && o.Mine {
				home := c
				g.home = &home
			}

			// Passive growth lands one tick before the display shows it.
			if (o.Type == City || o.Type == General) && (cell.Mine || cell.Enemy) {
				if cell.Mine {
					cell.Army--
				} else {
					cell.Army++
				}
			}
		}
	}

	g.computeInfluence()
	return nil
}

// settle applies the pending move, if any, and clears it.
func (g *Grid) settle() {
	if g.pending == nil {
		return
	}
	m := *g.pending
	g.pending = nil

	if !g.InBounds(m.From) || !g.InBounds(m.To) {
		return
	}
	src, dst := g.at(m.From), g.at(m.To)
	if !src.Mine {
		return
	}
	moved := src.Army + 1
	if m.Half {
		moved = ceilHalf(moved)
	}
	src.Army -= moved
	if dst.Army != Infinity {
		dst.Army += moved
	}
	if dst.Army <= -1 {
		dst.Mine = true
	}
}

// ceilHalf returns ⌈n/2⌉.
func ceilHalf(n int) int {
	if n < 0 {
		return n / 2
	}
	return (n + 1) / 2
}
