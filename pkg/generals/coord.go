package generals

import (
	"errors"
	"fmt"
)

// ErrNotAdjacent is returned when a move joins two cells that are not
// 4-adjacent.
var ErrNotAdjacent = errors.New("cells are not adjacent")

// Coord addresses a board cell by row and column.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Add returns c shifted by d.
func (c Coord) Add(d Direction) Coord {
	return Coord{Row: c.Row + d.DRow, Col: c.Col + d.DCol}
}

// Manhattan returns the L1 distance between two coordinates.
func Manhattan(a, b Coord) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

// Direction is a unit offset on the board.
type Direction struct {
	Name string
	DRow int
	DCol int
}

var (
	Up    = Direction{Name: "up", DRow: -1}
	Down  = Direction{Name: "down", DRow: 1}
	Left  = Direction{Name: "left", DCol: -1}
	Right = Direction{Name: "right", DCol: 1}
)

// Cardinals lists the four move directions. Every neighbor scan and the
// path search iterate them in this order, so tie-breaks are reproducible.
var Cardinals = [4]Direction{Up, Down, Left, Right}

// Surrounding lists the eight offsets around a cell in row-major order.
var Surrounding = [8]Direction{
	{Name: "up-left", DRow: -1, DCol: -1},
	Up,
	{Name: "up-right", DRow: -1, DCol: 1},
	Left,
	Right,
	{Name: "down-left", DRow: 1, DCol: -1},
	Down,
	{Name: "down-right", DRow: 1, DCol: 1},
}

// DirectionBetween returns the cardinal direction leading from one cell to
// an adjacent one. ok is false when the cells are not 4-adjacent.
func DirectionBetween(from, to Coord) (d Direction, ok bool) {
	for _, d := range Cardinals {
		if from.Add(d) == to {
			return d, true
		}
	}
	return Direction{}, false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
