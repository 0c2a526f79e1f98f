package generals

import "math"

// Infinity is the army value of impassable cells. It is far enough from
// any real army count that sums with it never look like a beatable cell.
const Infinity = math.MaxInt32

// CellType is what is known about a board position.
type CellType int

const (
	Fog      CellType = iota // Not visible, contents unknown
	Obstacle                 // Not visible, known impassable (mountain or city)
	Mountain
	General
	City
	Neutral // Visible plain land
)

func (t CellType) String() string {
	switch t {
	case Fog:
		return "fog"
	case Obstacle:
		return "obstacle"
	case Mountain:
		return "mountain"
	case General:
		return "general"
	case City:
		return "city"
	case Neutral:
		return "neutral"
	}
	return "unknown"
}

// Resolved reports whether the type came from a direct observation.
func (t CellType) Resolved() bool {
	return t != Fog && t != Obstacle
}

// Impassable reports whether armies can never enter the cell.
func (t CellType) Impassable() bool {
	return t == Mountain || t == Obstacle
}

// Cell is the reconciled state of one board position.
// Friendly armies are stored negative; enemy and neutral armies are
// non-negative.
type Cell struct {
	Type      CellType
	Army      int
	Mine      bool
	Enemy     bool
	Influence int
}

// Observation is one cell as derived from a raw snapshot.
type Observation struct {
	Type  CellType
	Army  int // signed: negative when Mine
	Mine  bool
	Enemy bool
}

// update merges an observation into the cell.
//
// Types only move forward: fog may resolve to anything, fog may become an
// obstacle, and a general may degrade to a city once it has been captured.
// Nothing resolved ever falls back to fog or obstacle.
func (c *Cell) update(o Observation) {
	switch {
	case o.Type.Resolved():
		c.Type = o.Type
	case c.Type == General && (o.Type == City || o.Type == Obstacle):
		c.Type = City
	case c.Type == Fog && o.Type == Obstacle:
		c.Type = Obstacle
	}

	if o.Type.Resolved() {
		c.Army = o.Army
	}
	if c.Type.Impassable() {
		c.Army = Infinity
	}

	c.Mine = o.Mine
	if o.Type.Resolved() && c.Type != Mountain && !o.Mine {
		c.Enemy = o.Enemy
	}
}
