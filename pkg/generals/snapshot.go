package generals

import (
	"strconv"
	"strings"
)

// Colors are the player colors in player-index order.
var Colors = []string{
	"red", "green", "lightblue", "purple", "teal", "orange", "maroon", "yellow",
	"pink", "brown", "lightgreen", "purpleblue",
}

// EnemyTag marks a cell owned by a player without a color of its own.
const EnemyTag = "enemy"

// ColorOf returns the color tag for a player index, or "" when out of range.
func ColorOf(playerIndex int) string {
	if playerIndex < 0 || playerIndex >= len(Colors) {
		return ""
	}
	return Colors[playerIndex]
}

// MatchInfo is what the game surface reveals once at match start.
type MatchInfo struct {
	ID    string
	Rows  int
	Cols  int
	Color string // local player's color tag
}

// RawCell is one cell as displayed by the game surface.
type RawCell struct {
	Class string // whitespace-separated tags, e.g. "city red" or "fog obstacle"
	Text  string // displayed army, empty when none
}

// Snapshot is a full board as displayed on one tick.
type Snapshot struct {
	Rows  int
	Cols  int
	Cells [][]RawCell // [row][col]
}

// NewSnapshot allocates an all-fog snapshot.
func NewSnapshot(rows, cols int) *Snapshot {
	s := &Snapshot{Rows: rows, Cols: cols, Cells: make([][]RawCell, rows)}
	for i := range s.Cells {
		s.Cells[i] = make([]RawCell, cols)
		for j := range s.Cells[i] {
			s.Cells[i][j] = RawCell{Class: "fog"}
		}
	}
	return s
}

// Set overwrites one cell.
func (s *Snapshot) Set(c Coord, class, text string) {
	s.Cells[c.Row][c.Col] = RawCell{Class: class, Text: text}
}

// Observe interprets a raw cell from the point of view of the player
// owning localColor.
func Observe(raw RawCell, localColor string) Observation {
	tags := strings.Fields(raw.Class)
	has := func(tag string) bool {
		for _, t := range tags {
			if t == tag {
				return true
			}
		}
		return false
	}

	var o Observation
	switch {
	case has("fog"):
		o.Type = Fog
		if has("obstacle") {
			o.Type = Obstacle
		}
	case has("mountain"):
		o.Type = Mountain
	case has("city"):
		o.Type = City
	case has("general"):
		o.Type = General
	default:
		o.Type = Neutral
	}

	army, err := strconv.Atoi(strings.TrimSpace(raw.Text))
	if err != nil || army < 0 {
		army = 0
	}

	o.Mine = localColor != "" && has(localColor)
	o.Enemy = has(EnemyTag)
	for _, color := range Colors {
		if color != localColor && has(color) {
			o.Enemy = true
			break
		}
	}
	if o.Mine {
		army = -army
	}
	o.Army = army
	return o
}
