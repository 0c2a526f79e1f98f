package generals

// Frame is a serializable view of the grid after one reconciliation.
type Frame struct {
	Match  string      `json:"match"`
	Turn   int         `json:"turn"`
	Rows   int         `json:"rows"`
	Cols   int         `json:"cols"`
	Color  string      `json:"color"`
	Home   *[2]int     `json:"home,omitempty"`
	Cursor *[2]int     `json:"cursor,omitempty"`
	Cells  []FrameCell `json:"cells"` // row-major
}

// FrameCell is one cell of a Frame. Army keeps the grid's sign and
// sentinel conventions.
type FrameCell struct {
	Type      string `json:"t"`
	Army      int    `json:"a"`
	Mine      bool   `json:"m,omitempty"`
	Enemy     bool   `json:"e,omitempty"`
	Influence int    `json:"i,omitempty"`
}

// Frame captures the grid under the given match id.
func (g *Grid) Frame(match string) *Frame {
	f := &Frame{
		Match: match,
		Turn:  g.turn,
		Rows:  g.rows,
		Cols:  g.cols,
		Color: g.color,
		Cells: make([]FrameCell, 0, len(g.cells)),
	}
	if g.home != nil {
		f.Home = &[2]int{g.home.Row, g.home.Col}
	}
	if g.cursor != nil {
		f.Cursor = &[2]int{g.cursor.Row, g.cursor.Col}
	}
	for _, c := range g.cells {
		f.Cells = append(f.Cells, FrameCell{
			Type:      c.Type.String(),
			Army:      c.Army,
			Mine:      c.Mine,
			Enemy:     c.Enemy,
			Influence: c.Influence,
		})
	}
	return f
}
