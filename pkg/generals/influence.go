package generals

const (
	enemySeed = 1024
	safeSeed  = -128
)

// computeInfluence rebuilds the risk field from scratch.
//
// From every friendly cell a ray is cast in each of the eight surrounding
// directions. The ray starts at 1024 when the first cell it meets is enemy
// territory and at -128 otherwise, and halves (rounding down) on every
// further step until it reaches zero or leaves the board. Fog near visible
// enemies ends up strongly positive; fog deep behind friendly lines ends up
// negative.
func (g *Grid) computeInfluence() {
	for i := range g.cells {
		g.cells[i].Influence = 0
	}
	for i := 0; i < g.rows; i++ {
		for j := 0; j < g.cols; j++ {
			origin := Coord{Row: i, Col: j}
			if !g.at(origin).Mine {
				continue
			}
			for _, d := range Surrounding {
				c := origin.Add(d)
				if !g.InBounds(c) {
					continue
				}
				val := safeSeed
				if g.at(c).Enemy {
					val = enemySeed
				}
				// Arithmetic shift floors, so negative rays settle at -1
				// and run to the edge of the board.
				for ; val != 0 && g.InBounds(c); c = c.Add(d) {
					g.at(c).Influence += val
					val >>= 1
				}
			}
		}
	}
}
