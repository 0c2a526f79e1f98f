package generals

import "math"

// Unreachable is the distance between cells with no route between them.
const Unreachable = math.MaxInt32

// heuristic estimates the cost of stepping from u towards v. Large friendly
// stacks make a step cheaper, enemy stacks make it dearer. In explore mode
// friendly cells are slightly penalized and fog slightly discounted, which
// pulls explore paths through unknown territory.
func (g *Grid) heuristic(u, v Coord, explore bool) float64 {
	if g.at(v).Type.Impassable() {
		return math.Inf(1)
	}
	army := g.at(u).Army
	if explore && army < 0 {
		army += 2
	}
	if explore && g.at(u).Type == Fog {
		army -= 2
	}
	return float64(Manhattan(u, v)) + float64(army)/8
}

// FindPath runs A* from one cell to another over cardinal moves. The
// returned path excludes from and ends at to; it is nil when to cannot be
// reached. The result is not necessarily the shortest route: the step cost
// favors routes through strong friendly cells.
//
// The open set is kept in insertion order and the first node with the
// lowest f-score wins, which keeps ties deterministic.
func (g *Grid) FindPath(from, to Coord, explore bool) []Coord {
	if !g.InBounds(from) || !g.InBounds(to) || from == to {
		return nil
	}
	if g.at(to).Type.Impassable() {
		return nil
	}

	n := len(g.cells)
	idx := func(c Coord) int { return c.Row*g.cols + c.Col }

	gScore := make([]float64, n)
	fScore := make([]float64, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		fScore[i] = math.Inf(1)
	}
	cameFrom := make([]Coord, n)
	opened := make([]bool, n)
	closed := make([]bool, n)

	gScore[idx(from)] = 0
	fScore[idx(from)] = g.heuristic(from, to, explore)
	open := []Coord{from}
	opened[idx(from)] = true

	for len(open) > 0 {
		best := -1
		bestF := math.Inf(1)
		for i, c := range open {
			if f := fScore[idx(c)]; f < bestF {
				best, bestF = i, f
			}
		}
		if best < 0 {
			return nil
		}
		cur := open[best]
		if cur == to {
			return reconstruct(cameFrom, idx, from, to)
		}

		open = append(open[:best], open[best+1:]...)
		opened[idx(cur)] = false
		closed[idx(cur)] = true

		for _, d := range Cardinals {
			next := cur.Add(d)
			if !g.Passable(next) || closed[idx(next)] {
				continue
			}
			tentative := gScore[idx(cur)] + g.heuristic(cur, next, explore)
			if !opened[idx(next)] {
				open = append(open, next)
				opened[idx(next)] = true
			} else if tentative >= gScore[idx(next)] {
				continue
			}
			cameFrom[idx(next)] = cur
			gScore[idx(next)] = tentative
			fScore[idx(next)] = tentative + g.heuristic(next, to, explore)
		}
	}
	return nil
}

func reconstruct(cameFrom []Coord, idx func(Coord) int, from, to Coord) []Coord {
	var path []Coord
	for cur := to; cur != from; cur = cameFrom[idx(cur)] {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Distance is the length of the non-explore path between two cells: 0 for
// the same cell and Unreachable when no path exists.
func (g *Grid) Distance(from, to Coord) int {
	if from == to {
		return 0
	}
	path := g.FindPath(from, to, false)
	if len(path) == 0 {
		return Unreachable
	}
	return len(path)
}
