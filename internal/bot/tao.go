package bot

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/pkg/generals"
)

// TaoStrategy is the layered heuristic player. Every tick it walks a fixed
// list of rules and stops at the first one that issues a command:
//
//  1. greet on the first turn
//  2. stay idle through the opening
//  3. hunt a visible general, or whatever threatens home
//  4. keep walking the current exploration path
//  5. take cheap cities late in the game
//  6. explore: send a big stack into low-risk fog ("tao", to dig out)
//  7. expand into adjacent land, or bring the biggest stack to the border
type TaoStrategy struct {
	tuning Tuning
	path   []generals.Coord // exploration path; path[0] is where the army last went
}

// NewTaoStrategy creates a TaoStrategy.
func NewTaoStrategy(tuning Tuning) *TaoStrategy {
	return &TaoStrategy{tuning: tuning}
}

func (s *TaoStrategy) Name() string { return "tao" }

// Path returns the exploration path being followed.
func (s *TaoStrategy) Path() []generals.Coord { return s.path }

func (s *TaoStrategy) Decide(ctx context.Context, cmd *Commander) (bool, error) {
	turn := cmd.Grid().Turn()

	if turn == 1 && s.tuning.Greeting != "" {
		if err := cmd.Say(ctx, s.tuning.Greeting); err != nil {
			return false, err
		}
		return true, nil
	}
	if turn < s.tuning.IdleUntil {
		return false, nil
	}

	type rule struct {
		name    string
		enabled bool
		run     func(context.Context, *Commander) (bool, error)
	}
	rules := []rule{
		{"hunt", turn >= s.tuning.HuntFrom, s.hunt},
		{"continue", true, s.continuePath},
		{"cities", turn >= s.tuning.CitiesFrom, s.pressCities},
		{"explore", true, s.explore},
		{"expand", true, s.expand},
	}
	for _, r := range rules {
		if !r.enabled {
			continue
		}
		ok, err := r.run(ctx, cmd)
		if err != nil {
			return false, err
		}
		if ok {
			log.Debug().Int("turn", turn).Str("rule", r.name).Msg("Rule fired")
			return true, nil
		}
	}
	return false, nil
}

// hunt attacks a visible enemy general, falling back to the closest enemy
// cell near home.
func (s *TaoStrategy) hunt(ctx context.Context, cmd *Commander) (bool, error) {
	g := cmd.Grid()
	target, ok := g.Find(func(_ generals.Coord, c generals.Cell) bool {
		return c.Type == generals.General && !c.Mine
	})
	if !ok {
		target, ok = s.danger(g)
	}
	if !ok {
		return false, nil
	}
	return s.attack(ctx, cmd, target, g.Army(target), false)
}

// danger returns the enemy cell closest to home within the danger box.
func (s *TaoStrategy) danger(g *generals.Grid) (generals.Coord, bool) {
	home, ok := g.Home()
	if !ok {
		return generals.Coord{}, false
	}
	r := s.tuning.DangerRadius
	var best generals.Coord
	bestDist := generals.Unreachable
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			c := generals.Coord{Row: home.Row + dr, Col: home.Col + dc}
			if c == home || !g.InBounds(c) || !g.Cell(c).Enemy {
				continue
			}
			if d := g.Distance(home, c); d < bestDist {
				best, bestDist = c, d
			}
		}
	}
	return best, bestDist != generals.Unreachable
}

// attack commits friendly stacks against target, whose defense is the army
// that has to be beaten. With one stack strong enough it marches on the
// target; when several are needed it merges the two nearest first.
func (s *TaoStrategy) attack(ctx context.Context, cmd *Commander, target generals.Coord, defense int, singleOnly bool) (bool, error) {
	g := cmd.Grid()
	stacks := g.FindAll(func(_ generals.Coord, c generals.Cell) bool {
		return c.Mine && c.Army < -1
	})
	// Smallest magnitude first.
	sort.SliceStable(stacks, func(i, j int) bool { return g.Army(stacks[i]) > g.Army(stacks[j]) })

	needed, force := 0, 0
	for needed < len(stacks) && force+defense >= -1 {
		force += g.Army(stacks[needed]) + 1
		needed++
	}
	if force+defense >= -1 {
		return false, nil
	}

	if needed > 1 {
		if singleOnly {
			return false, nil
		}
		required := append([]generals.Coord(nil), stacks[:needed]...)
		sortByDistance(g, required, target)
		near, far := required[0], required[1]
		path := g.FindPath(far, near, false)
		if len(path) == 0 {
			return false, nil
		}
		return cmd.Move(ctx, far, path[0], false)
	}

	strong := g.FindAll(func(_ generals.Coord, c generals.Cell) bool {
		return c.Mine && c.Army+defense < -1
	})
	if len(strong) == 0 {
		return false, nil
	}
	sortByDistance(g, strong, target)
	path := g.FindPath(strong[0], target, false)
	if len(path) == 0 {
		return false, nil
	}
	return cmd.Move(ctx, strong[0], path[0], false)
}

// continuePath advances one hop along the recorded exploration path while
// its next edge is still winnable. A broken path is left for explore to
// replace.
func (s *TaoStrategy) continuePath(ctx context.Context, cmd *Commander) (bool, error) {
	if len(s.path) < 2 {
		return false, nil
	}
	g := cmd.Grid()
	from, to := s.path[0], s.path[1]
	if g.Army(from) >= -1 || g.Army(from)+g.Army(to) >= -1 {
		return false, nil
	}
	s.path = s.path[1:]
	return cmd.Move(ctx, from, to, false)
}

// pressCities attacks the cheapest non-friendly city a single stack can
// take. Cities next to enemy territory are not worth the fight.
func (s *TaoStrategy) pressCities(ctx context.Context, cmd *Commander) (bool, error) {
	g := cmd.Grid()
	cities := g.FindAll(func(_ generals.Coord, c generals.Cell) bool {
		return c.Type == generals.City && !c.Mine
	})
	defense := make(map[generals.Coord]int, len(cities))
	for _, city := range cities {
		defense[city] = g.Army(city)
		for _, d := range generals.Surrounding {
			if n := city.Add(d); g.InBounds(n) && g.Cell(n).Enemy {
				defense[city] = generals.Infinity
				break
			}
		}
	}
	sort.SliceStable(cities, func(i, j int) bool { return defense[cities[i]] < defense[cities[j]] })

	for _, city := range cities {
		ok, err := s.attack(ctx, cmd, city, defense[city], true)
		if ok || err != nil {
			return ok, err
		}
	}
	return false, nil
}

// explore routes a large stack towards the closest, safest fog and records
// the route for continuePath.
func (s *TaoStrategy) explore(ctx context.Context, cmd *Commander) (bool, error) {
	g := cmd.Grid()
	from, ok := s.exploreSource(g)
	if !ok {
		return false, nil
	}

	targets := g.FindAll(func(_ generals.Coord, c generals.Cell) bool {
		return c.Type == generals.Fog
	})
	if len(targets) == 0 {
		s.path = nil
		return false, nil
	}
	score := make(map[generals.Coord]int, len(targets))
	for _, t := range targets {
		score[t] = g.Distance(t, from) + s.tuning.InfluenceWeight*g.Cell(t).Influence
	}
	sort.SliceStable(targets, func(i, j int) bool { return score[targets[i]] < score[targets[j]] })

	for _, t := range targets {
		path := g.FindPath(from, t, true)
		if len(path) == 0 {
			continue
		}
		s.path = path
		log.Debug().Stringer("from", from).Stringer("target", t).Int("hops", len(path)).Msg("Exploring")
		return cmd.Move(ctx, from, path[0], false)
	}
	s.path = nil
	return false, nil
}

// exploreSource keeps pushing the focused stack when it can still win a
// neighbor, otherwise picks the biggest stack if it is big enough.
func (s *TaoStrategy) exploreSource(g *generals.Grid) (generals.Coord, bool) {
	if cur, ok := g.Cursor(); ok {
		if c := g.Cell(cur); c.Mine && c.Army < -1 {
			for _, n := range g.Neighbors(cur) {
				if g.Passable(n) && g.CanMove(cur, n) {
					return cur, true
				}
			}
		}
	}

	biggest, ok := biggestStack(g)
	if !ok || g.Army(biggest) >= -s.tuning.ExploreMinArmy {
		return generals.Coord{}, false
	}
	return biggest, true
}

// expand grabs an adjacent cell with the lowest signed army able to take
// one, which is the biggest friendly stack.
// When no stack borders anything winnable, the biggest stack walks towards
// the nearest border instead.
func (s *TaoStrategy) expand(ctx context.Context, cmd *Commander) (bool, error) {
	g := cmd.Grid()
	winnable := func(from, n generals.Coord) bool {
		c := g.Cell(n)
		return g.Passable(n) && !c.Mine && g.CanMove(from, n)
	}

	borders := g.FindAll(func(at generals.Coord, c generals.Cell) bool {
		if !c.Mine {
			return false
		}
		for _, n := range g.Neighbors(at) {
			if winnable(at, n) {
				return true
			}
		}
		return false
	})
	if len(borders) > 0 {
		sort.SliceStable(borders, func(i, j int) bool { return g.Army(borders[i]) < g.Army(borders[j]) })
		from := borders[0]
		for _, n := range g.Neighbors(from) {
			if winnable(from, n) {
				ok, err := cmd.Move(ctx, from, n, false)
				if ok || err != nil {
					return ok, err
				}
				break
			}
		}
	}

	biggest, ok := biggestStack(g)
	if !ok || g.Army(biggest) >= -1 {
		return false, nil
	}
	frontier := g.FindAll(func(at generals.Coord, c generals.Cell) bool {
		if !c.Mine {
			return false
		}
		for _, n := range g.Neighbors(at) {
			nc := g.Cell(n)
			if g.Passable(n) && nc.Type != generals.City && !nc.Mine {
				return true
			}
		}
		return false
	})
	if len(frontier) == 0 {
		return false, nil
	}
	sortByDistance(g, frontier, biggest)
	path := g.FindPath(biggest, frontier[0], false)
	if len(path) == 0 {
		return false, nil
	}
	return cmd.Move(ctx, biggest, path[0], false)
}

// biggestStack returns the friendly cell holding the most army, first in
// row-major order on ties.
func biggestStack(g *generals.Grid) (generals.Coord, bool) {
	var best generals.Coord
	found := false
	for _, c := range g.FindAll(func(_ generals.Coord, c generals.Cell) bool { return c.Mine }) {
		if !found || g.Army(c) < g.Army(best) {
			best, found = c, true
		}
	}
	return best, found
}

// sortByDistance orders cells by path distance to target, nearest first.
func sortByDistance(g *generals.Grid, cells []generals.Coord, target generals.Coord) {
	dist := make(map[generals.Coord]int, len(cells))
	for _, c := range cells {
		dist[c] = g.Distance(c, target)
	}
	sort.SliceStable(cells, func(i, j int) bool { return dist[cells[i]] < dist[cells[j]] })
}
