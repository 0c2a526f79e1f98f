package generals

import (
	"errors"
	"testing"
)

func newTestGrid(rows, cols int) *Grid {
	return New(MatchInfo{ID: "test", Rows: rows, Cols: cols, Color: "red"})
}

func mustReconcile(t *testing.T, g *Grid, snap *Snapshot, turn int) {
	t.Helper()
	if err := g.Reconcile(snap, turn); err != nil {
		t.Fatalf("reconcile turn %d: %v", turn, err)
	}
}

func TestReconcile_FogResolvesToCity(t *testing.T) {
	g := newTestGrid(2, 2)
	snap := NewSnapshot(2, 2)
	mustReconcile(t, g, snap, 1)

	city := Coord{Row: 1, Col: 1}
	snap.Set(city, "city", "7")
	mustReconcile(t, g, snap, 2)

	c := g.Cell(city)
	if c.Type != City || c.Army != 7 {
		t.Fatalf("expected city with 7, got %s with %d", c.Type, c.Army)
	}

	for turn, class := range []string{"fog", "fog obstacle", "fog"} {
		snap.Set(city, class, "")
		mustReconcile(t, g, snap, turn+3)
		if c := g.Cell(city); c.Type != City || c.Army != 7 {
			t.Fatalf("turn %d (%s): expected city with 7, got %s with %d", turn+3, class, c.Type, c.Army)
		}
	}
}

func TestReconcile_CapturedGeneral(t *testing.T) {
	g := newTestGrid(1, 2)
	snap := NewSnapshot(1, 2)
	snap.Set(Coord{Row: 0, Col: 1}, "general teal", "12")
	mustReconcile(t, g, snap, 1)

	snap.Set(Coord{Row: 0, Col: 1}, "fog obstacle", "")
	mustReconcile(t, g, snap, 2)
	if got := g.Cell(Coord{Row: 0, Col: 1}).Type; got != City {
		t.Fatalf("captured general should become a city, got %s", got)
	}
}

func TestReconcile_SignInvariant(t *testing.T) {
	g := newTestGrid(3, 3)
	snap := NewSnapshot(3, 3)
	snap.Set(Coord{Row: 0, Col: 0}, "general red", "8")
	snap.Set(Coord{Row: 0, Col: 1}, "red", "1")
	snap.Set(Coord{Row: 0, Col: 2}, "city red", "20")
	snap.Set(Coord{Row: 1, Col: 0}, "mountain", "")
	snap.Set(Coord{Row: 1, Col: 1}, "fog obstacle", "")
	snap.Set(Coord{Row: 2, Col: 2}, "green", "4")
	mustReconcile(t, g, snap, 1)

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c := g.Cell(Coord{Row: i, Col: j})
			if c.Mine && c.Army > 0 {
				t.Errorf("(%d,%d): friendly army %d should be <= 0", i, j, c.Army)
			}
			if c.Type.Impassable() && c.Army != Infinity {
				t.Errorf("(%d,%d): %s army %d should be infinite", i, j, c.Type, c.Army)
			}
		}
	}
}

func TestReconcile_HomeAndPassiveGrowth(t *testing.T) {
	g := newTestGrid(2, 3)
	snap := NewSnapshot(2, 3)
	snap.Set(Coord{Row: 0, Col: 0}, "general red", "10")
	snap.Set(Coord{Row: 0, Col: 1}, "city green", "30")
	snap.Set(Coord{Row: 0, Col: 2}, "city", "40")
	snap.Set(Coord{Row: 1, Col: 0}, "red", "3")
	mustReconcile(t, g, snap, 1)

	home, ok := g.Home()
	if !ok || home != (Coord{Row: 0, Col: 0}) {
		t.Fatalf("expected home at (0,0), got %v %v", home, ok)
	}
	tests := []struct {
		at   Coord
		want int
	}{
		{Coord{Row: 0, Col: 0}, -11}, // own general grows
		{Coord{Row: 0, Col: 1}, 31},  // enemy city grows
		{Coord{Row: 0, Col: 2}, 40},  // neutral city does not
		{Coord{Row: 1, Col: 0}, -3},  // plain land does not
	}
	for _, tt := range tests {
		if got := g.Army(tt.at); got != tt.want {
			t.Errorf("army at %v: got %d, want %d", tt.at, got, tt.want)
		}
	}
}

func TestReconcile_HomeLost(t *testing.T) {
	g := newTestGrid(1, 1)
	snap := NewSnapshot(1, 1)
	snap.Set(Coord{}, "general red", "3")
	mustReconcile(t, g, snap, 1)
	if _, ok := g.Home(); !ok {
		t.Fatal("expected home")
	}
	snap.Set(Coord{}, "city green", "1")
	mustReconcile(t, g, snap, 2)
	if _, ok := g.Home(); ok {
		t.Fatal("home should be cleared once the general is lost")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	g := newTestGrid(4, 4)
	snap := NewSnapshot(4, 4)
	snap.Set(Coord{Row: 0, Col: 0}, "general red", "9")
	snap.Set(Coord{Row: 0, Col: 1}, "red", "2")
	snap.Set(Coord{Row: 1, Col: 1}, "mountain", "")
	snap.Set(Coord{Row: 2, Col: 2}, "orange", "5")
	snap.Set(Coord{Row: 3, Col: 3}, "city", "45")
	mustReconcile(t, g, snap, 1)

	first := append([]Cell(nil), g.cells...)
	mustReconcile(t, g, snap, 2)
	for i := range first {
		if first[i] != g.cells[i] {
			t.Errorf("cell %d changed: %+v -> %+v", i, first[i], g.cells[i])
		}
	}
}

func TestReconcile_DimensionMismatch(t *testing.T) {
	g := newTestGrid(2, 2)
	err := g.Reconcile(NewSnapshot(3, 2), 1)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if g.Turn() != 0 {
		t.Error("a rejected snapshot must not advance the turn")
	}
}

func TestSettle_FullMove(t *testing.T) {
	g := newTestGrid(1, 3)
	snap := NewSnapshot(1, 3)
	snap.Set(Coord{Row: 0, Col: 0}, "red", "10")
	snap.Set(Coord{Row: 0, Col: 1}, "", "3")
	mustReconcile(t, g, snap, 1)

	g.RecordMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}, false)
	g.settle()

	src, dst := g.Cell(Coord{Row: 0, Col: 0}), g.Cell(Coord{Row: 0, Col: 1})
	if src.Army != -1 {
		t.Errorf("source should keep one army, got %d", src.Army)
	}
	if dst.Army != -6 || !dst.Mine {
		t.Errorf("target should be friendly with -6, got %d mine=%v", dst.Army, dst.Mine)
	}
	if _, ok := g.Pending(); ok {
		t.Error("settled move should be cleared")
	}
}

func TestSettle_HalfMove(t *testing.T) {
	g := newTestGrid(1, 2)
	snap := NewSnapshot(1, 2)
	snap.Set(Coord{Row: 0, Col: 0}, "red", "10")
	snap.Set(Coord{Row: 0, Col: 1}, "", "")
	mustReconcile(t, g, snap, 1)

	g.RecordMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}, true)
	g.settle()

	// 9 movable armies, half rounded up away from the source is 4.
	if got := g.Army(Coord{Row: 0, Col: 0}); got != -6 {
		t.Errorf("source: got %d, want -6", got)
	}
	if got := g.Army(Coord{Row: 0, Col: 1}); got != -4 {
		t.Errorf("target: got %d, want -4", got)
	}
}

func TestSettle_SourceLost(t *testing.T) {
	g := newTestGrid(1, 2)
	snap := NewSnapshot(1, 2)
	snap.Set(Coord{Row: 0, Col: 0}, "green", "10")
	snap.Set(Coord{Row: 0, Col: 1}, "", "1")
	mustReconcile(t, g, snap, 1)

	g.RecordMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}, false)
	g.settle()
	if g.Army(Coord{Row: 0, Col: 0}) != 10 || g.Army(Coord{Row: 0, Col: 1}) != 1 {
		t.Error("a move from a lost cell must not be settled")
	}
}

func TestReconcile_ConsumesPendingOnce(t *testing.T) {
	g := newTestGrid(1, 3)
	snap := NewSnapshot(1, 3)
	snap.Set(Coord{Row: 0, Col: 0}, "red", "10")
	mustReconcile(t, g, snap, 1)

	// The target stays in fog, so its settled army survives the merge.
	g.RecordMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}, false)
	mustReconcile(t, g, snap, 2)
	if _, ok := g.Pending(); ok {
		t.Fatal("pending move should be consumed by reconcile")
	}
	if got := g.Army(Coord{Row: 0, Col: 1}); got != -9 {
		t.Fatalf("fog target should carry the settled army, got %d", got)
	}
	if g.Cell(Coord{Row: 0, Col: 1}).Mine {
		t.Fatal("ownership of a fog cell follows the snapshot")
	}

	mustReconcile(t, g, snap, 3)
	if got := g.Army(Coord{Row: 0, Col: 1}); got != -9 {
		t.Fatalf("settlement must happen once, got %d", got)
	}
}

func TestReconcile_MoveThenSnapshot(t *testing.T) {
	from, to := Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}
	start := NewSnapshot(1, 2)
	start.Set(from, "red", "10")
	start.Set(to, "", "")

	tests := []struct {
		name     string
		next     func() *Snapshot
		fromArmy int
		toArmy   int
		toMine   bool
	}{
		{
			name: "server applied the move",
			next: func() *Snapshot {
				s := NewSnapshot(1, 2)
				s.Set(from, "red", "1")
				s.Set(to, "red", "9")
				return s
			},
			fromArmy: -1, toArmy: -9, toMine: true,
		},
		{
			name:     "snapshot lags the move",
			next:     func() *Snapshot { return start },
			fromArmy: -10, toArmy: 0, toMine: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(1, 2)
			mustReconcile(t, g, start, 1)
			if !g.CanMove(from, to) {
				t.Fatal("move should be legal")
			}
			g.RecordMove(from, to, false)
			mustReconcile(t, g, tt.next(), 2)

			if got := g.Army(from); got != tt.fromArmy {
				t.Errorf("source army = %d, want %d", got, tt.fromArmy)
			}
			if got := g.Army(to); got != tt.toArmy {
				t.Errorf("target army = %d, want %d", got, tt.toArmy)
			}
			if got := g.Cell(to).Mine; got != tt.toMine {
				t.Errorf("target mine = %v, want %v", got, tt.toMine)
			}
		})
	}
}

func TestCanMove(t *testing.T) {
	g := newTestGrid(1, 4)
	snap := NewSnapshot(1, 4)
	snap.Set(Coord{Row: 0, Col: 0}, "red", "5")
	snap.Set(Coord{Row: 0, Col: 1}, "green", "4")
	snap.Set(Coord{Row: 0, Col: 2}, "green", "3")
	snap.Set(Coord{Row: 0, Col: 3}, "mountain", "")
	mustReconcile(t, g, snap, 1)

	if g.CanMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 1}) {
		t.Error("-5 + 4 = -1 must be blocked")
	}
	if g.CanMove(Coord{Row: 0, Col: 1}, Coord{Row: 0, Col: 0}) {
		t.Error("4 + -5 = -1 must be blocked")
	}
	if !g.CanMove(Coord{Row: 0, Col: 0}, Coord{Row: 0, Col: 2}) {
		t.Error("-5 + 3 = -2 should be allowed")
	}
	if g.CanMove(Coord{Row: 0, Col: 2}, Coord{Row: 0, Col: 3}) {
		t.Error("mountain must be blocked")
	}
}

func TestFindAll_RowMajor(t *testing.T) {
	g := newTestGrid(2, 2)
	snap := NewSnapshot(2, 2)
	snap.Set(Coord{Row: 1, Col: 0}, "red", "2")
	snap.Set(Coord{Row: 0, Col: 1}, "red", "2")
	mustReconcile(t, g, snap, 1)

	mine := g.FindAll(func(_ Coord, c Cell) bool { return c.Mine })
	if len(mine) != 2 || mine[0] != (Coord{Row: 0, Col: 1}) || mine[1] != (Coord{Row: 1, Col: 0}) {
		t.Fatalf("unexpected order: %v", mine)
	}
	first, ok := g.Find(func(_ Coord, c Cell) bool { return c.Mine })
	if !ok || first != mine[0] {
		t.Fatalf("Find should return the first match, got %v", first)
	}
	if _, ok := g.Find(func(_ Coord, c Cell) bool { return c.Type == City }); ok {
		t.Fatal("expected no city")
	}
}
