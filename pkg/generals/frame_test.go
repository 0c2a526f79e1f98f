package generals

import "testing"

func TestGridFrame(t *testing.T) {
	snap := NewSnapshot(2, 3)
	snap.Set(Coord{Row: 0, Col: 0}, "general red", "9")
	snap.Set(Coord{Row: 0, Col: 1}, "red", "2")
	snap.Set(Coord{Row: 1, Col: 2}, "mountain", "")
	g := New(MatchInfo{ID: "m1", Rows: 2, Cols: 3, Color: "red"})
	if err := g.Reconcile(snap, 5); err != nil {
		t.Fatal(err)
	}
	g.SetCursor(Coord{Row: 0, Col: 1})

	f := g.Frame("m1")
	if f.Match != "m1" || f.Turn != 5 || f.Rows != 2 || f.Cols != 3 || f.Color != "red" {
		t.Fatalf("unexpected header %+v", f)
	}
	if f.Home == nil || *f.Home != [2]int{0, 0} {
		t.Errorf("home = %v", f.Home)
	}
	if f.Cursor == nil || *f.Cursor != [2]int{0, 1} {
		t.Errorf("cursor = %v", f.Cursor)
	}
	if len(f.Cells) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(f.Cells))
	}
	if c := f.Cells[0]; c.Type != "general" || c.Army != -10 || !c.Mine {
		t.Errorf("home cell = %+v", c)
	}
	if c := f.Cells[5]; c.Type != "mountain" || c.Army != Infinity {
		t.Errorf("mountain cell = %+v", c)
	}
}

func TestGridFrame_NoHome(t *testing.T) {
	f := New(MatchInfo{Rows: 1, Cols: 1}).Frame("x")
	if f.Home != nil || f.Cursor != nil {
		t.Errorf("fresh grid should have neither home nor cursor: %+v", f)
	}
}
