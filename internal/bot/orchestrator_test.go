package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/freeeve/taobot/pkg/generals"
)

type countingSink struct {
	frames []int
}

func (s *countingSink) Publish(_ context.Context, g *generals.Grid) error {
	s.frames = append(s.frames, g.Turn())
	return nil
}

type panicStrategy struct{}

func (panicStrategy) Name() string { return "panic" }

func (panicStrategy) Decide(context.Context, *Commander) (bool, error) {
	panic("boom")
}

func TestOrchestrator_StepBeforeStart(t *testing.T) {
	o := NewOrchestrator(newFakeAdapter("m1"), HoldStrategy{}, time.Millisecond, DefaultTuning())
	if _, err := o.Step(context.Background()); err == nil {
		t.Fatal("expected an error stepping before the match starts")
	}
}

func TestOrchestrator_StepPublishesFrames(t *testing.T) {
	a := newFakeAdapter("G5 _")
	sink := &countingSink{}
	o := NewOrchestrator(a, HoldStrategy{}, time.Millisecond, DefaultTuning(), sink)
	o.Start(a.info)

	for i := 0; i < 3; i++ {
		if _, err := o.Step(context.Background()); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	want := []int{1, 2, 3}
	if len(sink.frames) != len(want) {
		t.Fatalf("got frames %v, want %v", sink.frames, want)
	}
	for i := range want {
		if sink.frames[i] != want[i] {
			t.Fatalf("got frames %v, want %v", sink.frames, want)
		}
	}
	if home, ok := o.Grid().Home(); !ok || home != at(0, 0) {
		t.Fatalf("home = %v, %v", home, ok)
	}
}

func TestOrchestrator_SnapshotErrorIsReported(t *testing.T) {
	a := newFakeAdapter("m1")
	a.snapErr = errors.New("page gone")
	o := NewOrchestrator(a, HoldStrategy{}, time.Millisecond, DefaultTuning())
	o.Start(a.info)

	if _, err := o.Step(context.Background()); err == nil {
		t.Fatal("expected snapshot error")
	}
	// tick swallows it.
	o.tick(context.Background())
}

func TestOrchestrator_TickRecoversPanic(t *testing.T) {
	a := newFakeAdapter("m1")
	o := NewOrchestrator(a, panicStrategy{}, time.Millisecond, DefaultTuning())
	o.Start(a.info)
	o.tick(context.Background())
}

func TestOrchestrator_RunSaysFarewellWhenMatchEnds(t *testing.T) {
	a := newFakeAdapter("G5 _")
	o := NewOrchestrator(a, HoldStrategy{}, time.Millisecond, DefaultTuning())

	errc := make(chan error, 1)
	go func() { errc <- o.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	close(a.done)

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the match ended")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.messages) == 0 || a.messages[len(a.messages)-1] != "ggwp" {
		t.Fatalf("expected farewell, got %v", a.messages)
	}
}

func TestOrchestrator_RunStopsOnCancel(t *testing.T) {
	a := newFakeAdapter("m1")
	o := NewOrchestrator(a, HoldStrategy{}, time.Millisecond, DefaultTuning())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- o.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestOrchestrator_ExploreThenFollowPath(t *testing.T) {
	// The stack explores toward the fog corner and keeps walking the stored
	// path on the next tick once the settled move is reflected in the page.
	first := `
m12 _ .
_   _ .
_   _ .`
	second := `
m1 m11 .
_  _   .
_  _   .`
	a := newFakeAdapter(first, second)
	tuning := DefaultTuning()
	tuning.IdleUntil = 0
	tuning.Greeting = ""
	o := NewOrchestrator(a, NewTaoStrategy(tuning), time.Millisecond, tuning)
	o.Start(a.info)

	for i := 0; i < 2; i++ {
		acted, err := o.Step(context.Background())
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if !acted {
			t.Fatalf("step %d: expected a move", i)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.moves) != 2 {
		t.Fatalf("expected two moves, got %v", a.moves)
	}
	if a.moves[0].From != at(0, 0) || a.moves[0].To != at(0, 1) {
		t.Fatalf("first move %v", a.moves[0])
	}
	if a.moves[1].From != at(0, 1) || a.moves[1].To != at(0, 2) {
		t.Fatalf("second move %v", a.moves[1])
	}
	// The cursor was already on (0,1), so only the first move focused.
	if len(a.focuses) != 1 {
		t.Fatalf("expected one focus, got %v", a.focuses)
	}
}
