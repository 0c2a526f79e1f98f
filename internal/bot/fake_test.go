package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/freeeve/taobot/pkg/generals"
)

type fakeMove struct {
	From generals.Coord
	To   generals.Coord
	Half bool
}

// fakeAdapter serves snapshots parsed from text boards and records commands.
type fakeAdapter struct {
	mu       sync.Mutex
	info     generals.MatchInfo
	snaps    []*generals.Snapshot // served in order; the last one repeats
	served   int
	snapErr  error
	moveErr  error
	moves    []fakeMove
	focuses  []generals.Coord
	messages []string
	done     chan struct{}
}

func newFakeAdapter(boards ...string) *fakeAdapter {
	a := &fakeAdapter{done: make(chan struct{})}
	for _, b := range boards {
		a.snaps = append(a.snaps, parseBoard(b))
	}
	if len(a.snaps) > 0 {
		a.info = generals.MatchInfo{ID: "test", Rows: a.snaps[0].Rows, Cols: a.snaps[0].Cols, Color: "red"}
	}
	return a
}

func (a *fakeAdapter) Match(ctx context.Context) (generals.MatchInfo, error) {
	return a.info, nil
}

func (a *fakeAdapter) Snapshot(ctx context.Context) (*generals.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapErr != nil {
		return nil, a.snapErr
	}
	if len(a.snaps) == 0 {
		return nil, errors.New("no snapshots")
	}
	i := a.served
	if i >= len(a.snaps) {
		i = len(a.snaps) - 1
	}
	a.served++
	return a.snaps[i], nil
}

func (a *fakeAdapter) Focus(ctx context.Context, c generals.Coord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.focuses = append(a.focuses, c)
	return nil
}

func (a *fakeAdapter) Move(ctx context.Context, from, to generals.Coord, half bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.moveErr != nil {
		return a.moveErr
	}
	a.moves = append(a.moves, fakeMove{From: from, To: to, Half: half})
	return nil
}

func (a *fakeAdapter) SendMessage(ctx context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, text)
	return nil
}

func (a *fakeAdapter) Done() <-chan struct{} { return a.done }

func (a *fakeAdapter) moveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.moves)
}

// parseBoard reads a board written one row per line, cells separated by
// spaces:
//
//	.    fog             #   mountain      ?   fog obstacle
//	_    empty land      m5  my land (5)   e5  enemy land (5)
//	G5   my general      g5  enemy general
//	C5   my city         c5  neutral city  x5  enemy city
func parseBoard(board string) *generals.Snapshot {
	var rows [][]string
	for _, line := range strings.Split(strings.TrimSpace(board), "\n") {
		if f := strings.Fields(line); len(f) > 0 {
			rows = append(rows, f)
		}
	}
	snap := generals.NewSnapshot(len(rows), len(rows[0]))
	for i, row := range rows {
		for j, tok := range row {
			class, text := "", tok[1:]
			switch tok[0] {
			case '.':
				class = "fog"
			case '#':
				class = "mountain"
			case '?':
				class = "fog obstacle"
			case '_':
				class = ""
			case 'm':
				class = "red"
			case 'e':
				class = "green"
			case 'G':
				class = "general red"
			case 'g':
				class = "general green"
			case 'C':
				class = "city red"
			case 'c':
				class = "city"
			case 'x':
				class = "city green"
			}
			snap.Set(generals.Coord{Row: i, Col: j}, class, text)
		}
	}
	return snap
}

// newTestCommander reconciles board at the given turn and returns a
// commander over a fake adapter.
func newTestCommander(board string, turn int) (*Commander, *fakeAdapter) {
	a := newFakeAdapter(board)
	g := generals.New(a.info)
	snap, _ := a.Snapshot(context.Background())
	if err := g.Reconcile(snap, turn); err != nil {
		panic(err)
	}
	return NewCommander(g, a), a
}
