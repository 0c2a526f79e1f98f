package bot

import (
	"context"

	"github.com/freeeve/taobot/pkg/generals"
)

// Adapter is the game surface a bot plays through. Implementations
// translate the live game into snapshots and execute commands.
type Adapter interface {
	// Match blocks until the match starts and reports the board size and
	// the local player's color.
	Match(ctx context.Context) (generals.MatchInfo, error)
	// Snapshot returns the board as currently displayed.
	Snapshot(ctx context.Context) (*generals.Snapshot, error)
	// Focus selects a cell on the game surface.
	Focus(ctx context.Context, c generals.Coord) error
	// Move sends the army on from to the adjacent cell to.
	Move(ctx context.Context, from, to generals.Coord, half bool) error
	// SendMessage posts to the match chat.
	SendMessage(ctx context.Context, text string) error
	// Done is closed when the match is over.
	Done() <-chan struct{}
}
