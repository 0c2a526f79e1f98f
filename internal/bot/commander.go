package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/pkg/generals"
)

// ErrHalfMove is returned for half-army moves, which are not supported.
var ErrHalfMove = errors.New("half-army moves are not supported")

// Commander issues commands through an Adapter and keeps the grid's cursor
// and pending move in step with what was dispatched.
type Commander struct {
	grid    *generals.Grid
	adapter Adapter
}

// NewCommander creates a Commander for one match.
func NewCommander(grid *generals.Grid, adapter Adapter) *Commander {
	return &Commander{grid: grid, adapter: adapter}
}

// Grid returns the model the commander acts on.
func (c *Commander) Grid() *generals.Grid { return c.grid }

// Move sends the army on from to the adjacent cell to. It returns false
// without touching the adapter when the combined armies would not leave to
// decisively friendly.
func (c *Commander) Move(ctx context.Context, from, to generals.Coord, half bool) (bool, error) {
	if !c.grid.CanMove(from, to) {
		log.Debug().Stringer("from", from).Stringer("to", to).Bool("half", half).Msg("Move blocked")
		return false, nil
	}
	if half {
		return false, ErrHalfMove
	}
	if _, ok := generals.DirectionBetween(from, to); !ok {
		return false, fmt.Errorf("move %v -> %v: %w", from, to, generals.ErrNotAdjacent)
	}

	if cur, ok := c.grid.Cursor(); !ok || cur != from {
		if err := c.adapter.Focus(ctx, from); err != nil {
			return false, fmt.Errorf("focus %v: %w", from, err)
		}
	}
	if err := c.adapter.Move(ctx, from, to, half); err != nil {
		return false, fmt.Errorf("move %v -> %v: %w", from, to, err)
	}

	c.grid.SetCursor(to)
	c.grid.RecordMove(from, to, half)
	log.Debug().Int("turn", c.grid.Turn()).Stringer("from", from).Stringer("to", to).Msg("Move issued")
	return true, nil
}

// Say posts a chat message. Typing into the chat takes the focus away from
// the board, so the cursor is forgotten.
func (c *Commander) Say(ctx context.Context, text string) error {
	c.grid.ClearCursor()
	if err := c.adapter.SendMessage(ctx, text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
