package bot

import (
	"context"

	"github.com/freeeve/taobot/pkg/generals"
)

// Strategy decides what to do on one tick. Decide issues at most one
// command through the commander and reports whether it did.
type Strategy interface {
	Name() string
	Decide(ctx context.Context, cmd *Commander) (bool, error)
}

// StrategyByName returns the strategy registered under name. Unknown names
// get the tao strategy.
func StrategyByName(name string, tuning Tuning) Strategy {
	switch name {
	case "hold":
		return HoldStrategy{}
	case "random":
		return RandomStrategy{}
	default:
		return NewTaoStrategy(tuning)
	}
}

// --- HoldStrategy ---

// HoldStrategy never moves. Useful as a sparring partner.
type HoldStrategy struct{}

func (HoldStrategy) Name() string { return "hold" }

func (HoldStrategy) Decide(context.Context, *Commander) (bool, error) {
	return false, nil
}

// --- RandomStrategy ---

// RandomStrategy moves a random stack with spare army into a random
// passable neighbor.
type RandomStrategy struct{}

func (RandomStrategy) Name() string { return "random" }

func (RandomStrategy) Decide(ctx context.Context, cmd *Commander) (bool, error) {
	g := cmd.Grid()
	stacks := g.FindAll(func(_ generals.Coord, c generals.Cell) bool {
		return c.Mine && c.Army < -1
	})
	if len(stacks) == 0 {
		return false, nil
	}
	from := stacks[botIntn(len(stacks))]

	var options []generals.Coord
	for _, n := range g.Neighbors(from) {
		if g.Passable(n) && g.CanMove(from, n) {
			options = append(options, n)
		}
	}
	if len(options) == 0 {
		return false, nil
	}
	return cmd.Move(ctx, from, options[botIntn(len(options))], false)
}
