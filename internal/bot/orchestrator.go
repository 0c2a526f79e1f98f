package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/freeeve/taobot/internal/logger"
	"github.com/freeeve/taobot/pkg/generals"
)

// FrameSink receives the model after every reconciliation. Sinks only read
// the grid.
type FrameSink interface {
	Publish(ctx context.Context, g *generals.Grid) error
}

// Orchestrator drives one bot through a match: it waits for the start,
// then reconciles and decides on every tick until the match ends.
type Orchestrator struct {
	adapter  Adapter
	strategy Strategy
	interval time.Duration
	tuning   Tuning
	sinks    []FrameSink

	grid *generals.Grid
	cmd  *Commander
	turn int
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(adapter Adapter, strategy Strategy, interval time.Duration, tuning Tuning, sinks ...FrameSink) *Orchestrator {
	return &Orchestrator{
		adapter:  adapter,
		strategy: strategy,
		interval: interval,
		tuning:   tuning,
		sinks:    sinks,
	}
}

// Grid returns the match model, nil before the match starts.
func (o *Orchestrator) Grid() *generals.Grid { return o.grid }

// Run plays one match. It returns nil when the match ends and ctx.Err()
// when cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	info, err := o.adapter.Match(ctx)
	if err != nil {
		return fmt.Errorf("wait for match: %w", err)
	}
	ctx = logger.WithMatch(ctx, info.ID)
	l := logger.ForMatch(ctx)

	o.Start(info)
	l.Info().
		Int("rows", info.Rows).
		Int("cols", info.Cols).
		Str("color", info.Color).
		Str("strategy", o.strategy.Name()).
		Dur("interval", o.interval).
		Msg("Match started")

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Info().Msg("Context cancelled, stopping bot")
			return ctx.Err()
		case <-o.adapter.Done():
			l.Info().Int("turn", o.turn).Msg("Match ended")
			if o.tuning.Farewell != "" {
				if err := o.cmd.Say(ctx, o.tuning.Farewell); err != nil {
					l.Debug().Err(err).Msg("Farewell not sent")
				}
			}
			return nil
		case <-ticker.C:
			o.tick(ctx)
		}
	}
}

// tick runs one Step and swallows its failure, so one bad tick never stops
// the bot. The next tick starts again from a fresh snapshot.
func (o *Orchestrator) tick(ctx context.Context) {
	l := logger.ForMatch(ctx)
	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Int("turn", o.turn).Msg("Tick panicked")
		}
	}()
	if _, err := o.Step(ctx); err != nil {
		l.Warn().Err(err).Int("turn", o.turn).Msg("Tick failed, continuing")
	}
}

// Step advances the bot by one turn: snapshot, reconcile, publish, decide.
// It reports whether a command was issued.
func (o *Orchestrator) Step(ctx context.Context) (bool, error) {
	if o.grid == nil {
		return false, fmt.Errorf("step before match start")
	}
	o.turn++

	snap, err := o.adapter.Snapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("snapshot: %w", err)
	}
	if err := o.grid.Reconcile(snap, o.turn); err != nil {
		return false, fmt.Errorf("reconcile: %w", err)
	}

	l := logger.ForMatch(ctx)
	for _, s := range o.sinks {
		if err := s.Publish(ctx, o.grid); err != nil {
			l.Debug().Err(err).Msg("Frame publish failed")
		}
	}

	acted, err := o.strategy.Decide(ctx, o.cmd)
	if err != nil {
		return false, fmt.Errorf("decide: %w", err)
	}
	return acted, nil
}

// Start prepares the orchestrator for manual stepping with an already known
// match, bypassing Run's wait.
func (o *Orchestrator) Start(info generals.MatchInfo) {
	o.grid = generals.New(info)
	o.cmd = NewCommander(o.grid, o.adapter)
	o.turn = 0
}
