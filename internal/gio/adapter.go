package gio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/pkg/generals"
)

// ErrNotStarted is returned when the board is requested before the first
// game update.
var ErrNotStarted = errors.New("gio: match not started")

// Options identify the bot and the room it plays in.
type Options struct {
	UserID     string
	Username   string
	Room       string // custom game id
	ForceStart bool
}

// Adapter plays one match through a Client. It satisfies bot.Adapter.
type Adapter struct {
	client *Client
	opts   Options

	mu          sync.Mutex
	board       board
	playerIndex int
	chatRoom    string
	replayID    string
	attackIndex int
	outcome     string

	started   chan struct{}
	startOnce sync.Once
	done      chan struct{}
	doneOnce  sync.Once
}

// NewAdapter registers the game event handlers on c. Join must be called
// once c is running.
func NewAdapter(c *Client, opts Options) *Adapter {
	a := &Adapter{
		client:      c,
		opts:        opts,
		playerIndex: -1,
		started:     make(chan struct{}),
		done:        make(chan struct{}),
	}
	c.On("queue_update", a.onQueueUpdate)
	c.On("game_start", a.onGameStart)
	c.On("game_update", a.onGameUpdate)
	c.On("game_won", func([]json.RawMessage) { a.finish("won") })
	c.On("game_lost", func([]json.RawMessage) { a.finish("lost") })
	c.On("chat_message", a.onChat)

	go func() {
		select {
		case <-c.Done():
			a.finish("disconnected")
		case <-a.done:
		}
	}()
	return a
}

// Join names the bot and enters the custom room, voting to force start
// when configured.
func (a *Adapter) Join() error {
	if err := a.client.Emit("set_username", a.opts.UserID, a.opts.Username); err != nil {
		return fmt.Errorf("set username: %w", err)
	}
	if err := a.client.Emit("join_private", a.opts.Room, a.opts.UserID); err != nil {
		return fmt.Errorf("join room %s: %w", a.opts.Room, err)
	}
	if a.opts.ForceStart {
		if err := a.client.Emit("set_force_start", a.opts.Room, true); err != nil {
			return fmt.Errorf("force start: %w", err)
		}
	}
	log.Info().Str("room", a.opts.Room).Str("user", a.opts.Username).Msg("Joined room")
	return nil
}

// Outcome reports how the match ended: "won", "lost", "disconnected", or
// "" while it is running.
func (a *Adapter) Outcome() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.outcome
}

func (a *Adapter) Match(ctx context.Context) (generals.MatchInfo, error) {
	select {
	case <-ctx.Done():
		return generals.MatchInfo{}, ctx.Err()
	case <-a.done:
		return generals.MatchInfo{}, fmt.Errorf("match over before start: %s", a.Outcome())
	case <-a.started:
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.replayID
	if id == "" {
		id = a.opts.Room
	}
	return generals.MatchInfo{
		ID:    id,
		Rows:  a.board.height(),
		Cols:  a.board.width(),
		Color: generals.ColorOf(a.playerIndex),
	}, nil
}

func (a *Adapter) Snapshot(ctx context.Context) (*generals.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.board.ready() {
		return nil, ErrNotStarted
	}
	return a.board.snapshot(), nil
}

// Focus is a no-op: the socket protocol addresses both cells of a move.
func (a *Adapter) Focus(ctx context.Context, c generals.Coord) error { return nil }

func (a *Adapter) Move(ctx context.Context, from, to generals.Coord, half bool) error {
	a.mu.Lock()
	if !a.board.ready() {
		a.mu.Unlock()
		return ErrNotStarted
	}
	a.attackIndex++
	src, dst, idx := a.board.index(from), a.board.index(to), a.attackIndex
	a.mu.Unlock()

	if err := a.client.Emit("attack", src, dst, half, idx); err != nil {
		return fmt.Errorf("attack %v -> %v: %w", from, to, err)
	}
	return nil
}

func (a *Adapter) SendMessage(ctx context.Context, text string) error {
	a.mu.Lock()
	room := a.chatRoom
	a.mu.Unlock()
	if room == "" {
		return ErrNotStarted
	}
	return a.client.Emit("chat_message", room, text)
}

func (a *Adapter) Done() <-chan struct{} { return a.done }

func (a *Adapter) onQueueUpdate(args []json.RawMessage) {
	var q struct {
		NumPlayers  int   `json:"numPlayers"`
		NumForce    []int `json:"numForce"`
		IsForcing   bool  `json:"isForcing"`
		PlayerCount int   `json:"playerCount"`
	}
	if len(args) > 0 {
		json.Unmarshal(args[0], &q)
	}
	log.Debug().Int("players", q.NumPlayers).Int("force", len(q.NumForce)).Msg("Queue update")
}

func (a *Adapter) onGameStart(args []json.RawMessage) {
	var info struct {
		PlayerIndex int      `json:"playerIndex"`
		ReplayID    string   `json:"replay_id"`
		ChatRoom    string   `json:"chat_room"`
		Usernames   []string `json:"usernames"`
	}
	if len(args) == 0 || json.Unmarshal(args[0], &info) != nil {
		log.Warn().Msg("Malformed game_start")
		return
	}
	a.mu.Lock()
	a.playerIndex = info.PlayerIndex
	a.replayID = info.ReplayID
	a.chatRoom = info.ChatRoom
	a.mu.Unlock()
	log.Info().
		Int("playerIndex", info.PlayerIndex).
		Str("replay", info.ReplayID).
		Strs("players", info.Usernames).
		Msg("Game started")
}

func (a *Adapter) onGameUpdate(args []json.RawMessage) {
	var u update
	if len(args) == 0 || json.Unmarshal(args[0], &u) != nil {
		log.Warn().Msg("Malformed game_update")
		return
	}
	a.mu.Lock()
	err := a.board.apply(u)
	ready := err == nil && a.playerIndex >= 0
	a.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Int("turn", u.Turn).Msg("Game update rejected")
		return
	}
	if ready {
		a.startOnce.Do(func() { close(a.started) })
	}
}

func (a *Adapter) onChat(args []json.RawMessage) {
	var msg struct {
		Text     string `json:"text"`
		Username string `json:"username"`
	}
	if len(args) < 2 || json.Unmarshal(args[1], &msg) != nil {
		return
	}
	log.Debug().Str("from", msg.Username).Str("text", msg.Text).Msg("Chat")
}

func (a *Adapter) finish(outcome string) {
	a.doneOnce.Do(func() {
		a.mu.Lock()
		a.outcome = outcome
		a.mu.Unlock()
		log.Info().Str("outcome", outcome).Msg("Match over")
		if outcome != "disconnected" {
			if err := a.client.Emit("leave_game"); err != nil {
				log.Debug().Err(err).Msg("Leave not sent")
			}
		}
		close(a.done)
	})
}
