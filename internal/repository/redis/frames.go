package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/freeeve/taobot/internal/logger"
	"github.com/freeeve/taobot/pkg/generals"
)

// Key patterns for the frame mirror.
func latestKey(matchID string) string { return "match:" + matchID + ":latest" }
func framesKey(matchID string) string { return "match:" + matchID + ":frames" }

// Publish mirrors the grid for the match carried by ctx. It is a
// bot.FrameSink.
func (c *Client) Publish(ctx context.Context, g *generals.Grid) error {
	matchID := logger.MatchFromContext(ctx)
	if matchID == "" {
		return fmt.Errorf("publish frame: no match in context")
	}
	return c.SetFrame(ctx, g.Frame(matchID))
}

// SetFrame stores f as the latest frame of its match and appends it to the
// bounded history.
func (c *Client) SetFrame(ctx context.Context, f *generals.Frame) error {
	data, err := encodeFrame(f)
	if err != nil {
		return err
	}
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, latestKey(f.Match), data, c.ttl)
	if c.history > 0 {
		pipe.RPush(ctx, framesKey(f.Match), data)
		pipe.LTrim(ctx, framesKey(f.Match), -c.history, -1)
		pipe.Expire(ctx, framesKey(f.Match), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set frame: %w", err)
	}
	return nil
}

// LatestFrame returns the most recent frame of a match, nil when none.
func (c *Client) LatestFrame(ctx context.Context, matchID string) (*generals.Frame, error) {
	data, err := c.rdb.Get(ctx, latestKey(matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest frame: %w", err)
	}
	return decodeFrame(data)
}

// Frames returns the kept history of a match, oldest first.
func (c *Client) Frames(ctx context.Context, matchID string) ([]*generals.Frame, error) {
	items, err := c.rdb.LRange(ctx, framesKey(matchID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get frames: %w", err)
	}
	frames := make([]*generals.Frame, 0, len(items))
	for _, item := range items {
		f, err := decodeFrame([]byte(item))
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// DeleteMatch removes every key of a match.
func (c *Client) DeleteMatch(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, latestKey(matchID), framesKey(matchID)).Err()
}
