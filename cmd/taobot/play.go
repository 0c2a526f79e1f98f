package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/freeeve/taobot/internal/bot"
	"github.com/freeeve/taobot/internal/config"
	"github.com/freeeve/taobot/internal/gio"
	"github.com/freeeve/taobot/internal/handler"
	"github.com/freeeve/taobot/internal/logger"
	"github.com/freeeve/taobot/internal/render"
	"github.com/freeeve/taobot/internal/repository/redis"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join a custom room and play one match",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(v, cfgFile)
		if err != nil {
			return err
		}
		logger.Init(cfg.LogLevel)
		if err := cfg.Validate(); err != nil {
			return err
		}
		return play(cmd.Context(), cfg)
	},
}

func init() {
	flags := playCmd.Flags()
	flags.String("server", "", `game server: "na", "eu" or a websocket URL`)
	flags.String("user-id", "", "generals.io user id")
	flags.String("username", "", "display name")
	flags.String("room", "", "custom game id to join")
	flags.Bool("force-start", true, "vote to force start once joined")
	flags.Duration("interval", 0, "time between decisions")
	flags.String("strategy", "", "strategy: tao, hold or random")
	flags.String("tuning", "", "YAML tuning file for the tao strategy")
	flags.Bool("render", false, "draw the board on stdout every tick")
	flags.String("redis-url", "", "mirror frames to this Redis")
	flags.Int("frame-history", 0, "frames kept per match in Redis")
	flags.String("spectate", "", "serve a live spectator feed on this address")
	bindFlags(flags, map[string]string{
		"server":        "server",
		"user-id":       "user_id",
		"username":      "username",
		"room":          "room",
		"force-start":   "force_start",
		"interval":      "interval",
		"strategy":      "strategy",
		"tuning":        "tuning",
		"render":        "render",
		"redis-url":     "redis_url",
		"frame-history": "frame_history",
		"spectate":      "spectate_addr",
	})
	rootCmd.AddCommand(playCmd)
}

func play(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
			log.Info().Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	tuning := bot.DefaultTuning()
	if cfg.TuningPath != "" {
		t, err := bot.LoadTuning(cfg.TuningPath)
		if err != nil {
			return err
		}
		tuning = t
	}

	var sinks []bot.FrameSink
	if cfg.Render {
		sinks = append(sinks, render.NewBoard(os.Stdout, true))
	}
	if cfg.RedisURL != "" {
		rc, err := redis.NewClient(ctx, cfg.RedisURL, cfg.FrameHistory)
		if err != nil {
			return err
		}
		defer rc.Close()
		sinks = append(sinks, rc)
	}
	if cfg.SpectateAddr != "" {
		hub := handler.NewHub()
		sinks = append(sinks, hub)
		go func() {
			if err := handler.Serve(ctx, cfg.SpectateAddr, hub); err != nil {
				log.Error().Err(err).Msg("Spectator server stopped")
			}
		}()
	}

	client, err := gio.Dial(ctx, cfg.Server)
	if err != nil {
		return err
	}
	adapter := gio.NewAdapter(client, gio.Options{
		UserID:     cfg.UserID,
		Username:   cfg.Username,
		Room:       cfg.Room,
		ForceStart: cfg.ForceStart,
	})
	go func() {
		if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("Connection lost")
		}
	}()
	defer client.Close()

	if err := adapter.Join(); err != nil {
		return err
	}

	strategy := bot.StrategyByName(cfg.Strategy, tuning)
	orch := bot.NewOrchestrator(adapter, strategy, cfg.Interval, tuning, sinks...)
	if err := orch.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	log.Info().Str("outcome", adapter.Outcome()).Msg("Match completed")
	return nil
}
