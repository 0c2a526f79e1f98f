package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/taobot/internal/middleware"
)

// NewRouter wires the spectator routes.
func NewRouter(hub *Hub) http.Handler {
	ws := NewWSHandler(hub)
	frames := NewFrameHandler(hub)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ws", ws.ServeWS)
	mux.HandleFunc("GET /api/v1/matches/{id}/frame", frames.LatestFrame)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "viewers": hub.ConnectionCount()})
	})
	return middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS("*"))
}

// Serve runs the spectator server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, hub *Hub) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(hub),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Spectator server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectator server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
