package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter mounts every browser route. live serves the websocket endpoint.
func NewRouter(logger *slog.Logger, tokens tokenParser, ping PingHandler, auth AuthHandler, game GameHandler, live http.Handler) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(logRequests(logger))
	router.Use(identify(logger, tokens))

	router.Get("/ping", ping.PingHandler)
	router.Get("/", game.Index)

	router.Route("/auth", func(r chi.Router) {
		r.Get("/facebook/login", auth.FacebookLogin)
		r.Get("/facebook/callback", auth.FacebookCallback)
		r.Post("/logout", auth.Logout)
	})

	router.Route("/game", func(r chi.Router) {
		r.With(requirePlayer(true)).Get("/", game.Game)

		r.Group(func(r chi.Router) {
			r.Use(requirePlayer(false))

			r.Get("/state", game.State)
			r.Post("/move", game.Move)
			r.Post("/jump", game.Jump)
			r.Post("/new", game.NewGame)
		})
	})

	router.With(requirePlayer(false)).Handle("/ws", live)

	return router
}

// Start serves handler until ctx is cancelled, then shuts the server down.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
		// no write timeout: /ws connections are long lived
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
