package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type tokenParser interface {
	Parse(token string) (*entity.Player, error)
}

type playerCtxKey struct{}

// WithPlayer returns a copy of ctx carrying the signed-in player.
func WithPlayer(ctx context.Context, player entity.Player) context.Context {
	return context.WithValue(ctx, playerCtxKey{}, player)
}

// PlayerFromContext returns the player put there by the auth cookie middleware.
func PlayerFromContext(ctx context.Context) (entity.Player, bool) {
	player, ok := ctx.Value(playerCtxKey{}).(entity.Player)
	return player, ok && !player.IsZero()
}

// identify resolves the auth cookie. An invalid or expired token is treated as signed out.
func identify(logger *slog.Logger, tokens tokenParser) func(http.Handler) http.Handler {
	log := logger.With("method", "identify")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(authCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			player, err := tokens.Parse(cookie.Value)
			if err != nil {
				log.Debug("ignoring auth cookie", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), *player)))
		})
	}
}

// requirePlayer stops anonymous requests: page requests go back to the login page, the rest get 401.
func requirePlayer(redirect bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PlayerFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			if redirect {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			http.Error(w, "Unauthorized", http.StatusUnauthorized)
		})
	}
}

func logRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	log := logger.With("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
