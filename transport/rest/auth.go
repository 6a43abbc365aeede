package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type AuthHandler interface {
	FacebookLogin(w http.ResponseWriter, r *http.Request)
	FacebookCallback(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type identityProvider interface {
	AuthCodeURL(state string) string
	Identify(ctx context.Context, code string) (*entity.Player, error)
}

type tokenGenerator interface {
	Generate(player entity.Player) (string, error)
	TTL() time.Duration
}

type playerUseCase interface {
	Register(ctx context.Context, player *entity.Player) (*entity.Player, error)
}

type sessionEnder interface {
	EndSession(ctx context.Context, sessionID string) error
}

type authHandler struct {
	logger *slog.Logger

	provider identityProvider
	tokens   tokenGenerator
	players  playerUseCase
	sessions sessionEnder

	secureCookies bool
}

func NewAuth(
	logger *slog.Logger,
	provider identityProvider,
	tokens tokenGenerator,
	players playerUseCase,
	sessions sessionEnder,
	secureCookies bool,
) AuthHandler {
	return &authHandler{
		logger: logger.With("component", "auth_handler"),

		provider: provider,
		tokens:   tokens,
		players:  players,
		sessions: sessions,

		secureCookies: secureCookies,
	}
}

func (that *authHandler) FacebookLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()

	setCookie(w, stateCookieName, state, "/auth", stateCookieTTL, that.secureCookies)

	http.Redirect(w, r, that.provider.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (that *authHandler) FacebookCallback(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "FacebookCallback")
	ctx := r.Context()

	query := r.URL.Query()

	// the player declined the consent screen
	if reason := query.Get("error"); reason != "" {
		log.Info("login cancelled", "reason", reason)
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != query.Get("state") {
		log.Error("invalid OAuth state", "error", apperror.ErrInvalidOAuthState)
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	clearCookie(w, stateCookieName, "/auth")

	code := query.Get("code")
	if code == "" {
		http.Error(w, "Code not found in request", http.StatusBadRequest)
		return
	}

	player, err := that.provider.Identify(ctx, code)
	if errors.Is(err, apperror.ErrIncompleteIdentity) {
		log.Warn("facebook profile has no name or email", "error", err)
		http.Error(w, "Facebook did not share a name or email", http.StatusBadRequest)
		return
	}

	if err != nil {
		log.Error("failed to identify player", "error", err)
		http.Error(w, "Failed to sign in with Facebook", http.StatusBadGateway)
		return
	}

	player, err = that.players.Register(ctx, player)
	if err != nil {
		log.Error("failed to register player", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := that.tokens.Generate(*player)
	if err != nil {
		log.Error("failed to generate auth token", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setCookie(w, authCookieName, token, "/", that.tokens.TTL(), that.secureCookies)

	log.Info("player signed in", "player", player.DisplayName())

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func (that *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "Logout")

	if err := that.sessions.EndSession(r.Context(), SessionID(r)); err != nil {
		log.Error("failed to end session", "error", err)
	}

	clearCookie(w, authCookieName, "/")
	clearCookie(w, sessionCookieName, "/")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
