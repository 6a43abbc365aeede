package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

type GameHandler interface {
	Index(w http.ResponseWriter, r *http.Request)
	Game(w http.ResponseWriter, r *http.Request)
	State(w http.ResponseWriter, r *http.Request)
	Move(w http.ResponseWriter, r *http.Request)
	Jump(w http.ResponseWriter, r *http.Request)
	NewGame(w http.ResponseWriter, r *http.Request)
}

type gameManager interface {
	GetOrStart(ctx context.Context, sessionID string, player entity.Player) (*usecase.GameView, error)
	Move(ctx context.Context, sessionID string, player entity.Player, cell int) (*usecase.GameView, error)
	Jump(ctx context.Context, sessionID string, player entity.Player, step int) (*usecase.GameView, error)
	NewGame(ctx context.Context, sessionID string, player entity.Player) (*usecase.GameView, error)
}

type gameHandler struct {
	logger *slog.Logger
	games  gameManager
	pages  *templates

	secureCookies bool
}

func NewGameHandler(logger *slog.Logger, games gameManager, secureCookies bool) GameHandler {
	return &gameHandler{
		logger: logger.With("component", "game_handler"),
		games:  games,
		pages:  loadTemplates(),

		secureCookies: secureCookies,
	}
}

func (that *gameHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := PlayerFromContext(r.Context()); ok {
		http.Redirect(w, r, "/game", http.StatusSeeOther)
		return
	}

	that.render(w, that.pages.login, nil)
}

func (that *gameHandler) Game(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFromContext(r.Context())

	view, err := that.games.GetOrStart(r.Context(), SessionID(r), player)
	if err != nil {
		that.fail(w, r, "Game", err)
		return
	}

	SetSessionCookie(w, view.SessionID, that.secureCookies)

	that.render(w, that.pages.game, newGamePage(view))
}

func (that *gameHandler) State(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFromContext(r.Context())

	view, err := that.games.GetOrStart(r.Context(), SessionID(r), player)
	if err != nil {
		that.fail(w, r, "State", err)
		return
	}

	SetSessionCookie(w, view.SessionID, that.secureCookies)

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(view); err != nil {
		that.logger.Error("failed to encode game state", "method", "State", "error", err)
	}
}

func (that *gameHandler) Move(w http.ResponseWriter, r *http.Request) {
	cell, err := formInt(r, "cell")
	if err != nil {
		http.Error(w, "cell must be a number", http.StatusBadRequest)
		return
	}

	player, _ := PlayerFromContext(r.Context())

	view, err := that.games.Move(r.Context(), SessionID(r), player, cell)
	that.afterAction(w, r, "Move", view, err)
}

func (that *gameHandler) Jump(w http.ResponseWriter, r *http.Request) {
	step, err := formInt(r, "step")
	if err != nil {
		http.Error(w, "step must be a number", http.StatusBadRequest)
		return
	}

	player, _ := PlayerFromContext(r.Context())

	view, err := that.games.Jump(r.Context(), SessionID(r), player, step)
	that.afterAction(w, r, "Jump", view, err)
}

func (that *gameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	player, _ := PlayerFromContext(r.Context())

	view, err := that.games.NewGame(r.Context(), SessionID(r), player)
	that.afterAction(w, r, "NewGame", view, err)
}

// afterAction redirects back to the board so a reload never repeats the action.
func (that *gameHandler) afterAction(w http.ResponseWriter, r *http.Request, method string, view *usecase.GameView, err error) {
	if err != nil {
		that.fail(w, r, method, err)
		return
	}

	SetSessionCookie(w, view.SessionID, that.secureCookies)

	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func (that *gameHandler) fail(w http.ResponseWriter, r *http.Request, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, apperror.ErrUnauthenticated):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (that *gameHandler) render(w http.ResponseWriter, page pageTemplate, data any) {
	body, err := page.render(data)
	if err != nil {
		that.logger.Error("failed to render page", "method", "render", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func formInt(r *http.Request, key string) (int, error) {
	return strconv.Atoi(r.FormValue(key))
}
