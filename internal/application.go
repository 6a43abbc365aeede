package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-web/internal/auth"
	"github.com/rocketscienceinc/tictactoe-web/internal/config"
	"github.com/rocketscienceinc/tictactoe-web/internal/highscore"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository"
	"github.com/rocketscienceinc/tictactoe-web/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-web/transport/rest"
	"github.com/rocketscienceinc/tictactoe-web/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	sessionRepo := repository.NewSessionRepository(redisStorage, conf.Redis.SessionTTL)
	playerRepo := repository.NewPlayerRepository(sqliteStorage.Connection)

	scoreClient := highscore.NewClient(conf.HighScores.URL, highscore.WithTimeout(conf.HighScores.Timeout))
	scoreReporter := highscore.NewReporter(logger, scoreClient, conf.HighScores.GameKey, conf.HighScores.Timeout)
	defer scoreReporter.Wait()

	gameManager := usecase.NewGameManager(logger, sessionRepo, scoreClient, scoreReporter, conf.HighScores.GameKey)
	playerUseCase := usecase.NewPlayerUseCase(playerRepo)

	tokens := auth.NewTokenService(conf.JWTSecretKey)
	facebook := auth.NewFacebook(conf.FacebookOAuth)

	router := rest.NewRouter(
		logger,
		tokens,
		rest.NewPingHandler(logger, map[string]rest.HealthCheck{
			"redis":  func(ctx context.Context) error { return redisStorage.Ping(ctx).Err() },
			"sqlite": sqliteStorage.Connection.PingContext,
		}),
		rest.NewAuth(logger, facebook, tokens, playerUseCase, gameManager, conf.SecureCookies),
		rest.NewGameHandler(logger, gameManager, conf.SecureCookies),
		websocket.New(logger, gameManager, conf.SecureCookies),
	)

	log.Info("Starting HTTP server", "port", conf.HTTPPort)

	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}
