package highscore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type scorePoster interface {
	PostScore(ctx context.Context, gameKey, player string, timestampMillis int64) error
}

// Reporter posts wins in the background. Failures are logged and dropped.
type Reporter struct {
	logger  *slog.Logger
	client  scorePoster
	gameKey string
	timeout time.Duration

	wg sync.WaitGroup
}

func NewReporter(logger *slog.Logger, client scorePoster, gameKey string, timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Reporter{
		logger:  logger.With("component", "highscore"),
		client:  client,
		gameKey: gameKey,
		timeout: timeout,
	}
}

func (that *Reporter) PostScore(player string, timestampMillis int64) {
	that.wg.Add(1)

	go func() {
		defer that.wg.Done()

		log := that.logger.With("method", "PostScore", "player", player)

		ctx, cancel := context.WithTimeout(context.Background(), that.timeout)
		defer cancel()

		if err := that.client.PostScore(ctx, that.gameKey, player, timestampMillis); err != nil {
			log.Error("failed to post score", "error", err)
			return
		}

		log.Info("score posted", "score", timestampMillis)
	}()
}

// Wait blocks until every pending post has finished.
func (that *Reporter) Wait() {
	that.wg.Wait()
}
