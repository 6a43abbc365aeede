package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type PlayerUseCase interface {
	Register(ctx context.Context, player *entity.Player) (*entity.Player, error)
}

type playerRepo interface {
	Save(ctx context.Context, player *entity.Player) error
	Find(ctx context.Context, email string) (*entity.Player, error)
}

type playerUseCase struct {
	repo playerRepo
}

func NewPlayerUseCase(repo playerRepo) PlayerUseCase {
	return &playerUseCase{
		repo: repo,
	}
}

// Register stores a first-time player and keeps the stored name in sync with the provider.
// Players without an email are not stored.
func (that *playerUseCase) Register(ctx context.Context, player *entity.Player) (*entity.Player, error) {
	if player.Email == "" {
		return player, nil
	}

	existing, err := that.repo.Find(ctx, player.Email)
	if err != nil && !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("failed to find player in storage: %w", err)
	}

	if err == nil && existing.Name == player.Name {
		return existing, nil
	}

	if err = that.repo.Save(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to save player into storage: %w", err)
	}

	return player, nil
}
