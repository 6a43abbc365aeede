package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
)

type PlayerRepository interface {
	Save(ctx context.Context, player *entity.Player) error
	Find(ctx context.Context, email string) (*entity.Player, error)
}

type playerRepository struct {
	conn *sql.DB
}

func NewPlayerRepository(conn *sql.DB) PlayerRepository {
	return &playerRepository{
		conn: conn,
	}
}

// Save registers the player or refreshes the name of a known email.
func (that *playerRepository) Save(ctx context.Context, player *entity.Player) error {
	query := `INSERT INTO players (email, name) VALUES (?, ?)
		ON CONFLICT(email) DO UPDATE SET name = excluded.name`

	_, err := that.conn.ExecContext(ctx, query, player.Email, player.Name)
	if err != nil {
		return fmt.Errorf("can't save player: %w", err)
	}

	return nil
}

func (that *playerRepository) Find(ctx context.Context, email string) (*entity.Player, error) {
	query := `SELECT email, name FROM players WHERE email = ?`

	var player entity.Player

	err := that.conn.QueryRowContext(ctx, query, email).Scan(&player.Email, &player.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find player: %w", err)
	}

	return &player, nil
}
