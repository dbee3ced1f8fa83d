package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rekapbot/database"
	"rekapbot/models"

	"github.com/jackc/pgx/v5"
)

const gameColumns = `
	id, chat_id, team_k, team_b, status, winner, fee_percentage, message_id,
	created_at, updated_at`

// GameRepository implements the service.GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

func scanGame(row pgx.Row) (*models.Game, error) {
	var (
		game   models.Game
		teamK  []byte
		teamB  []byte
		winner *string
	)
	err := row.Scan(
		&game.ID,
		&game.ChatID,
		&teamK,
		&teamB,
		&game.Status,
		&winner,
		&game.FeePercentage,
		&game.MessageID,
		&game.CreatedAt,
		&game.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(teamK, &game.TeamK); err != nil {
		return nil, fmt.Errorf("malformed team K roster: %w", err)
	}
	if err := json.Unmarshal(teamB, &game.TeamB); err != nil {
		return nil, fmt.Errorf("malformed team B roster: %w", err)
	}
	if winner != nil {
		w := models.Team(*winner)
		game.Winner = &w
	}
	return &game, nil
}

// GetOngoingByChat returns the ongoing game for a chat, or nil
func (r *GameRepository) GetOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE chat_id = $1 AND status = 'ongoing'`

	game, err := scanGame(r.q.QueryRow(ctx, query, chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to get ongoing game for chat %d: %w", chatID, err)
	}
	return game, nil
}

// LockOngoingByChat returns the ongoing game for a chat with its row locked
// until the surrounding transaction ends, or nil
func (r *GameRepository) LockOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error) {
	query := `SELECT` + gameColumns + ` FROM games WHERE chat_id = $1 AND status = 'ongoing' FOR UPDATE`

	game, err := scanGame(r.q.QueryRow(ctx, query, chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to lock ongoing game for chat %d: %w", chatID, err)
	}
	return game, nil
}

// UpsertOngoing replaces the rosters and message ID of the chat's ongoing
// game, creating it if absent. The partial unique index on ongoing games
// keeps this to a single row per chat.
func (r *GameRepository) UpsertOngoing(ctx context.Context, game *models.Game) error {
	teamK, err := json.Marshal(game.TeamK)
	if err != nil {
		return fmt.Errorf("failed to marshal team K roster: %w", err)
	}
	teamB, err := json.Marshal(game.TeamB)
	if err != nil {
		return fmt.Errorf("failed to marshal team B roster: %w", err)
	}

	query := `
		INSERT INTO games (chat_id, team_k, team_b, status, message_id)
		VALUES ($1, $2, $3, 'ongoing', $4)
		ON CONFLICT (chat_id) WHERE status = 'ongoing'
		DO UPDATE SET team_k = EXCLUDED.team_k, team_b = EXCLUDED.team_b,
			message_id = EXCLUDED.message_id, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = r.q.QueryRow(ctx, query, game.ChatID, teamK, teamB, game.MessageID).
		Scan(&game.ID, &game.CreatedAt, &game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ongoing game for chat %d: %w", game.ChatID, err)
	}
	game.Status = models.GameStatusOngoing
	return nil
}

// Update persists status, winner and fee of an existing game
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	var winner *string
	if game.Winner != nil {
		w := string(*game.Winner)
		winner = &w
	}

	query := `
		UPDATE games
		SET status = $1, winner = $2, fee_percentage = $3, updated_at = NOW()
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query, game.Status, winner, game.FeePercentage, game.ID)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", game.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found", game.ID)
	}
	return nil
}

// DeleteOngoingByChat removes the chat's ongoing game and returns it, or nil
func (r *GameRepository) DeleteOngoingByChat(ctx context.Context, chatID int64) (*models.Game, error) {
	query := `
		DELETE FROM games
		WHERE chat_id = $1 AND status = 'ongoing'
		RETURNING` + gameColumns + `
	`

	game, err := scanGame(r.q.QueryRow(ctx, query, chatID))
	if err != nil {
		return nil, fmt.Errorf("failed to delete ongoing game for chat %d: %w", chatID, err)
	}
	return game, nil
}
