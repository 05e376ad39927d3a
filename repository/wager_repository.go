package repository

import (
	"context"
	"fmt"

	"fightpool/database"
	"fightpool/models"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements wager data access
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `id, round_id, participant_id, fighter, amount, payout_amount, created_at`

// Create persists a new wager. The unique (round_id, participant_id)
// constraint backs up the one-wager-per-round rule at the database level.
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (round_id, participant_id, fighter, amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.RoundID,
		wager.ParticipantID,
		wager.Fighter,
		wager.Amount,
	).Scan(&wager.ID, &wager.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wager: %w", err)
	}

	return nil
}

// GetByParticipant returns a participant's wager in a round, nil when they
// have not wagered.
func (r *WagerRepository) GetByParticipant(ctx context.Context, roundID, participantID int64) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE round_id = $1 AND participant_id = $2`

	var wager models.Wager
	err := r.q.QueryRow(ctx, query, roundID, participantID).Scan(
		&wager.ID,
		&wager.RoundID,
		&wager.ParticipantID,
		&wager.Fighter,
		&wager.Amount,
		&wager.PayoutAmount,
		&wager.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wager for participant %d: %w", participantID, err)
	}

	return &wager, nil
}

// GetByRound returns every wager in a round in the order they were placed
func (r *WagerRepository) GetByRound(ctx context.Context, roundID int64) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE round_id = $1 ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers for round %d: %w", roundID, err)
	}
	defer rows.Close()

	return scanWagers(rows)
}

// GetByRoundAndFighter returns the wagers backing one fighter in the order
// they were placed.
func (r *WagerRepository) GetByRoundAndFighter(ctx context.Context, roundID int64, fighter models.Fighter) ([]*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE round_id = $1 AND fighter = $2 ORDER BY id ASC`

	rows, err := r.q.Query(ctx, query, roundID, fighter)
	if err != nil {
		return nil, fmt.Errorf("failed to get wagers on fighter %s: %w", fighter, err)
	}
	defer rows.Close()

	return scanWagers(rows)
}

// UpdatePayouts records the settled payout amount on each wager
func (r *WagerRepository) UpdatePayouts(ctx context.Context, wagers []*models.Wager) error {
	query := `UPDATE wagers SET payout_amount = $2 WHERE id = $1`

	for _, wager := range wagers {
		if _, err := r.q.Exec(ctx, query, wager.ID, wager.PayoutAmount); err != nil {
			return fmt.Errorf("failed to update payout for wager %d: %w", wager.ID, err)
		}
	}

	return nil
}

func scanWagers(rows pgx.Rows) ([]*models.Wager, error) {
	var wagers []*models.Wager
	for rows.Next() {
		var wager models.Wager
		err := rows.Scan(
			&wager.ID,
			&wager.RoundID,
			&wager.ParticipantID,
			&wager.Fighter,
			&wager.Amount,
			&wager.PayoutAmount,
			&wager.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, &wager)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}

	return wagers, nil
}
