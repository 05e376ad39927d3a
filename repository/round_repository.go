package repository

import (
	"context"
	"fmt"

	"fightpool/database"
	"fightpool/models"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements round data access
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

const roundColumns = `id, status, start_time, betting_ends_at, total_wagered, total_on_a, total_on_b, winner, created_at, settled_at`

// Create persists a new round; the serial id keeps round ids monotonic and
// never reused.
func (r *RoundRepository) Create(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (status, start_time, betting_ends_at, total_wagered, total_on_a, total_on_b, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		round.Status,
		round.StartTime,
		round.BettingEndsAt,
		round.TotalWagered,
		round.TotalOnA,
		round.TotalOnB,
		round.Winner,
	).Scan(&round.ID, &round.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}

	return nil
}

// GetByID retrieves a round by its id
func (r *RoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	return r.scanRound(r.q.QueryRow(ctx, query, id), fmt.Sprintf("round %d", id))
}

// GetCurrent returns the open round, nil when no round is open
func (r *RoundRepository) GetCurrent(ctx context.Context) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'open' ORDER BY id DESC LIMIT 1`
	return r.scanRound(r.q.QueryRow(ctx, query), "current round")
}

// GetLatest returns the newest round regardless of state
func (r *RoundRepository) GetLatest(ctx context.Context) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds ORDER BY id DESC LIMIT 1`
	return r.scanRound(r.q.QueryRow(ctx, query), "latest round")
}

// Update persists a round's mutable fields. Settled rounds are immutable at
// the database level as well: the predicate refuses to touch them twice.
func (r *RoundRepository) Update(ctx context.Context, round *models.Round) error {
	query := `
		UPDATE rounds
		SET status = $2,
		    betting_ends_at = $3,
		    total_wagered = $4,
		    total_on_a = $5,
		    total_on_b = $6,
		    winner = $7,
		    settled_at = $8
		WHERE id = $1 AND status != 'settled'
	`

	tag, err := r.q.Exec(ctx, query,
		round.ID,
		round.Status,
		round.BettingEndsAt,
		round.TotalWagered,
		round.TotalOnA,
		round.TotalOnB,
		round.Winner,
		round.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update round %d: %w", round.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("round %d not found or already settled", round.ID)
	}

	return nil
}

func (r *RoundRepository) scanRound(row pgx.Row, what string) (*models.Round, error) {
	var round models.Round
	err := row.Scan(
		&round.ID,
		&round.Status,
		&round.StartTime,
		&round.BettingEndsAt,
		&round.TotalWagered,
		&round.TotalOnA,
		&round.TotalOnB,
		&round.Winner,
		&round.CreatedAt,
		&round.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &round, nil
}
