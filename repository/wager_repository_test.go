package repository

import (
	"context"
	"testing"
	"time"

	"fightpool/models"
	"fightpool/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRound(t *testing.T, repo *RoundRepository) *models.Round {
	t.Helper()
	round := testutil.NewOpenRound(10 * time.Minute)
	require.NoError(t, repo.Create(context.Background(), round))
	return round
}

func TestWagerRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	rounds := NewRoundRepository(testDB.DB)
	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	round := createTestRound(t, rounds)

	t.Run("assigns id and created_at", func(t *testing.T) {
		wager := testutil.NewWager(round.ID, 100, models.FighterA, 500)
		err := repo.Create(ctx, wager)

		require.NoError(t, err)
		assert.NotZero(t, wager.ID)
		assert.False(t, wager.CreatedAt.IsZero())
		assert.Nil(t, wager.PayoutAmount)
	})

	t.Run("one wager per participant per round", func(t *testing.T) {
		wager := testutil.NewWager(round.ID, 100, models.FighterB, 200)
		err := repo.Create(ctx, wager)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "one_wager_per_round")
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		wager := testutil.NewWager(round.ID, 200, models.FighterA, 0)
		err := repo.Create(ctx, wager)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive_amount")
	})

	t.Run("rejects an unknown fighter", func(t *testing.T) {
		wager := testutil.NewWager(round.ID, 300, models.Fighter(9), 100)
		err := repo.Create(ctx, wager)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "valid_fighter")
	})
}

func TestWagerRepository_GetByParticipant(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	rounds := NewRoundRepository(testDB.DB)
	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	round := createTestRound(t, rounds)

	t.Run("no wager found", func(t *testing.T) {
		wager, err := repo.GetByParticipant(ctx, round.ID, 100)
		require.NoError(t, err)
		assert.Nil(t, wager)
	})

	t.Run("wager found", func(t *testing.T) {
		original := testutil.NewWager(round.ID, 100, models.FighterA, 750)
		require.NoError(t, repo.Create(ctx, original))

		wager, err := repo.GetByParticipant(ctx, round.ID, 100)
		require.NoError(t, err)
		require.NotNil(t, wager)
		assert.Equal(t, original.ID, wager.ID)
		assert.Equal(t, models.FighterA, wager.Fighter)
		assert.Equal(t, int64(750), wager.Amount)
	})
}

func TestWagerRepository_Ordering(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	rounds := NewRoundRepository(testDB.DB)
	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	round := createTestRound(t, rounds)

	// Interleave fighters so per-fighter order differs from insertion ids
	// only if the query got it wrong
	placements := []struct {
		participantID int64
		fighter       models.Fighter
		amount        int64
	}{
		{300, models.FighterA, 10},
		{100, models.FighterB, 20},
		{200, models.FighterA, 30},
		{400, models.FighterB, 40},
		{500, models.FighterA, 50},
	}
	for _, p := range placements {
		wager := testutil.NewWager(round.ID, p.participantID, p.fighter, p.amount)
		require.NoError(t, repo.Create(ctx, wager))
	}

	t.Run("round wagers come back in placement order", func(t *testing.T) {
		wagers, err := repo.GetByRound(ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, wagers, 5)

		var order []int64
		for _, w := range wagers {
			order = append(order, w.ParticipantID)
		}
		assert.Equal(t, []int64{300, 100, 200, 400, 500}, order)
	})

	t.Run("per-fighter wagers keep placement order", func(t *testing.T) {
		wagers, err := repo.GetByRoundAndFighter(ctx, round.ID, models.FighterA)
		require.NoError(t, err)
		require.Len(t, wagers, 3)

		var order []int64
		for _, w := range wagers {
			order = append(order, w.ParticipantID)
		}
		assert.Equal(t, []int64{300, 200, 500}, order)
	})

	t.Run("empty fighter side", func(t *testing.T) {
		other := createTestRoundAfterSettling(t, rounds, round)

		wagers, err := repo.GetByRoundAndFighter(ctx, other.ID, models.FighterB)
		require.NoError(t, err)
		assert.Empty(t, wagers)
	})
}

func TestWagerRepository_UpdatePayouts(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	rounds := NewRoundRepository(testDB.DB)
	repo := NewWagerRepository(testDB.DB)
	ctx := context.Background()

	round := createTestRound(t, rounds)

	first := testutil.NewWager(round.ID, 100, models.FighterA, 100)
	second := testutil.NewWager(round.ID, 200, models.FighterB, 300)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	winnings := int64(400)
	zero := int64(0)
	first.PayoutAmount = &winnings
	second.PayoutAmount = &zero
	require.NoError(t, repo.UpdatePayouts(ctx, []*models.Wager{first, second}))

	stored, err := repo.GetByRound(ctx, round.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.NotNil(t, stored[0].PayoutAmount)
	assert.Equal(t, int64(400), *stored[0].PayoutAmount)
	require.NotNil(t, stored[1].PayoutAmount)
	assert.Equal(t, int64(0), *stored[1].PayoutAmount)
}

// createTestRoundAfterSettling settles the given round so a new open round
// can be created under the single-open-round index.
func createTestRoundAfterSettling(t *testing.T, repo *RoundRepository, open *models.Round) *models.Round {
	t.Helper()
	ctx := context.Background()

	require.True(t, open.Settle(models.FighterA, time.Now()))
	require.NoError(t, repo.Update(ctx, open))

	return createTestRound(t, repo)
}
