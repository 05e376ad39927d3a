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

func TestRoundRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	t.Run("assigns id and created_at", func(t *testing.T) {
		round := testutil.NewOpenRound(10 * time.Minute)
		err := repo.Create(ctx, round)

		require.NoError(t, err)
		assert.NotZero(t, round.ID)
		assert.False(t, round.CreatedAt.IsZero())
	})

	t.Run("ids are monotonic", func(t *testing.T) {
		first := testutil.NewOpenRound(time.Minute)
		first.Status = models.RoundStatusSettled
		first.Winner = models.FighterA
		require.NoError(t, repo.Create(ctx, first))

		second := testutil.NewOpenRound(time.Minute)
		second.Status = models.RoundStatusSettled
		second.Winner = models.FighterB
		require.NoError(t, repo.Create(ctx, second))

		assert.Greater(t, second.ID, first.ID)
	})

	t.Run("rejects a second open round", func(t *testing.T) {
		// The first subtest left an open round behind
		round := testutil.NewOpenRound(time.Minute)
		err := repo.Create(ctx, round)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "idx_rounds_single_open")
	})
}

func TestRoundRepository_GetCurrent(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no open round", func(t *testing.T) {
		round, err := repo.GetCurrent(ctx)
		require.NoError(t, err)
		assert.Nil(t, round)
	})

	t.Run("settled rounds are not current", func(t *testing.T) {
		settled := testutil.NewOpenRound(time.Minute)
		settled.Status = models.RoundStatusSettled
		settled.Winner = models.FighterA
		require.NoError(t, repo.Create(ctx, settled))

		round, err := repo.GetCurrent(ctx)
		require.NoError(t, err)
		assert.Nil(t, round)
	})

	t.Run("returns the open round", func(t *testing.T) {
		open := testutil.NewOpenRound(10 * time.Minute)
		require.NoError(t, repo.Create(ctx, open))

		round, err := repo.GetCurrent(ctx)
		require.NoError(t, err)
		require.NotNil(t, round)
		assert.Equal(t, open.ID, round.ID)
		assert.True(t, round.IsOpen())
	})
}

func TestRoundRepository_GetLatest(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	t.Run("no rounds exist", func(t *testing.T) {
		round, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		assert.Nil(t, round)
	})

	t.Run("settled rounds still count", func(t *testing.T) {
		settled := testutil.NewOpenRound(time.Minute)
		settled.Status = models.RoundStatusSettled
		settled.Winner = models.FighterB
		require.NoError(t, repo.Create(ctx, settled))

		latest, err := repo.GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, settled.ID, latest.ID)
		assert.Equal(t, models.FighterB, latest.Winner)
	})
}

func TestRoundRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRoundRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists totals and settlement", func(t *testing.T) {
		round := testutil.NewOpenRound(10 * time.Minute)
		require.NoError(t, repo.Create(ctx, round))

		round.RecordWager(models.FighterA, 100)
		round.RecordWager(models.FighterB, 300)
		require.NoError(t, repo.Update(ctx, round))

		stored, err := repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(400), stored.TotalWagered)
		assert.Equal(t, int64(100), stored.TotalOnA)
		assert.Equal(t, int64(300), stored.TotalOnB)

		require.True(t, round.Settle(models.FighterB, time.Now()))
		require.NoError(t, repo.Update(ctx, round))

		stored, err = repo.GetByID(ctx, round.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsSettled())
		assert.Equal(t, models.FighterB, stored.Winner)
		require.NotNil(t, stored.SettledAt)
	})

	t.Run("settled rounds are immutable", func(t *testing.T) {
		round := testutil.NewOpenRound(time.Minute)
		round.Status = models.RoundStatusSettled
		round.Winner = models.FighterA
		require.NoError(t, repo.Create(ctx, round))

		round.Winner = models.FighterB
		err := repo.Update(ctx, round)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already settled")
	})

	t.Run("unknown round", func(t *testing.T) {
		round := testutil.NewOpenRound(time.Minute)
		round.ID = 999999
		err := repo.Update(ctx, round)
		assert.Error(t, err)
	})
}
