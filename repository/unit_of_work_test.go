package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"fightpool/events"
	"fightpool/models"
	"fightpool/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()

	var mu sync.Mutex
	var received []events.Event
	done := make(chan struct{}, 1)
	eventBus.Subscribe(events.EventTypeRoundStarted, func(ctx context.Context, event events.Event) {
		mu.Lock()
		received = append(received, event)
		mu.Unlock()
		done <- struct{}{}
	})

	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)
	uow := factory.Create()

	require.NoError(t, uow.Begin(ctx))

	round := testutil.NewOpenRound(10 * time.Minute)
	require.NoError(t, uow.RoundRepository().Create(ctx, round))
	uow.EventBus().Publish(events.RoundStartedEvent{
		RoundID:       round.ID,
		StartTime:     round.StartTime,
		BettingEndsAt: round.BettingEndsAt,
	})

	// Nothing reaches subscribers before commit
	mu.Lock()
	assert.Empty(t, received)
	mu.Unlock()

	require.NoError(t, uow.Commit())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered after commit")
	}

	mu.Lock()
	require.Len(t, received, 1)
	assert.Equal(t, round.ID, received[0].(events.RoundStartedEvent).RoundID)
	mu.Unlock()

	// The round is visible outside the transaction
	stored, err := NewRoundRepository(testDB.DB).GetByID(ctx, round.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestUnitOfWork_RollbackDiscards(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	eventBus := events.NewBus()
	delivered := make(chan events.Event, 1)
	eventBus.Subscribe(events.EventTypeRoundStarted, func(ctx context.Context, event events.Event) {
		delivered <- event
	})

	factory := NewUnitOfWorkFactory(testDB.DB, eventBus)
	uow := factory.Create()

	require.NoError(t, uow.Begin(ctx))

	round := testutil.NewOpenRound(10 * time.Minute)
	require.NoError(t, uow.RoundRepository().Create(ctx, round))
	uow.EventBus().Publish(events.RoundStartedEvent{RoundID: round.ID})

	require.NoError(t, uow.Rollback())

	// No row, no event
	stored, err := NewRoundRepository(testDB.DB).GetByID(ctx, round.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)

	select {
	case <-delivered:
		t.Fatal("discarded event was delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnitOfWork_Lifecycle(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	t.Run("repositories panic before Begin", func(t *testing.T) {
		uow := factory.Create()
		assert.Panics(t, func() { uow.RoundRepository() })
		assert.Panics(t, func() { uow.WagerRepository() })
		assert.Panics(t, func() { uow.SettingsRepository() })
	})

	t.Run("double Begin fails", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("commit without Begin fails", func(t *testing.T) {
		uow := factory.Create()
		assert.Error(t, uow.Commit())
	})

	t.Run("rollback without Begin is a no-op", func(t *testing.T) {
		uow := factory.Create()
		assert.NoError(t, uow.Rollback())
	})

	t.Run("transaction scopes repositories together", func(t *testing.T) {
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		round := testutil.NewOpenRound(10 * time.Minute)
		require.NoError(t, uow.RoundRepository().Create(ctx, round))

		wager := testutil.NewWager(round.ID, 100, models.FighterA, 50)
		require.NoError(t, uow.WagerRepository().Create(ctx, wager))

		// Visible inside the transaction
		found, err := uow.WagerRepository().GetByParticipant(ctx, round.ID, 100)
		require.NoError(t, err)
		require.NotNil(t, found)

		require.NoError(t, uow.Commit())
	})
}
