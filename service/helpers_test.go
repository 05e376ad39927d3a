package service

import (
	"context"
	"time"

	"fightpool/config"
	"fightpool/models"

	"github.com/stretchr/testify/mock"
)

// Test utilities shared across the service tests.

type serviceMocks struct {
	Factory      *MockUnitOfWorkFactory
	UoW          *MockUnitOfWork
	RoundRepo    *MockRoundRepository
	WagerRepo    *MockWagerRepository
	SettingsRepo *MockSettingsRepository
	Custodian    *MockCustodian
	Oracle       *MockAuthorizationOracle
	Bus          *RecordingEventPublisher
}

func newServiceMocks() *serviceMocks {
	m := &serviceMocks{
		Factory:      new(MockUnitOfWorkFactory),
		UoW:          new(MockUnitOfWork),
		RoundRepo:    new(MockRoundRepository),
		WagerRepo:    new(MockWagerRepository),
		SettingsRepo: new(MockSettingsRepository),
		Custodian:    new(MockCustodian),
		Oracle:       new(MockAuthorizationOracle),
		Bus:          &RecordingEventPublisher{},
	}
	m.UoW.SetRepositories(m.RoundRepo, m.WagerRepo, m.SettingsRepo, m.Bus)
	m.Factory.On("Create").Return(m.UoW)
	return m
}

func (m *serviceMocks) expectTransaction() {
	m.UoW.On("Begin", mock.Anything).Return(nil)
	m.UoW.On("Commit").Return(nil)
	m.UoW.On("Rollback").Return(nil)
}

func (m *serviceMocks) expectOwner(principal int64) {
	m.Oracle.On("IsOwner", mock.Anything, principal).Return(true, nil)
}

func (m *serviceMocks) expectAdmin(principal int64) {
	m.Oracle.On("IsOwner", mock.Anything, principal).Return(false, nil)
	m.Oracle.On("IsAdmin", mock.Anything, principal).Return(true, nil)
}

func (m *serviceMocks) expectStranger(principal int64) {
	m.Oracle.On("IsOwner", mock.Anything, principal).Return(false, nil)
	m.Oracle.On("IsAdmin", mock.Anything, principal).Return(false, nil)
}

// testConfig uses an identity amount scale so test figures read exactly as
// the ledger stores them.
func testConfig() *config.Config {
	return &config.Config{
		BettingWindow: 600 * time.Second,
		AmountScale:   1,
		Environment:   "test",
	}
}

func openTestRound(id int64, window time.Duration) *models.Round {
	now := time.Now()
	return &models.Round{
		ID:            id,
		Status:        models.RoundStatusOpen,
		StartTime:     now,
		BettingEndsAt: now.Add(window),
	}
}

func testWager(id, roundID, participantID int64, fighter models.Fighter, amount int64) *models.Wager {
	return &models.Wager{
		ID:            id,
		RoundID:       roundID,
		ParticipantID: participantID,
		Fighter:       fighter,
		Amount:        amount,
	}
}

var testCtx = context.Background()
