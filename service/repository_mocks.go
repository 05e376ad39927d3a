package service

import (
	"context"

	"fightpool/events"
	"fightpool/models"

	"github.com/stretchr/testify/mock"
)

// MockRoundRepository is a mock implementation of RoundRepository
type MockRoundRepository struct {
	mock.Mock
}

func (m *MockRoundRepository) Create(ctx context.Context, round *models.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

func (m *MockRoundRepository) GetByID(ctx context.Context, id int64) (*models.Round, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetCurrent(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) GetLatest(ctx context.Context) (*models.Round, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Round), args.Error(1)
}

func (m *MockRoundRepository) Update(ctx context.Context, round *models.Round) error {
	args := m.Called(ctx, round)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByParticipant(ctx context.Context, roundID, participantID int64) (*models.Wager, error) {
	args := m.Called(ctx, roundID, participantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByRound(ctx context.Context, roundID int64) ([]*models.Wager, error) {
	args := m.Called(ctx, roundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByRoundAndFighter(ctx context.Context, roundID int64, fighter models.Fighter) ([]*models.Wager, error) {
	args := m.Called(ctx, roundID, fighter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) UpdatePayouts(ctx context.Context, wagers []*models.Wager) error {
	args := m.Called(ctx, wagers)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.PoolSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PoolSettings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings *models.PoolSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockCustodian is a mock implementation of the external custodian
type MockCustodian struct {
	mock.Mock
}

func (m *MockCustodian) Debit(ctx context.Context, from int64, amount int64) error {
	args := m.Called(ctx, from, amount)
	return args.Error(0)
}

func (m *MockCustodian) Credit(ctx context.Context, to int64, amount int64) error {
	args := m.Called(ctx, to, amount)
	return args.Error(0)
}

func (m *MockCustodian) BalanceOf(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustodian) AllowanceOf(ctx context.Context, from int64) (int64, error) {
	args := m.Called(ctx, from)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthorizationOracle is a mock implementation of AuthorizationOracle
type MockAuthorizationOracle struct {
	mock.Mock
}

func (m *MockAuthorizationOracle) IsOwner(ctx context.Context, principal int64) (bool, error) {
	args := m.Called(ctx, principal)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationOracle) IsAdmin(ctx context.Context, principal int64) (bool, error) {
	args := m.Called(ctx, principal)
	return args.Bool(0), args.Error(1)
}

// RecordingEventPublisher captures published events for assertions
type RecordingEventPublisher struct {
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) {
	p.Events = append(p.Events, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork that hands out the
// repositories assigned to it
type MockUnitOfWork struct {
	mock.Mock
	roundRepo    RoundRepository
	wagerRepo    WagerRepository
	settingsRepo SettingsRepository
	eventBus     EventPublisher
}

func (m *MockUnitOfWork) SetRepositories(rounds RoundRepository, wagers WagerRepository, settings SettingsRepository, bus EventPublisher) {
	m.roundRepo = rounds
	m.wagerRepo = wagers
	m.settingsRepo = settings
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RoundRepository() RoundRepository {
	return m.roundRepo
}

func (m *MockUnitOfWork) WagerRepository() WagerRepository {
	return m.wagerRepo
}

func (m *MockUnitOfWork) SettingsRepository() SettingsRepository {
	return m.settingsRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
