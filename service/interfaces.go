package service

import (
	"context"
	"sync"
	"time"

	"fightpool/events"
	"fightpool/models"
)

// RoundRepository defines the interface for round data access
type RoundRepository interface {
	// Create persists a new round and assigns its id
	Create(ctx context.Context, round *models.Round) error

	// GetByID retrieves a round by its id
	GetByID(ctx context.Context, id int64) (*models.Round, error)

	// GetCurrent returns the open round, or nil when no round is open
	GetCurrent(ctx context.Context) (*models.Round, error)

	// GetLatest returns the newest round by id regardless of state
	GetLatest(ctx context.Context) (*models.Round, error)

	// Update persists changes to a round's mutable fields
	Update(ctx context.Context, round *models.Round) error
}

// WagerRepository defines the interface for the wager ledger. The repository
// exclusively owns wager records; settlement reads them and only writes back
// payout amounts after the round transition commits.
type WagerRepository interface {
	// Create records a new wager
	Create(ctx context.Context, wager *models.Wager) error

	// GetByParticipant returns a participant's wager in a round, nil if none
	GetByParticipant(ctx context.Context, roundID, participantID int64) (*models.Wager, error)

	// GetByRound returns all wagers of a round in the order they were placed
	GetByRound(ctx context.Context, roundID int64) ([]*models.Wager, error)

	// GetByRoundAndFighter returns a round's wagers on one fighter, in the
	// order they were placed
	GetByRoundAndFighter(ctx context.Context, roundID int64, fighter models.Fighter) ([]*models.Wager, error)

	// UpdatePayouts persists the payout amounts computed at settlement
	UpdatePayouts(ctx context.Context, wagers []*models.Wager) error
}

// SettingsRepository defines the interface for pool settings data access
type SettingsRepository interface {
	// Get retrieves the pool settings, creating defaults if absent
	Get(ctx context.Context) (*models.PoolSettings, error)

	// Update persists the pool settings
	Update(ctx context.Context, settings *models.PoolSettings) error
}

// Custodian is the external fungible-asset custodian the pool debits and
// credits by reference. Transfers are assumed atomic and truthful; a timeout
// is treated as failure of the surrounding operation.
type Custodian interface {
	// Debit moves amount (base units) from the account into pool custody
	Debit(ctx context.Context, from int64, amount int64) error

	// Credit moves amount (base units) from pool custody to the account
	Credit(ctx context.Context, to int64, amount int64) error

	// BalanceOf returns the pool's own custodial balance
	BalanceOf(ctx context.Context) (int64, error)

	// AllowanceOf returns how much the account has pre-authorized to the pool
	AllowanceOf(ctx context.Context, from int64) (int64, error)
}

// AuthorizationOracle answers role-membership questions for principals. Role
// state is external; the access guard only queries it.
type AuthorizationOracle interface {
	IsOwner(ctx context.Context, principal int64) (bool, error)
	IsAdmin(ctx context.Context, principal int64) (bool, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// RoundService governs the round lifecycle and the admin surface
type RoundService interface {
	// SetBettingWindow updates the window applied to future rounds
	SetBettingWindow(ctx context.Context, principal int64, window time.Duration) error

	// StartRound opens a new round for betting
	StartRound(ctx context.Context, principal int64) (*models.Round, error)

	// EmergencyStop immediately closes betting without ending the round
	EmergencyStop(ctx context.Context, principal int64) (*models.Round, error)

	// DeclareWinner settles the open round and pays out the winning side
	DeclareWinner(ctx context.Context, principal int64, winner models.Fighter) (*models.SettlementResult, error)

	// GetRoundInfo returns the read-only view of a round, in external units
	GetRoundInfo(ctx context.Context, roundID int64) (*models.RoundInfo, error)

	// GetCurrentRoundID returns the newest round id, 0 when none exist
	GetCurrentRoundID(ctx context.Context) (int64, error)
}

// BettingService is the participant-facing wager intake
type BettingService interface {
	// PlaceBet records a participant's wager; amount is in external units
	PlaceBet(ctx context.Context, participantID int64, amount int64, fighter models.Fighter) (*models.Wager, error)

	// HasWagered reports whether the participant has a wager in the round
	HasWagered(ctx context.Context, roundID, participantID int64) (bool, error)

	// GetParticipantsOnFighter returns the participants who wagered on the
	// fighter, in the order they first wagered
	GetParticipantsOnFighter(ctx context.Context, roundID int64, fighter models.Fighter) ([]int64, error)
}

// TreasuryService moves pool custody funds out to an administrator
type TreasuryService interface {
	// Withdraw credits amount (external units) of pool custody to the caller
	Withdraw(ctx context.Context, principal int64, amount int64) error

	// WithdrawAll credits the entire pool custody balance to the caller and
	// returns the amount moved, in base units
	WithdrawAll(ctx context.Context, principal int64) (int64, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	RoundRepository() RoundRepository
	WagerRepository() WagerRepository
	SettingsRepository() SettingsRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// RoundLock serializes every lifecycle and wager mutation. The canonical
// execution model is single-writer: an operation holds the lock across all
// of its external transfers, so partial settlement is never observable.
type RoundLock struct {
	mu sync.Mutex
}

func NewRoundLock() *RoundLock {
	return &RoundLock{}
}

func (l *RoundLock) Lock()   { l.mu.Lock() }
func (l *RoundLock) Unlock() { l.mu.Unlock() }
