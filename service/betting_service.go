package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"fightpool/config"
	"fightpool/events"
	"fightpool/models"

	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
	custodian  Custodian
	lock       *RoundLock
	config     *config.Config
}

// NewBettingService creates a new wager intake service
func NewBettingService(uowFactory UnitOfWorkFactory, custodian Custodian, lock *RoundLock, cfg *config.Config) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
		custodian:  custodian,
		lock:       lock,
		config:     cfg,
	}
}

// PlaceBet records a single immutable wager for the participant in the open
// round. The external amount is scaled once into custodian base units here;
// the debit and the ledger both carry base units so conservation holds.
func (s *bettingService) PlaceBet(ctx context.Context, participantID int64, amount int64, fighter models.Fighter) (*models.Wager, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current round: %w", err)
	}
	if round == nil {
		return nil, ErrRoundNotActive
	}
	if !round.CanAcceptBets(time.Now()) {
		return nil, ErrBettingClosed
	}

	existing, err := uow.WagerRepository().GetByParticipant(ctx, round.ID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing wager: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyWagered
	}

	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if !fighter.IsValid() {
		return nil, ErrInvalidFighter
	}

	// The scale multiplication must not wrap: a wrapped negative base amount
	// would slip past the allowance check and reach the custodian.
	if amount > math.MaxInt64/s.config.AmountScale {
		return nil, ErrInvalidAmount
	}
	baseAmount := amount * s.config.AmountScale

	allowance, err := s.custodian.AllowanceOf(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query allowance: %w", err)
	}
	if allowance < baseAmount {
		return nil, ErrInsufficientAllowance
	}

	// Debit first: a failed debit leaves the ledger untouched.
	if err := s.custodian.Debit(ctx, participantID, baseAmount); err != nil {
		return nil, fmt.Errorf("%w: debit of %d from participant %d: %v", ErrTransferFailed, baseAmount, participantID, err)
	}

	wager := &models.Wager{
		RoundID:       round.ID,
		ParticipantID: participantID,
		Fighter:       fighter,
		Amount:        baseAmount,
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		s.refund(ctx, participantID, baseAmount)
		return nil, fmt.Errorf("failed to record wager: %w", err)
	}

	round.RecordWager(fighter, baseAmount)
	if err := uow.RoundRepository().Update(ctx, round); err != nil {
		s.refund(ctx, participantID, baseAmount)
		return nil, fmt.Errorf("failed to update round totals: %w", err)
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		RoundID:       round.ID,
		ParticipantID: participantID,
		Fighter:       fighter,
		Amount:        baseAmount,
	})

	if err := uow.Commit(); err != nil {
		s.refund(ctx, participantID, baseAmount)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":       round.ID,
		"participantID": participantID,
		"fighter":       fighter.String(),
		"amount":        baseAmount,
	}).Info("Wager placed")
	return wager, nil
}

// refund reverses the intake debit when the ledger mutation cannot commit.
// The debit already happened externally, so the reversal is best effort and
// loud on failure.
func (s *bettingService) refund(ctx context.Context, participantID, baseAmount int64) {
	if err := s.custodian.Credit(ctx, participantID, baseAmount); err != nil {
		log.WithFields(log.Fields{
			"participantID": participantID,
			"amount":        baseAmount,
		}).Errorf("Failed to refund debit after aborted wager: %v", err)
	}
}

// HasWagered reports whether the participant holds a wager in the round
func (s *bettingService) HasWagered(ctx context.Context, roundID, participantID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wager, err := uow.WagerRepository().GetByParticipant(ctx, roundID, participantID)
	if err != nil {
		return false, fmt.Errorf("failed to look up wager: %w", err)
	}
	return wager != nil, nil
}

// GetParticipantsOnFighter returns the participants who wagered on the
// fighter, in the order they first wagered.
func (s *bettingService) GetParticipantsOnFighter(ctx context.Context, roundID int64, fighter models.Fighter) ([]int64, error) {
	if !fighter.IsValid() {
		return nil, ErrInvalidFighter
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wagers, err := uow.WagerRepository().GetByRoundAndFighter(ctx, roundID, fighter)
	if err != nil {
		return nil, fmt.Errorf("failed to load wagers: %w", err)
	}

	participants := make([]int64, 0, len(wagers))
	for _, w := range wagers {
		participants = append(participants, w.ParticipantID)
	}
	return participants, nil
}
