package service

import (
	"context"
	"fmt"
	"time"

	"fightpool/config"
	"fightpool/events"
	"fightpool/models"

	log "github.com/sirupsen/logrus"
)

type roundService struct {
	uowFactory UnitOfWorkFactory
	guard      *AccessGuard
	custodian  Custodian
	engine     *SettlementEngine
	lock       *RoundLock
	config     *config.Config
}

// NewRoundService creates a new round lifecycle service
func NewRoundService(uowFactory UnitOfWorkFactory, guard *AccessGuard, custodian Custodian, lock *RoundLock, cfg *config.Config) RoundService {
	return &roundService{
		uowFactory: uowFactory,
		guard:      guard,
		custodian:  custodian,
		engine:     NewSettlementEngine(),
		lock:       lock,
		config:     cfg,
	}
}

// SetBettingWindow updates the betting window applied to future rounds
func (s *roundService) SetBettingWindow(ctx context.Context, principal int64, window time.Duration) error {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return err
	}
	if window <= 0 {
		return ErrInvalidAmount
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pool settings: %w", err)
	}

	settings.BettingWindowSeconds = int64(window / time.Second)
	if err := uow.SettingsRepository().Update(ctx, settings); err != nil {
		return fmt.Errorf("failed to update pool settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"principal": principal,
		"window":    window,
	}).Info("Betting window updated")
	return nil
}

// StartRound opens a new round. Only one round may be open at a time; ids are
// assigned monotonically and never reused.
func (s *roundService) StartRound(ctx context.Context, principal int64) (*models.Round, error) {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return nil, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	current, err := uow.RoundRepository().GetCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check current round: %w", err)
	}
	if current != nil {
		return nil, ErrRoundAlreadyActive
	}

	settings, err := uow.SettingsRepository().Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool settings: %w", err)
	}
	window := settings.BettingWindow()
	if window <= 0 {
		window = s.config.BettingWindow
	}

	now := time.Now()
	round := &models.Round{
		Status:        models.RoundStatusOpen,
		StartTime:     now,
		BettingEndsAt: now.Add(window),
	}
	if err := uow.RoundRepository().Create(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to create round: %w", err)
	}

	uow.EventBus().Publish(events.RoundStartedEvent{
		RoundID:       round.ID,
		StartTime:     round.StartTime,
		BettingEndsAt: round.BettingEndsAt,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":       round.ID,
		"bettingEndsAt": round.BettingEndsAt,
	}).Info("Round started")
	return round, nil
}

// EmergencyStop closes betting immediately without settling the round. The
// window is only ever shortened, so calling it again is a no-op.
func (s *roundService) EmergencyStop(ctx context.Context, principal int64) (*models.Round, error) {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return nil, err
	}

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

	round.StopBetting(time.Now())
	if err := uow.RoundRepository().Update(ctx, round); err != nil {
		return nil, fmt.Errorf("failed to update round: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":   round.ID,
		"principal": principal,
	}).Warn("Emergency stop: betting closed")
	return round, nil
}

// DeclareWinner settles the open round: it pays the pool out proportionally
// to the winning side and marks the round settled. The transition is terminal
// and all-or-nothing; a failed payout leaves the round open and unchanged.
func (s *roundService) DeclareWinner(ctx context.Context, principal int64, winner models.Fighter) (*models.SettlementResult, error) {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return nil, err
	}
	if !winner.IsValid() {
		return nil, ErrInvalidFighter
	}

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

	wagers, err := uow.WagerRepository().GetByRound(ctx, round.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load round wagers: %w", err)
	}

	plan, err := s.engine.BuildPlan(round, wagers, winner)
	if err != nil {
		return nil, err
	}

	// External transfers happen before the round transition commits; a
	// failure here rolls everything back, credits included.
	if err := s.engine.Execute(ctx, s.custodian, plan); err != nil {
		return nil, err
	}

	// Credits are out the door from here on: any failure before the commit
	// lands must reverse them, or a retry would pay the winners twice.
	now := time.Now()
	if !round.Settle(winner, now) {
		// GetCurrent only returns open rounds, so this guards the terminal
		// transition invariant rather than a reachable state.
		s.engine.Reverse(ctx, s.custodian, plan)
		return nil, ErrRoundNotActive
	}
	if err := uow.RoundRepository().Update(ctx, round); err != nil {
		s.engine.Reverse(ctx, s.custodian, plan)
		return nil, fmt.Errorf("failed to update settled round: %w", err)
	}

	result := &models.SettlementResult{
		Round:   round,
		Payouts: make(map[int64]int64),
	}
	payoutByParticipant := make(map[int64]int64, len(plan.Entries))
	for _, entry := range plan.Entries {
		payoutByParticipant[entry.ParticipantID] = entry.Payout
	}
	for _, w := range wagers {
		if w.Fighter == winner {
			payout := payoutByParticipant[w.ParticipantID]
			w.PayoutAmount = &payout
			result.Winners = append(result.Winners, w)
			result.Payouts[w.ParticipantID] = payout
		} else {
			zero := int64(0)
			w.PayoutAmount = &zero
			result.Losers = append(result.Losers, w)
			result.Payouts[w.ParticipantID] = 0
		}
	}
	if len(wagers) > 0 {
		if err := uow.WagerRepository().UpdatePayouts(ctx, wagers); err != nil {
			s.engine.Reverse(ctx, s.custodian, plan)
			return nil, fmt.Errorf("failed to record payouts: %w", err)
		}
	}

	uow.EventBus().Publish(events.RoundEndedEvent{
		RoundID: round.ID,
		Winner:  winner,
	})

	if err := uow.Commit(); err != nil {
		s.engine.Reverse(ctx, s.custodian, plan)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"roundID":      round.ID,
		"winner":       winner.String(),
		"totalWagered": round.TotalWagered,
		"paidOut":      plan.TotalPayout(),
		"dust":         plan.Dust(),
	}).Info("Round settled")
	return result, nil
}

// GetRoundInfo returns a round's read-only view with amounts converted back
// to external units.
func (s *roundService) GetRoundInfo(ctx context.Context, roundID int64) (*models.RoundInfo, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetByID(ctx, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	if round == nil {
		return nil, fmt.Errorf("round %d not found", roundID)
	}

	scale := s.config.AmountScale
	return &models.RoundInfo{
		ID:            round.ID,
		Status:        round.EffectiveStatus(time.Now()),
		StartTime:     round.StartTime,
		BettingEndsAt: round.BettingEndsAt,
		TotalOnA:      round.TotalOnA / scale,
		TotalOnB:      round.TotalOnB / scale,
		TotalWagered:  round.TotalWagered / scale,
		Winner:        round.Winner,
	}, nil
}

// GetCurrentRoundID returns the newest round id, 0 when no round exists
func (s *roundService) GetCurrentRoundID(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	round, err := uow.RoundRepository().GetLatest(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest round: %w", err)
	}
	if round == nil {
		return 0, nil
	}
	return round.ID, nil
}
