package service

import (
	"context"
	"fmt"
	"math"

	"fightpool/config"

	log "github.com/sirupsen/logrus"
)

type treasuryService struct {
	guard     *AccessGuard
	custodian Custodian
	config    *config.Config
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(guard *AccessGuard, custodian Custodian, cfg *config.Config) TreasuryService {
	return &treasuryService{
		guard:     guard,
		custodian: custodian,
		config:    cfg,
	}
}

// Withdraw moves amount (external units) of pool custody to the caller
func (s *treasuryService) Withdraw(ctx context.Context, principal int64, amount int64) error {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > math.MaxInt64/s.config.AmountScale {
		return ErrInvalidAmount
	}

	baseAmount := amount * s.config.AmountScale

	balance, err := s.custodian.BalanceOf(ctx)
	if err != nil {
		return fmt.Errorf("failed to query pool balance: %w", err)
	}
	if baseAmount > balance {
		return fmt.Errorf("%w: pool holds %d, requested %d", ErrInvalidAmount, balance, baseAmount)
	}

	if err := s.custodian.Credit(ctx, principal, baseAmount); err != nil {
		return fmt.Errorf("%w: withdrawal of %d: %v", ErrTransferFailed, baseAmount, err)
	}

	log.WithFields(log.Fields{
		"principal": principal,
		"amount":    baseAmount,
	}).Info("Pool funds withdrawn")
	return nil
}

// WithdrawAll moves the entire pool custody balance to the caller
func (s *treasuryService) WithdrawAll(ctx context.Context, principal int64) (int64, error) {
	if err := s.guard.Authorize(ctx, principal); err != nil {
		return 0, err
	}

	balance, err := s.custodian.BalanceOf(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to query pool balance: %w", err)
	}
	if balance == 0 {
		return 0, nil
	}

	if err := s.custodian.Credit(ctx, principal, balance); err != nil {
		return 0, fmt.Errorf("%w: withdrawal of %d: %v", ErrTransferFailed, balance, err)
	}

	log.WithFields(log.Fields{
		"principal": principal,
		"amount":    balance,
	}).Info("Pool funds fully withdrawn")
	return balance, nil
}
