package service

import (
	"context"
	"fmt"

	"fightpool/models"

	log "github.com/sirupsen/logrus"
)

// SettlementEngine computes and applies the pari-mutuel payout for a round.
// Planning is pure; Execute issues the external transfers. The engine never
// mutates wager amounts, it only reads the ledger and moves custody funds.
type SettlementEngine struct{}

// NewSettlementEngine creates a new settlement engine
func NewSettlementEngine() *SettlementEngine {
	return &SettlementEngine{}
}

// BuildPlan computes each winning participant's payout:
//
//	payout = floor(wager * totalWagered / totalOnWinner)
//
// Entries keep the order in which the winners first wagered; that ordering is
// the externally observable payout sequence and must be reproduced exactly,
// same order and same truncation, across replays. When nobody wagered on the
// winning fighter the plan is empty and the pool stays in custody.
func (e *SettlementEngine) BuildPlan(round *models.Round, wagers []*models.Wager, winner models.Fighter) (*models.SettlementPlan, error) {
	if !winner.IsValid() {
		return nil, ErrInvalidFighter
	}

	plan := &models.SettlementPlan{
		RoundID:      round.ID,
		Winner:       winner,
		TotalWagered: round.TotalWagered,
		WinningTotal: round.TotalOn(winner),
	}

	if plan.WinningTotal == 0 {
		return plan, nil
	}

	for _, w := range wagers {
		if w.Fighter != winner {
			continue
		}
		plan.Entries = append(plan.Entries, models.SettlementEntry{
			ParticipantID: w.ParticipantID,
			WagerAmount:   w.Amount,
			Payout:        w.CalculatePayout(plan.WinningTotal, plan.TotalWagered),
		})
	}

	return plan, nil
}

// Execute issues one custodian credit per planned payout, in plan order. The
// settlement is all-or-nothing: if any credit fails, every credit already
// issued is reversed with a compensating debit and ErrTransferFailed is
// returned, leaving no committed round-state change behind.
func (e *SettlementEngine) Execute(ctx context.Context, custodian Custodian, plan *models.SettlementPlan) error {
	for i, entry := range plan.Entries {
		if entry.Payout == 0 {
			continue
		}
		if err := custodian.Credit(ctx, entry.ParticipantID, entry.Payout); err != nil {
			e.compensate(ctx, custodian, plan.Entries[:i])
			return fmt.Errorf("%w: payout to participant %d: %v", ErrTransferFailed, entry.ParticipantID, err)
		}
	}
	return nil
}

// Reverse debits back every credit the plan issued. DeclareWinner calls it
// when the round transition fails after Execute already paid out, so custody
// returns to its pre-settlement state before the operator retries.
func (e *SettlementEngine) Reverse(ctx context.Context, custodian Custodian, plan *models.SettlementPlan) {
	e.compensate(ctx, custodian, plan.Entries)
}

// compensate reverses already-issued credits after a mid-loop failure. A
// failed reversal is logged and skipped: the round stays unsettled either
// way, and the operator resolves the discrepancy before re-declaring.
func (e *SettlementEngine) compensate(ctx context.Context, custodian Custodian, issued []models.SettlementEntry) {
	for _, entry := range issued {
		if entry.Payout == 0 {
			continue
		}
		if err := custodian.Debit(ctx, entry.ParticipantID, entry.Payout); err != nil {
			log.WithFields(log.Fields{
				"participantID": entry.ParticipantID,
				"amount":        entry.Payout,
			}).Errorf("Failed to reverse payout during settlement rollback: %v", err)
		}
	}
}
