package testutil

import (
	"time"

	"fightpool/models"
)

// NewOpenRound builds an unsaved open round with a betting window measured
// from now.
func NewOpenRound(window time.Duration) *models.Round {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Round{
		Status:        models.RoundStatusOpen,
		StartTime:     now,
		BettingEndsAt: now.Add(window),
	}
}

// NewWager builds an unsaved wager for the given round
func NewWager(roundID, participantID int64, fighter models.Fighter, amount int64) *models.Wager {
	return &models.Wager{
		RoundID:       roundID,
		ParticipantID: participantID,
		Fighter:       fighter,
		Amount:        amount,
	}
}
