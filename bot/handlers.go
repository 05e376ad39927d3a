package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"fightpool/events"
	"fightpool/models"
	"fightpool/service"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	participantID, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	var fighter models.Fighter
	var amount int64
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "fighter":
			fighter = parseFighter(opt.StringValue())
		case "amount":
			amount = opt.IntValue()
		}
	}

	wager, err := b.bettingService.PlaceBet(ctx, participantID, amount, fighter)
	if err != nil {
		log.WithFields(log.Fields{
			"participantID": participantID,
			"fighter":       fighter,
			"amount":        amount,
			"error":         err,
		}).Warn("Bet rejected")
		b.respondWithError(s, i, betErrorMessage(err))
		return
	}

	b.respond(s, i, fmt.Sprintf("✅ **%s** wagered **%d** on **%s**",
		displayName(s, i), amount, wager.Fighter))
}

func (b *Bot) handleRound(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	roundID, err := b.roundService.GetCurrentRoundID(ctx)
	if err != nil {
		log.Errorf("Failed to get current round id: %v", err)
		b.respondWithError(s, i, "Unable to look up the round. Please try again.")
		return
	}
	if roundID == 0 {
		b.respond(s, i, "No rounds have been run yet.")
		return
	}

	info, err := b.lookupRound(ctx, roundID)
	if err != nil {
		log.Errorf("Failed to get round %d: %v", roundID, err)
		b.respondWithError(s, i, "Unable to look up the round. Please try again.")
		return
	}

	b.respond(s, i, formatRound(info))
}

// lookupRound serves round snapshots from the cache, falling back to the
// service on a miss and repopulating.
func (b *Bot) lookupRound(ctx context.Context, roundID int64) (*models.RoundInfo, error) {
	if b.roundCache != nil {
		info, found, err := b.roundCache.Get(ctx, roundID)
		if err != nil {
			log.Warnf("Round cache read failed: %v", err)
		} else if found {
			return info, nil
		}
	}

	info, err := b.roundService.GetRoundInfo(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if b.roundCache != nil {
		if err := b.roundCache.Set(ctx, info); err != nil {
			log.Warnf("Round cache write failed: %v", err)
		}
	}

	return info, nil
}

func (b *Bot) handleMyBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	participantID, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	roundID, err := b.roundService.GetCurrentRoundID(ctx)
	if err != nil {
		log.Errorf("Failed to get current round id: %v", err)
		b.respondWithError(s, i, "Unable to look up your wager. Please try again.")
		return
	}
	if roundID == 0 {
		b.respond(s, i, "No rounds have been run yet.")
		return
	}

	wagered, err := b.bettingService.HasWagered(ctx, roundID, participantID)
	if err != nil {
		log.Errorf("Failed to check wager for participant %d: %v", participantID, err)
		b.respondWithError(s, i, "Unable to look up your wager. Please try again.")
		return
	}

	if wagered {
		b.respond(s, i, fmt.Sprintf("You have a wager in round **%d**. Wagers are final for the round.", roundID))
		return
	}
	b.respond(s, i, fmt.Sprintf("You have no wager in round **%d**.", roundID))
}

func (b *Bot) handleBackers(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	var fighter models.Fighter
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "fighter" {
			fighter = parseFighter(opt.StringValue())
		}
	}

	roundID, err := b.roundService.GetCurrentRoundID(ctx)
	if err != nil || roundID == 0 {
		b.respondWithError(s, i, "No round to list backers for.")
		return
	}

	participants, err := b.bettingService.GetParticipantsOnFighter(ctx, roundID, fighter)
	if err != nil {
		log.Errorf("Failed to list backers for round %d: %v", roundID, err)
		b.respondWithError(s, i, "Unable to list backers. Please try again.")
		return
	}

	if len(participants) == 0 {
		b.respond(s, i, fmt.Sprintf("Nobody has backed **%s** yet.", fighter))
		return
	}

	mentions := make([]string, len(participants))
	for idx, id := range participants {
		mentions[idx] = fmt.Sprintf("<@%d>", id)
	}
	b.respond(s, i, fmt.Sprintf("Backing **%s**: %s", fighter, strings.Join(mentions, ", ")))
}

func (b *Bot) handlePoolCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Invalid pool command.")
		return
	}

	switch options[0].Name {
	case "start":
		b.handlePoolStart(s, i)
	case "stop":
		b.handlePoolStop(s, i)
	case "declare":
		b.handlePoolDeclare(s, i, options[0].Options)
	case "window":
		b.handlePoolWindow(s, i, options[0].Options)
	case "withdraw":
		b.handlePoolWithdraw(s, i, options[0].Options)
	}
}

func (b *Bot) handlePoolStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	principal, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	round, err := b.roundService.StartRound(ctx, principal)
	if err != nil {
		b.respondWithError(s, i, adminErrorMessage(err))
		return
	}

	b.respond(s, i, fmt.Sprintf("🥊 Round **%d** is open! Betting closes <t:%d:R>.",
		round.ID, round.BettingEndsAt.Unix()))
}

func (b *Bot) handlePoolStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	principal, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	round, err := b.roundService.EmergencyStop(ctx, principal)
	if err != nil {
		b.respondWithError(s, i, adminErrorMessage(err))
		return
	}

	b.respond(s, i, fmt.Sprintf("🛑 Betting on round **%d** is closed.", round.ID))
}

func (b *Bot) handlePoolDeclare(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	principal, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	var winner models.Fighter
	for _, opt := range opts {
		if opt.Name == "winner" {
			winner = parseFighter(opt.StringValue())
		}
	}

	result, err := b.roundService.DeclareWinner(ctx, principal, winner)
	if err != nil {
		b.respondWithError(s, i, adminErrorMessage(err))
		return
	}

	b.respond(s, i, formatSettlement(result))
}

func (b *Bot) handlePoolWindow(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	principal, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	var seconds int64
	for _, opt := range opts {
		if opt.Name == "seconds" {
			seconds = opt.IntValue()
		}
	}

	if err := b.roundService.SetBettingWindow(ctx, principal, secondsToDuration(seconds)); err != nil {
		b.respondWithError(s, i, adminErrorMessage(err))
		return
	}

	b.respond(s, i, fmt.Sprintf("⏱️ Betting window set to **%d seconds** for future rounds.", seconds))
}

func (b *Bot) handlePoolWithdraw(s *discordgo.Session, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	ctx := context.Background()

	principal, ok := b.invokerID(s, i)
	if !ok {
		return
	}

	var amount int64
	for _, opt := range opts {
		if opt.Name == "amount" {
			amount = opt.IntValue()
		}
	}

	if amount > 0 {
		if err := b.treasuryService.Withdraw(ctx, principal, amount); err != nil {
			b.respondWithError(s, i, adminErrorMessage(err))
			return
		}
		b.respond(s, i, fmt.Sprintf("💸 Withdrew **%d** from pool custody.", amount))
		return
	}

	moved, err := b.treasuryService.WithdrawAll(ctx, principal)
	if err != nil {
		b.respondWithError(s, i, adminErrorMessage(err))
		return
	}
	b.respond(s, i, fmt.Sprintf("💸 Drained pool custody: **%d** base units moved.", moved))
}

// subscribeAnnouncements posts lifecycle transitions to the guild's system
// channel so rounds are visible without anyone polling.
func (b *Bot) subscribeAnnouncements() {
	b.eventBus.Subscribe(events.EventTypeRoundStarted, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.RoundStartedEvent); ok {
			b.announce(fmt.Sprintf("Round **%d** started. Betting closes <t:%d:R>.",
				e.RoundID, e.BettingEndsAt.Unix()))
		}
	})
	b.eventBus.Subscribe(events.EventTypeRoundEnded, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.RoundEndedEvent); ok {
			b.announce(fmt.Sprintf("Round **%d** settled. Winner: **%s**.", e.RoundID, e.Winner))
		}
	})
}

func (b *Bot) announce(message string) {
	guild, err := b.session.Guild(b.config.GuildID)
	if err != nil || guild.SystemChannelID == "" {
		return
	}
	if _, err := b.session.ChannelMessageSend(guild.SystemChannelID, message); err != nil {
		log.Errorf("Failed to send announcement: %v", err)
	}
}

// invokerID converts the Discord snowflake of the caller into the numeric
// participant id the services use.
func (b *Bot) invokerID(s *discordgo.Session, i *discordgo.InteractionCreate) (int64, bool) {
	id, err := strconv.ParseInt(i.Member.User.ID, 10, 64)
	if err != nil {
		log.Errorf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return 0, false
	}
	return id, true
}

func parseFighter(value string) models.Fighter {
	switch value {
	case "a":
		return models.FighterA
	case "b":
		return models.FighterB
	default:
		return models.FighterNone
	}
}

func formatRound(info *models.RoundInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Round %d** (%s)\n", info.ID, info.Status)
	fmt.Fprintf(&sb, "Fighter A pool: **%d**\n", info.TotalOnA)
	fmt.Fprintf(&sb, "Fighter B pool: **%d**\n", info.TotalOnB)
	fmt.Fprintf(&sb, "Total wagered: **%d**", info.TotalWagered)
	if info.Status == models.RoundStatusOpen {
		fmt.Fprintf(&sb, "\nBetting closes <t:%d:R>", info.BettingEndsAt.Unix())
	}
	if info.Winner.IsValid() {
		fmt.Fprintf(&sb, "\nWinner: **%s**", info.Winner)
	}
	return sb.String()
}

func formatSettlement(result *models.SettlementResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Round **%d** settled! Winner: **%s**\n", result.Round.ID, result.Round.Winner)
	if len(result.Winners) == 0 {
		sb.WriteString("No winning wagers to pay out.")
		return sb.String()
	}
	fmt.Fprintf(&sb, "Paying out **%d** winner(s):\n", len(result.Winners))
	for _, wager := range result.Winners {
		fmt.Fprintf(&sb, "• <@%d>: **%d**\n", wager.ParticipantID, result.Payouts[wager.ParticipantID])
	}
	return strings.TrimRight(sb.String(), "\n")
}

func betErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrRoundNotActive):
		return "There is no open round to bet on."
	case errors.Is(err, service.ErrBettingClosed):
		return "Betting is closed for this round."
	case errors.Is(err, service.ErrAlreadyWagered):
		return "You already have a wager in this round."
	case errors.Is(err, service.ErrInvalidAmount):
		return "Amount must be positive."
	case errors.Is(err, service.ErrInvalidFighter):
		return "Pick fighter A or B."
	case errors.Is(err, service.ErrInsufficientAllowance):
		return "Your allowance doesn't cover that wager."
	case errors.Is(err, service.ErrTransferFailed):
		return "Funds transfer failed. Nothing was taken."
	default:
		return "Unable to place bet. Please try again."
	}
}

func adminErrorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return "You are not allowed to manage the pool."
	case errors.Is(err, service.ErrRoundAlreadyActive):
		return "A round is already open."
	case errors.Is(err, service.ErrRoundNotActive):
		return "There is no open round."
	case errors.Is(err, service.ErrInvalidFighter):
		return "Pick fighter A or B."
	case errors.Is(err, service.ErrInvalidAmount):
		return "Invalid amount."
	case errors.Is(err, service.ErrTransferFailed):
		return "Payout transfer failed. The round was not settled."
	default:
		return "Pool operation failed. Please try again."
	}
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Errorf("Error responding to command: %v", err)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

func displayName(s *discordgo.Session, i *discordgo.InteractionCreate) string {
	if i.Member.Nick != "" {
		return i.Member.Nick
	}
	return i.Member.User.Username
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
