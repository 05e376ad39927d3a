package bot

import (
	"fmt"

	"fightpool/cache"
	"fightpool/events"
	"fightpool/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	roundService    service.RoundService
	bettingService  service.BettingService
	treasuryService service.TreasuryService
	roundCache      *cache.RoundCache
	eventBus        *events.Bus
}

func New(config Config, roundService service.RoundService, bettingService service.BettingService, treasuryService service.TreasuryService, roundCache *cache.RoundCache, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:          config,
		session:         dg,
		roundService:    roundService,
		bettingService:  bettingService,
		treasuryService: treasuryService,
		roundCache:      roundCache,
		eventBus:        eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce round lifecycle transitions in the configured guild
	bot.subscribeAnnouncements()

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func fighterChoices() []*discordgo.ApplicationCommandOptionChoice {
	return []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Fighter A", Value: "a"},
		{Name: "Fighter B", Value: "b"},
	}
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "bet",
			Description: "Place a wager on a fighter in the open round",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "fighter",
					Description: "Fighter to back",
					Required:    true,
					Choices:     fighterChoices(),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount to wager",
					Required:    true,
				},
			},
		},
		{
			Name:        "round",
			Description: "Show the current round and its pool totals",
		},
		{
			Name:        "mybet",
			Description: "Check whether you have a wager in the current round",
		},
		{
			Name:        "backers",
			Description: "List who is backing a fighter, in betting order",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "fighter",
					Description: "Fighter to list backers for",
					Required:    true,
					Choices:     fighterChoices(),
				},
			},
		},
		{
			Name:        "pool",
			Description: "Manage the wagering pool (owner and admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Open a new round for betting",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Immediately close betting on the open round",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "declare",
					Description: "Declare the winner and settle the round",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "winner",
							Description: "Winning fighter",
							Required:    true,
							Choices:     fighterChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "window",
					Description: "Set the betting window for future rounds",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "seconds",
							Description: "Betting window in seconds",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "withdraw",
					Description: "Withdraw funds from pool custody",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount to withdraw (omit to drain the pool)",
							Required:    false,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "bet":
		b.handleBet(s, i)
	case "round":
		b.handleRound(s, i)
	case "mybet":
		b.handleMyBet(s, i)
	case "backers":
		b.handleBackers(s, i)
	case "pool":
		b.handlePoolCommand(s, i)
	}
}
