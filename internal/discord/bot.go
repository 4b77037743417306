package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"newton-gpt/internal/bot"
	"newton-gpt/internal/logbuf"
)

// Bot owns the Discord session: event wiring, slash-command registration
// and the gateway handed to the core.
type Bot struct {
	session *discordgo.Session
	gateway *Gateway
	log     *logbuf.Buffer
	guildID string
}

func New(token, guildID string, log *logbuf.Buffer) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{
		session: session,
		gateway: &Gateway{session: session, log: log},
		log:     log,
		guildID: guildID,
	}, nil
}

func (b *Bot) Gateway() bot.Gateway { return b.gateway }

// Start opens the gateway connection and blocks until ctx is cancelled.
// Each inbound event runs its handler on its own goroutine.
func (b *Bot) Start(ctx context.Context, orch *bot.Orchestrator, disp *bot.Dispatcher, modelChoices []string) error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.Infof("%s is connected!", r.User.Username)
		b.registerCommands(modelChoices)
	})

	b.session.AddHandler(func(s *discordgo.Session, mc *discordgo.MessageCreate) {
		ev := bot.MessageEvent{
			ChannelID: mc.ChannelID,
			MessageID: mc.ID,
			AuthorID:  mc.Author.ID,
			Content:   mc.Content,
		}
		go orch.HandleMessage(ctx, ev)
	})

	b.session.AddHandler(func(s *discordgo.Session, ic *discordgo.InteractionCreate) {
		if ic.Type != discordgo.InteractionApplicationCommand {
			return
		}
		go b.handleInteraction(ic, disp)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}

	<-ctx.Done()
	return b.session.Close()
}

func (b *Bot) handleInteraction(ic *discordgo.InteractionCreate, disp *bot.Dispatcher) {
	data := ic.ApplicationCommandData()

	opts := make(map[string]string, len(data.Options))
	for _, o := range data.Options {
		if o.Type == discordgo.ApplicationCommandOptionString {
			opts[o.Name] = o.StringValue()
		}
	}

	content := disp.Dispatch(bot.InteractionEvent{
		ChannelID: ic.ChannelID,
		UserID:    interactionUserID(ic),
		Command:   data.Name,
		Options:   opts,
	})

	// Every command reply is ephemeral: visible to the invoker only.
	err := b.session.InteractionRespond(ic.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.log.Errorf("cannot respond to slash command %q: %v", data.Name, err)
	}
}

func interactionUserID(ic *discordgo.InteractionCreate) string {
	if ic.Member != nil && ic.Member.User != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

func (b *Bot) registerCommands(modelChoices []string) {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(modelChoices))
	for _, m := range modelChoices {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  displayName(m),
			Value: m,
		})
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Checks that the bot is alive",
		},
		{
			Name:        "info",
			Description: "Gives information about the currently selected GPT model",
		},
		{
			Name:        "model",
			Description: "Select a GPT model for your requests",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "Select the model name from the given options",
					Required:    true,
					Choices:     choices,
				},
			},
		},
		{
			Name:        "create_chat",
			Description: "This command creates a separate thread for chatting with ChatGPT",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "title",
					Description: "Name of the new chat room",
					Required:    true,
				},
			},
		},
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.guildID, commands)
	if err != nil {
		b.log.Errorf("can't register guild commands: %v", err)
		return
	}
	b.log.Infof("registered %d guild slash commands", len(registered))
}

func displayName(model string) string {
	switch model {
	case "gpt-3.5-turbo":
		return "ChatGPT 3.5-turbo"
	case "gpt-4":
		return "ChatGPT 4"
	case "yandexgpt":
		return "YandexGPT"
	default:
		return model
	}
}
