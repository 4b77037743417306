package discord

import (
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"newton-gpt/internal/bot"
	"newton-gpt/internal/logbuf"
	"newton-gpt/internal/transcript"
)

// Discord typing indicators expire after ~10s; re-signal a bit sooner.
const typingRefresh = 8 * time.Second

// Gateway adapts a discordgo session to the platform surface the bot core
// consumes. It holds no state beyond the session and stays mechanical:
// every method is a single REST call plus type translation.
type Gateway struct {
	session *discordgo.Session
	log     *logbuf.Buffer
}

func (g *Gateway) SendMessage(channelID, text string) (string, error) {
	msg, err := g.session.ChannelMessageSend(channelID, text)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (g *Gateway) ListRecentMessages(channelID string, limit int) ([]transcript.Raw, error) {
	msgs, err := g.session.ChannelMessages(channelID, limit, "", "", "")
	if err != nil {
		return nil, err
	}
	raw := make([]transcript.Raw, 0, len(msgs))
	for _, m := range msgs {
		raw = append(raw, transcript.Raw{AuthorID: m.Author.ID, Content: m.Content})
	}
	return raw, nil
}

func (g *Gateway) ListThreadMembers(channelID string) ([]bot.ThreadMember, error) {
	members, err := g.session.ThreadMembers(channelID, 100, false, "")
	if err != nil {
		return nil, err
	}
	out := make([]bot.ThreadMember, 0, len(members))
	for _, m := range members {
		out = append(out, bot.ThreadMember{UserID: m.UserID, JoinedAt: m.JoinTimestamp})
	}
	return out, nil
}

func (g *Gateway) CreateThread(channelID, rootMessageID, title string) error {
	_, err := g.session.MessageThreadStartComplex(channelID, rootMessageID, &discordgo.ThreadStart{
		Name:                title,
		AutoArchiveDuration: 60,
	})
	return err
}

// Typing keeps the channel's typing indicator alive until stop is called.
// stop is safe to call more than once.
func (g *Gateway) Typing(channelID string) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(typingRefresh)
		defer ticker.Stop()
		for {
			if err := g.session.ChannelTyping(channelID); err != nil {
				g.log.Warnf("typing indicator failed in %s: %v", channelID, err)
			}
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
