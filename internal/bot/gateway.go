package bot

import (
	"time"

	"newton-gpt/internal/transcript"
)

// MessageEvent is an inbound channel message.
type MessageEvent struct {
	ChannelID string
	MessageID string
	AuthorID  string
	Content   string
}

// InteractionEvent is an invoked slash command.
type InteractionEvent struct {
	ChannelID string
	UserID    string
	Command   string
	Options   map[string]string
}

type ThreadMember struct {
	UserID   string
	JoinedAt time.Time
}

// Gateway is the platform surface the bot core consumes. The discord
// package implements it over a live session; tests use fakes.
type Gateway interface {
	// SendMessage posts text to a channel and returns the new message id.
	SendMessage(channelID, text string) (messageID string, err error)
	// ListRecentMessages returns up to limit messages, newest first.
	ListRecentMessages(channelID string, limit int) ([]transcript.Raw, error)
	// ListThreadMembers fails if the channel is not a thread.
	ListThreadMembers(channelID string) ([]ThreadMember, error)
	// CreateThread opens a public thread rooted at the given message.
	CreateThread(channelID, rootMessageID, title string) error
	// Typing keeps a typing indicator alive until stop is called.
	Typing(channelID string) (stop func())
}
