package bot

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"newton-gpt/internal/llm"
	"newton-gpt/internal/logbuf"
	"newton-gpt/internal/store"
	"newton-gpt/internal/transcript"
)

// fallbackReply goes out when the completion call fails: the typing
// indicator already promised the user an answer, so silence is not an
// option at that point.
const fallbackReply = "Error."

// ClientResolver picks the completion client for a preferred engine name.
// *llm.Factory satisfies it.
type ClientResolver interface {
	ClientFor(model string) llm.Client
}

// Orchestrator answers messages posted in threads the bot itself opened.
type Orchestrator struct {
	gw           Gateway
	store        *store.Store
	llm          ClientResolver
	log          *logbuf.Buffer
	botID        string
	defaultModel string
	historyLimit int

	imageChecker *llm.ImageChecker
	imageClient  *llm.ImageClient
}

func NewOrchestrator(gw Gateway, st *store.Store, resolver ClientResolver, log *logbuf.Buffer, botID, defaultModel string, historyLimit int) *Orchestrator {
	return &Orchestrator{
		gw:           gw,
		store:        st,
		llm:          resolver,
		log:          log,
		botID:        botID,
		defaultModel: defaultModel,
		historyLimit: historyLimit,
	}
}

// EnableImages turns on image-request detection for incoming messages.
func (o *Orchestrator) EnableImages(checker *llm.ImageChecker, client *llm.ImageClient) {
	o.imageChecker = checker
	o.imageClient = client
}

// HandleMessage runs one conversation turn. It is called on its own
// goroutine per event; a stalled external call holds up only this turn.
func (o *Orchestrator) HandleMessage(ctx context.Context, ev MessageEvent) {
	if ev.AuthorID == o.botID {
		return
	}
	if !o.ownsThread(ev.ChannelID) {
		return
	}
	o.log.Infof("new message in thread %s from %s", ev.ChannelID, ev.AuthorID)

	model := o.resolveModel(ev.AuthorID)

	raw, err := o.gw.ListRecentMessages(ev.ChannelID, o.historyLimit)
	if err != nil {
		// Silent skip: the user can simply resend.
		o.log.Warnf("can't fetch messages in %s: %v", ev.ChannelID, err)
		return
	}
	history := transcript.Build(raw, o.botID)
	if len(history) == 0 {
		o.log.Infof("empty history in %s, nothing to send", ev.ChannelID)
		return
	}

	stop := o.gw.Typing(ev.ChannelID)
	text := o.reply(ctx, model, history, ev.Content)
	stop()

	if _, err := o.gw.SendMessage(ev.ChannelID, text); err != nil {
		o.log.Warnf("can't send message to %s: %v", ev.ChannelID, err)
	}
}

// ownsThread reports whether the channel is a thread whose earliest joined
// member is the bot. A thread the bot was added to later must not trigger
// auto-replies.
func (o *Orchestrator) ownsThread(channelID string) bool {
	members, err := o.gw.ListThreadMembers(channelID)
	if err != nil || len(members) == 0 {
		return false
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members[0].UserID == o.botID
}

// resolveModel looks up the author's preferred engine, creating and
// persisting a default record on first contact. Storage trouble falls back
// to the default model in memory so the reply still goes out.
func (o *Orchestrator) resolveModel(authorID string) string {
	userID, err := strconv.ParseUint(authorID, 10, 64)
	if err != nil {
		o.log.Warnf("unparseable author id %q: %v", authorID, err)
		return o.defaultModel
	}

	o.store.LockUser(userID)
	defer o.store.UnlockUser(userID)

	users, err := o.store.Load()
	if err != nil {
		o.log.Warnf("can't load preferences: %v", err)
		return o.defaultModel
	}
	if u := users.FindByUser(userID); u != nil {
		return u.Model
	}
	users.Upsert(store.User{UserID: userID, Model: o.defaultModel})
	if err := o.store.Persist(users); err != nil {
		o.log.Warnf("can't persist default preference for %d: %v", userID, err)
	}
	return o.defaultModel
}

func (o *Orchestrator) reply(ctx context.Context, model string, history []transcript.Message, latest string) string {
	if o.imageChecker != nil && o.imageClient != nil {
		if ok, size := o.imageChecker.Check(ctx, latest); ok {
			if urls := o.imageClient.Generate(ctx, latest, size, 1); len(urls) > 0 {
				return strings.Join(urls, "\n")
			}
			// Nothing came back; fall through to a text completion.
		}
	}

	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}

	resp, err := o.llm.ClientFor(model).Generate(ctx, model, msgs)
	if err != nil {
		o.log.Errorf("completion failed [model=%s]: %v", model, err)
		return fallbackReply
	}
	o.log.Infof("completion ok [model=%s, tokens: prompt=%d, completion=%d, total=%d]",
		resp.Model, resp.PromptTokens, resp.CompletionTokens, resp.TotalTokens)
	return resp.Content
}
