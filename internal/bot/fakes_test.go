package bot

import (
	"context"
	"sync"
	"time"

	"newton-gpt/internal/llm"
	"newton-gpt/internal/transcript"
)

type sentMessage struct {
	channelID string
	text      string
}

type createdThread struct {
	channelID string
	rootID    string
	title     string
}

type fakeGateway struct {
	mu sync.Mutex

	members    []ThreadMember
	membersErr error
	history    []transcript.Raw
	historyErr error
	sendErr    error
	threadErr  error

	sent        []sentMessage
	threads     []createdThread
	typingCalls int
	typingStops int
}

func (g *fakeGateway) SendMessage(channelID, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return "", g.sendErr
	}
	g.sent = append(g.sent, sentMessage{channelID: channelID, text: text})
	return "msg-1", nil
}

func (g *fakeGateway) ListRecentMessages(string, int) ([]transcript.Raw, error) {
	if g.historyErr != nil {
		return nil, g.historyErr
	}
	return g.history, nil
}

func (g *fakeGateway) ListThreadMembers(string) ([]ThreadMember, error) {
	if g.membersErr != nil {
		return nil, g.membersErr
	}
	return g.members, nil
}

func (g *fakeGateway) CreateThread(channelID, rootID, title string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.threadErr != nil {
		return g.threadErr
	}
	g.threads = append(g.threads, createdThread{channelID: channelID, rootID: rootID, title: title})
	return nil
}

func (g *fakeGateway) Typing(string) func() {
	g.mu.Lock()
	g.typingCalls++
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		g.typingStops++
		g.mu.Unlock()
	}
}

type fakeClient struct {
	resp llm.Response
	err  error

	gotModel string
	gotMsgs  []llm.Message
}

func (c *fakeClient) Generate(_ context.Context, model string, messages []llm.Message) (llm.Response, error) {
	c.gotModel = model
	c.gotMsgs = messages
	if c.err != nil {
		return llm.Response{}, c.err
	}
	return c.resp, nil
}

type fakeResolver struct {
	client *fakeClient
}

func (r *fakeResolver) ClientFor(string) llm.Client { return r.client }

func botMember(botID string) ThreadMember {
	return ThreadMember{UserID: botID, JoinedAt: time.Unix(100, 0)}
}

func laterMember(userID string) ThreadMember {
	return ThreadMember{UserID: userID, JoinedAt: time.Unix(200, 0)}
}
