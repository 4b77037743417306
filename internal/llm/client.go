package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client generates a completion for an ordered transcript. The transcript
// is expected oldest-first.
type Client interface {
	Generate(ctx context.Context, model string, messages []Message) (Response, error)
}
