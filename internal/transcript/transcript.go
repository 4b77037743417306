package transcript

// Role tags a conversation message for the completion API.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Raw is a platform message before role attribution.
type Raw struct {
	AuthorID string
	Content  string
}

// Message is one role-tagged turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Build turns a platform history window into a role-tagged transcript.
// The platform returns messages newest-first; the result is oldest-first,
// ready for the completion request. Messages authored by the bot become
// assistant turns, everything else user turns. No system turn is added and
// no further truncation happens here: the caller already bounded the
// window it fetched.
func Build(raw []Raw, botID string) []Message {
	out := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		role := RoleUser
		if raw[i].AuthorID == botID {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: raw[i].Content})
	}
	return out
}
