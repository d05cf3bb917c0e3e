package domain

// Chat message roles. "system" and "user" messages travel to the model as
// user-side turns; "assistant" marks the model's own prior replies.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape shared by the
// session history and the streaming chat bridge.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
