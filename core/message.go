package core

import "github.com/google/uuid"

// Conversation roles recognized by the dispatch engine. Unknown roles are
// carried through untouched so transports can attach their own entries.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single conversation history entry. History is owned by the
// caller and passed in full on every request; the engine never stores it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewUserMessage constructs a user-authored history entry.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage constructs an assistant-authored history entry.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage constructs a system annotation entry. System entries carry
// orchestration records (demo state annotations) alongside the conversation.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewID generates a unique identifier for invocations and traces.
func NewID() string {
	return uuid.NewString()
}
