package chat

import (
	"errors"

	"contractguard-web/internal/auditapi"
)

const (
	Greeting        = "Hi! I'm your ContractGuard Copilot. Ask me anything about this audit."
	MissingAnswer   = "I couldn't fetch a response right now."
	UnreachableText = "Sorry, I'm having trouble reaching the server. Please try again."
)

var ErrInvalidInput = errors.New("invalid input")

// Role identifies who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation.
type Message struct {
	ID        string                `json:"id"`
	Role      Role                  `json:"role"`
	Content   string                `json:"content"`
	Streaming bool                  `json:"streaming,omitempty"`
	Sources   []auditapi.ChatSource `json:"sources,omitempty"`
}

// Reply pairs the operator's question with the assistant's answer. Failed is
// set when the answer is the fallback text.
type Reply struct {
	Question Message `json:"question"`
	Answer   Message `json:"answer"`
	Failed   bool    `json:"failed"`
}
