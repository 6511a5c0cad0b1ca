// Package protocol defines the conversation types shared by the session
// store, the orchestrator, and the generative backend boundary.
package protocol

// Role identifies the author of a conversation message.
//
// The instruction prompt that seeds a new session is stored under RoleUser
// rather than a dedicated system role; the backend receives it as the first
// user turn and it is subject to the same history trimming as any other
// message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the roles a session may store.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single turn in a conversation. Messages are immutable once
// appended to a session.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "What is 2+2?")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
