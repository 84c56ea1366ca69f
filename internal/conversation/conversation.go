// Package conversation provides the in-memory conversation store.
//
// A conversation is an ordered, capped sequence of turns identified by an
// opaque string key. Conversations are created implicitly on first use and
// live for the lifetime of the process; the only way to remove one is Clear.
package conversation

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message exchanged in a conversation. Immutable once appended.
type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now()}
}
