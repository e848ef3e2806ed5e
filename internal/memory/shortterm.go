// Package memory holds the conversation memories around the profile:
// the rolling short-term turn buffer, the vector-backed long-term
// recall, and the LLM gate deciding what deserves to be remembered.
package memory

import (
	"strings"
	"sync"
)

// ShortTerm is a rolling buffer of the most recent conversation turns.
type ShortTerm struct {
	mu       sync.Mutex
	turns    []turn
	maxTurns int
}

type turn struct {
	user      string
	assistant string
}

// NewShortTerm creates a buffer keeping the last maxTurns exchanges.
func NewShortTerm(maxTurns int) *ShortTerm {
	if maxTurns <= 0 {
		maxTurns = 12
	}
	return &ShortTerm{maxTurns: maxTurns}
}

// Add records one exchange, evicting the oldest when full.
func (m *ShortTerm) Add(user, assistant string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, turn{user: user, assistant: assistant})
	if len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Len returns the number of buffered turns.
func (m *ShortTerm) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

// Render formats the buffer as a context block, "" when empty.
func (m *ShortTerm) Render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- Conversation récente ---\n")
	for _, t := range m.turns {
		b.WriteString("User: ")
		b.WriteString(t.user)
		b.WriteString("\nAssistant: ")
		b.WriteString(t.assistant)
		b.WriteString("\n")
	}
	b.WriteString("--- Fin ---\n")
	return b.String()
}
