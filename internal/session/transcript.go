package session

import (
	"sync"

	"github.com/docgpt-ai/docgpt/internal/llm"
)

// Greeting seeds every new conversation transcript.
const Greeting = "Hi! I'm docGPT. I can answer questions about your documents.\n" +
	"Upload your documents (PDF, TXT, or DOCX) here and I'll answer your questions about them!"

// Message is one transcript entry.
type Message struct {
	Role    llm.Role `json:"role"`
	Content string   `json:"content"`
}

// Transcript is the append-only conversation record owned by a session.
type Transcript struct {
	mu       sync.Mutex
	messages []Message
}

// NewTranscript returns a transcript seeded with the assistant greeting.
func NewTranscript() *Transcript {
	return &Transcript{messages: []Message{{Role: llm.RoleAssistant, Content: Greeting}}}
}

// Append adds a message to the end of the transcript.
func (t *Transcript) Append(role llm.Role, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the transcript in order.
func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
