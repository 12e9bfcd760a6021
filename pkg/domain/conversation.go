package domain

import "sync"

// Conversation is the state owned by one executor: the ordered message log,
// the number of appends performed and the tokens reported by the backend.
//
// Every method is atomic on its own. No lock is held across a turn, so two
// turns driven concurrently on the same Conversation interleave their appends.
type Conversation struct {
	mu           sync.Mutex
	messages     []Message
	messageCount int
	totalTokens  int
}

// NewConversation returns an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message at the end of the log.
func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, Message{Role: role, Content: content})
	c.messageCount++
}

// UpsertSystem sets the system prompt.
// An existing system message is replaced in place and the counter is left alone.
// Otherwise the message is inserted at the front and counted as an append.
func (c *Conversation) UpsertSystem(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.messages {
		if c.messages[i].Role == RoleSystem {
			c.messages[i].Content = content
			return
		}
	}

	c.messages = append([]Message{{Role: RoleSystem, Content: content}}, c.messages...)
	c.messageCount++
}

// SystemPrompt returns the current system message, if any.
func (c *Conversation) SystemPrompt() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) > 0 && c.messages[0].Role == RoleSystem {
		return c.messages[0].Content, true
	}
	return "", false
}

// Messages returns a copy of the log. Mutating the result never affects the conversation.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages currently in the log.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// MessageCount returns the number of appends since creation or the last Clear.
func (c *Conversation) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messageCount
}

// TotalTokens returns the accumulated token usage.
func (c *Conversation) TotalTokens() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalTokens
}

// AddTokens accumulates usage reported by a backend. Non-positive values are ignored.
func (c *Conversation) AddTokens(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalTokens += n
}

// Clear drops every message, including the system prompt, and resets both counters.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = nil
	c.messageCount = 0
	c.totalTokens = 0
}
