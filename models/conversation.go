package models

import "time"

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MaxConversationWindow bounds the message list returned on a read
const MaxConversationWindow = 50

// PromptHistoryWindow is how many trailing messages feed the model prompt
const PromptHistoryWindow = 5

// Message is a single chat turn inside a conversation.
type Message struct {
	Role      string    `json:"role" dynamodbav:"role"`
	Content   string    `json:"content" dynamodbav:"content"`
	Images    []string  `json:"images,omitempty" dynamodbav:"images,omitempty"`
	Timestamp time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// Conversation is a persisted chat between a user and the assistant.
// Handlers only ever append messages; the list is trimmed on read.
type Conversation struct {
	ID        string    `json:"id" dynamodbav:"id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Title     string    `json:"title,omitempty" dynamodbav:"title,omitempty"`
	Messages  []Message `json:"messages" dynamodbav:"messages"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// RecentMessages returns up to n trailing messages in order.
func (c *Conversation) RecentMessages(n int) []Message {
	if n <= 0 || len(c.Messages) <= n {
		return c.Messages
	}
	return c.Messages[len(c.Messages)-n:]
}
