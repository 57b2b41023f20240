package models

import "time"

// Conversation is the single thread between an unordered pair of users.
// UserAID always sorts before UserBID.
type Conversation struct {
	ID            string     `json:"id"`
	UserAID       string     `json:"user_a_id"`
	UserBID       string     `json:"user_b_id"`
	LastMessageAt *time.Time `json:"last_message_at"`
	UnreadA       int        `json:"unread_a"`
	UnreadB       int        `json:"unread_b"`
	Lifecycle
}

func (c Conversation) EntityID() string { return c.ID }

// NormalizePair orders two participant ids so lookups are order independent.
func NormalizePair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether userID is one of the two sides.
func (c Conversation) HasParticipant(userID string) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// Peer returns the other participant.
func (c Conversation) Peer(userID string) string {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// UnreadFor returns the unread counter belonging to userID's side.
func (c Conversation) UnreadFor(userID string) int {
	switch userID {
	case c.UserAID:
		return c.UnreadA
	case c.UserBID:
		return c.UnreadB
	}
	return 0
}

// unreadSlot returns a pointer to userID's unread counter, or nil.
func (c *Conversation) unreadSlot(userID string) *int {
	switch userID {
	case c.UserAID:
		return &c.UnreadA
	case c.UserBID:
		return &c.UnreadB
	}
	return nil
}

// IncrementUnread bumps the counter of the side that did not send.
func (c *Conversation) IncrementUnread(senderID string) {
	if slot := c.unreadSlot(c.Peer(senderID)); slot != nil {
		*slot++
	}
}

// DecrementUnread lowers userID's counter without going below zero.
func (c *Conversation) DecrementUnread(userID string) {
	if slot := c.unreadSlot(userID); slot != nil && *slot > 0 {
		*slot--
	}
}

// ResetUnread clears userID's counter.
func (c *Conversation) ResetUnread(userID string) {
	if slot := c.unreadSlot(userID); slot != nil {
		*slot = 0
	}
}

// Message is immutable after creation apart from read_at and deleted_at.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	Content        string     `json:"content"`
	AttachmentID   *string    `json:"attachment_id"`
	CreatedAt      time.Time  `json:"created_at"`
	ReadAt         *time.Time `json:"read_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
}

func (m Message) EntityID() string { return m.ID }
func (m Message) IsDeleted() bool  { return m.DeletedAt != nil }

func (m *Message) MarkDeleted(at time.Time) { m.DeletedAt = &at }

// Attachment is file metadata referenced by at most one message.
type Attachment struct {
	ID        string  `json:"id"`
	FileName  string  `json:"file_name"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	URL       string  `json:"url"`
	MessageID *string `json:"message_id"`
	Lifecycle
}

func (a Attachment) EntityID() string { return a.ID }
