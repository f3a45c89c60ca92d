package models

import "time"

// Message represents one chat message inside a match. Content is
// immutable once stored; FilteredContent is set when the leak filter
// masked something and is what the recipient sees.
type Message struct {
	ID              string    `json:"id"`
	MatchID         string    `json:"matchId"`
	SenderID        string    `json:"senderId"`
	Content         string    `json:"content"`
	FilteredContent *string   `json:"filteredContent,omitempty"`
	ContainsContact bool      `json:"containsContact"`
	IsRead          bool      `json:"isRead"`
	CreatedAt       time.Time `json:"createdAt"`
}

// MessageRequest represents the request body for sending a message.
type MessageRequest struct {
	Content string `json:"content"`
}

// DeliveredContent returns what the given reader should see: senders
// (and moderation) always see the raw text, recipients get the masked
// version when the filter flagged the message.
func (m *Message) DeliveredContent(readerID string) string {
	if readerID != m.SenderID && m.ContainsContact && m.FilteredContent != nil {
		return *m.FilteredContent
	}
	return m.Content
}
