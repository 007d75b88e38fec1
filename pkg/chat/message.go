package chat

import (
	"time"

	"github.com/rs/xid"
)

// TimestampLayout is how message times are shown in the transcript.
const TimestampLayout = "15:04:05"

type Message struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
	Self      bool   `json:"self,omitempty"`
}

// NewMessage stamps text with a fresh id and the formatted time.
func NewMessage(author, text string, at time.Time, self bool) *Message {
	return &Message{
		ID:        xid.New().String(),
		Author:    author,
		Text:      text,
		Timestamp: at.Format(TimestampLayout),
		Self:      self,
	}
}
