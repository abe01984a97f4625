package models

const (
	MessageText    = "text"
	MessageCallLog = "call_log"

	CallAudio = "audio"
	CallVideo = "video"
)

// Message is a single chat message between two users. Messages are append
// only; there is no edit or delete path. Timestamp is epoch milliseconds and
// orders a two-party thread.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
	Type       string `json:"type"`
	CallType   string `json:"call_type,omitempty"`
}
