package models

// CallState is the single system-wide call simulation. It is ephemeral: it
// lives only in memory and is never written to durable storage.
type CallState struct {
	IsActive   bool   `json:"is_active"`
	IsIncoming bool   `json:"is_incoming"`
	CallerID   string `json:"caller_id,omitempty"`
	ReceiverID string `json:"receiver_id,omitempty"`
	Type       string `json:"type"` // "audio" or "video"
	StartTime  int64  `json:"start_time,omitempty"`
}
