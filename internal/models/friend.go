package models

const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// FriendRequest is a directed proposal between two users. An accepted request
// is treated as a symmetric friendship in either direction.
type FriendRequest struct {
	ID         string `json:"id"`
	FromUserID string `json:"from_user_id"`
	ToUserID   string `json:"to_user_id"`
	Status     string `json:"status"` // "pending", "accepted", "rejected"
	Timestamp  int64  `json:"timestamp"`
}

// Links reports whether the request connects the two users, in either
// direction.
func (r *FriendRequest) Links(a, b string) bool {
	return (r.FromUserID == a && r.ToUserID == b) || (r.FromUserID == b && r.ToUserID == a)
}

// Involves reports whether the user is either party of the request.
func (r *FriendRequest) Involves(userID string) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}
