package store

import (
	"sort"

	"github.com/Dastan2209/Hideout_Messenger/internal/models"
)

// Derived relationship views. These are computed from the collections on
// demand and never stored.

// GetUser returns a copy of the user, or ErrUserNotFound.
func (s *Store) GetUser(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByID(id)
	if user == nil {
		return nil, ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// Users returns a copy of every user record in insertion order.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out
}

// Friends returns every user linked to userID by an accepted request,
// regardless of which side sent it.
func (s *Store) Friends(userID string) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	friends := make([]models.User, 0)
	for i := range s.requests {
		r := &s.requests[i]
		if r.Status != models.RequestAccepted || !r.Involves(userID) {
			continue
		}
		otherID := r.FromUserID
		if otherID == userID {
			otherID = r.ToUserID
		}
		if other := s.userByID(otherID); other != nil {
			friends = append(friends, *other)
		}
	}
	return friends
}

// ChatThread returns all messages between the two users, oldest first.
func (s *Store) ChatThread(a, b string) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread := make([]models.Message, 0)
	for _, m := range s.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			thread = append(thread, m)
		}
	}
	sort.SliceStable(thread, func(i, j int) bool {
		return thread[i].Timestamp < thread[j].Timestamp
	})
	return thread
}

// Candidates returns every user that userID could send a friend request to:
// everyone but themselves who is not already linked by a pending or accepted
// request. Rejected requests leave the pair open for another try.
func (s *Store) Candidates(userID string) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]models.User, 0)
	for i := range s.users {
		u := &s.users[i]
		if u.ID == userID {
			continue
		}
		linked := false
		for j := range s.requests {
			r := &s.requests[j]
			if r.Links(userID, u.ID) && r.Status != models.RequestRejected {
				linked = true
				break
			}
		}
		if !linked {
			candidates = append(candidates, *u)
		}
	}
	return candidates
}

// PendingIncoming returns the pending requests addressed to userID.
func (s *Store) PendingIncoming(userID string) []models.FriendRequest {
	return s.pending(func(r *models.FriendRequest) bool { return r.ToUserID == userID })
}

// PendingOutgoing returns the pending requests userID has sent.
func (s *Store) PendingOutgoing(userID string) []models.FriendRequest {
	return s.pending(func(r *models.FriendRequest) bool { return r.FromUserID == userID })
}

func (s *Store) pending(match func(*models.FriendRequest) bool) []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.FriendRequest, 0)
	for i := range s.requests {
		if s.requests[i].Status == models.RequestPending && match(&s.requests[i]) {
			out = append(out, s.requests[i])
		}
	}
	return out
}

// GetRequest returns a copy of the friend request, or ErrRequestNotFound.
func (s *Store) GetRequest(id string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID == id {
			copied := s.requests[i]
			return &copied, nil
		}
	}
	return nil, ErrRequestNotFound
}
