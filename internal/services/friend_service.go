package services

import (
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/sirupsen/logrus"
)

// FriendService handles business logic for managing friendships.
type FriendService struct {
	store *store.Store
	hub   *ws.Hub
}

// NewFriendService creates a new FriendService.
func NewFriendService(st *store.Store, hub *ws.Hub) *FriendService {
	return &FriendService{store: st, hub: hub}
}

// SendFriendRequest creates a new pending request and notifies the receiver.
func (s *FriendService) SendFriendRequest(fromID, toID string) (*models.FriendRequest, error) {
	req, err := s.store.SendFriendRequest(fromID, toID)
	if err != nil {
		return nil, err
	}

	s.hub.SendTo(toID, map[string]interface{}{
		"type":    "friend_request",
		"request": req,
	})
	return req, nil
}

// RespondToRequest answers a pending request. Only the addressed user may
// respond. On acceptance both parties learn about their new friendship.
func (s *FriendService) RespondToRequest(requestID, responderID, status string) error {
	req, err := s.store.GetRequest(requestID)
	if err != nil {
		return err
	}
	if req.ToUserID != responderID {
		logrus.WithFields(logrus.Fields{"requestID": requestID, "userID": responderID}).
			Warn("User tried to answer someone else's friend request")
		return store.ErrRequestNotFound
	}

	updated, err := s.store.RespondToFriendRequest(requestID, status)
	if err != nil {
		return err
	}

	if updated.Status == models.RequestAccepted {
		payload := map[string]interface{}{
			"type":    "friend_accepted",
			"request": updated,
		}
		s.hub.SendTo(updated.FromUserID, payload)
		s.hub.SendTo(updated.ToUserID, payload)
	}
	return nil
}

// GetFriends returns the public view of everyone linked to userID by an
// accepted request.
func (s *FriendService) GetFriends(userID string) []models.PublicUser {
	return publicViews(s.store.Friends(userID))
}

// GetCandidates returns the users userID could still send a request to.
func (s *FriendService) GetCandidates(userID string) []models.PublicUser {
	return publicViews(s.store.Candidates(userID))
}

// GetPendingIncoming returns the pending requests addressed to userID.
func (s *FriendService) GetPendingIncoming(userID string) []models.FriendRequest {
	return s.store.PendingIncoming(userID)
}

// GetPendingOutgoing returns the pending requests sent by userID.
func (s *FriendService) GetPendingOutgoing(userID string) []models.FriendRequest {
	return s.store.PendingOutgoing(userID)
}

func publicViews(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
