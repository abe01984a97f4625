package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
	"github.com/gorilla/mux"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler allows a user to send a friend request.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized attempt to send friend request")
		return
	}

	vars := mux.Vars(r)
	receiverID := vars["id"]

	request, err := h.Service.SendFriendRequest(claims.UserID, receiverID)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrDuplicateRequest):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		logger.Log.Warnf("Failed to send friend request: %v", err)
		return
	}

	logger.Log.Infof("User %s sent a friend request to %s", claims.UserID, receiverID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(request)
}

// GetPendingRequestsHandler shows all incoming friend requests.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetPendingIncoming(claims.UserID))
}

// GetOutgoingRequestsHandler shows the requests the user has sent that are
// still pending.
func (h *FriendHandler) GetOutgoingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetPendingOutgoing(claims.UserID))
}

// RespondToFriendRequestHandler allows accepting or rejecting a friend
// request addressed to the caller.
func (h *FriendHandler) RespondToFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		logger.Log.Warn("Unauthorized request to respond to a friend request")
		return
	}

	vars := mux.Vars(r)
	requestID := vars["id"]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		logger.Log.Warnf("Failed to decode response body: %v", err)
		return
	}
	defer r.Body.Close()

	err := h.Service.RespondToRequest(requestID, claims.UserID, body.Status)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, store.ErrRequestNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrRequestClosed):
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		logger.Log.Warnf("Failed to respond to friend request %s: %v", requestID, err)
		return
	}

	logger.Log.Infof("User %s responded to friend request %s (%s)", claims.UserID, requestID, body.Status)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Friend request response recorded",
	})
}

// GetFriendsHandler returns a list of the user's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetFriends(claims.UserID))
}

// GetCandidatesHandler returns the users the caller could still befriend.
func (h *FriendHandler) GetCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetCandidates(claims.UserID))
}
