package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
	"github.com/gorilla/mux"
)

// ChatHandler serves two-party message threads.
type ChatHandler struct {
	Service *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

// GetChatHistory returns the caller's thread with a friend, oldest first.
func (h *ChatHandler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	friendID := vars["friendId"]

	messages := h.Service.GetChat(claims.UserID, friendID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// SendMessageHandler appends a text message to the caller's thread with a
// friend.
func (h *ChatHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	friendID := vars["friendId"]

	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if body.Content == "" {
		http.Error(w, "Message content is required", http.StatusBadRequest)
		return
	}

	msg, err := h.Service.SendMessage(claims.UserID, friendID, body.Content)
	if err != nil {
		logger.Log.Warnf("Failed to send message: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(msg)
}
