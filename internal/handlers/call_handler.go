package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
)

// CallHandler drives the call simulation endpoints.
type CallHandler struct {
	Service *services.CallService
}

func NewCallHandler(service *services.CallService) *CallHandler {
	return &CallHandler{Service: service}
}

// StartCallHandler activates a call to another user.
func (h *CallHandler) StartCallHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		ReceiverID string `json:"receiver_id"`
		Type       string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	call, err := h.Service.StartCall(claims.UserID, body.ReceiverID, body.Type)
	if err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, store.ErrCallBusy):
			status = http.StatusConflict
		case errors.Is(err, store.ErrUserNotFound):
			status = http.StatusNotFound
		}
		logger.Log.Warnf("Failed to start call: %v", err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(call)
}

// AcceptCallHandler answers the ringing call.
func (h *CallHandler) AcceptCallHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	call, err := h.Service.AcceptCall(claims.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(call)
}

// EndCallHandler tears the call down. Ending an already inactive call is a
// no-op, matching the hang-up button.
func (h *CallHandler) EndCallHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	call := h.Service.EndCall(claims.UserID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(call)
}

// GetCallStateHandler returns the current call snapshot.
func (h *CallHandler) GetCallStateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.State())
}
