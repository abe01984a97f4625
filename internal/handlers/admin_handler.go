package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
	"github.com/gorilla/mux"
)

// AdminHandler exposes the admin panel operations: user provisioning and the
// site lock password. The router mounts it behind RequireRole("admin").
type AdminHandler struct {
	Service *services.UserService
}

func NewAdminHandler(service *services.UserService) *AdminHandler {
	return &AdminHandler{Service: service}
}

// AdminGetAllUsersHandler lists every account including credentials, ip and
// location, the way the admin panel displays them.
func (h *AdminHandler) AdminGetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Service.GetAllUsers())
}

// AdminCreateUserHandler provisions a new account.
func (h *AdminHandler) AdminCreateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())

	var input models.User
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AddUser(input)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDuplicateUsername) {
			status = http.StatusConflict
		}
		logger.Log.Warnf("Failed to create user: %v", err)
		http.Error(w, err.Error(), status)
		return
	}

	logger.Log.Infof("Admin %s created user %s", claims.UserID, user.ID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// AdminDeleteUserHandler removes a non-admin account and all its traces.
func (h *AdminHandler) AdminDeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())

	vars := mux.Vars(r)
	targetID := vars["id"]

	if err := h.Service.DeleteUser(targetID); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, store.ErrDeleteAdmin):
			status = http.StatusForbidden
		}
		logger.Log.Warnf("Failed to delete user %s: %v", targetID, err)
		http.Error(w, err.Error(), status)
		return
	}

	logger.Log.Infof("Admin %s deleted user %s", claims.UserID, targetID)
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "User deleted"})
}

// AdminGetSitePasswordHandler shows the current site password.
func (h *AdminHandler) AdminGetSitePasswordHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"site_password": h.Service.SitePassword()})
}

// AdminSetSitePasswordHandler replaces the site lock password.
func (h *AdminHandler) AdminSetSitePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if body.Password == "" {
		http.Error(w, "Password is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.SetSitePassword(body.Password); err != nil {
		logger.Log.Errorf("Failed to set site password: %v", err)
		http.Error(w, "Failed to set site password", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Site password updated"})
}
