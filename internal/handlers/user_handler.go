package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/config"
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	jwtutil "github.com/Dastan2209/Hideout_Messenger/pkg/jwt"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to sessions and profiles.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{Service: service, Config: cfg}
}

// LoginUserHandler authenticates and returns a user-scope token. Reaching it
// at all requires a site-scope token, mirroring the lock screen flow.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.Login(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		log.WithField("username", credentials.Username).Warn("Authentication failed")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("userID", user.ID).Info("User logged in successfully")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// LogoutUserHandler marks the session user offline.
func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.Logout(claims.UserID); err != nil {
		log.WithError(err).Error("Failed to log out user")
		http.Error(w, "Failed to log out", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"message": "Logged out"})
}

// GetMeHandler returns the session user's own record.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.GetUser(claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

// UpdateUserHandler merges fields into a user. Users may edit themselves;
// only admins may edit others or change roles.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	targetID := vars["id"]
	isAdmin := claims.Role == models.RoleAdmin

	if targetID != claims.UserID && !isAdmin {
		log.WithFields(log.Fields{
			"requestedUserID": targetID,
			"loggedInUserID":  claims.UserID,
		}).Warn("Forbidden update attempt")
		http.Error(w, "Forbidden: You can only edit your own profile", http.StatusForbidden)
		return
	}

	var body struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
		Avatar   *string `json:"avatar"`
		Location *string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if body.Role != nil && !isAdmin {
		http.Error(w, "Forbidden: Only admins can change roles", http.StatusForbidden)
		return
	}

	user, err := h.Service.UpdateUser(targetID, store.UserUpdate{
		Username: body.Username,
		Password: body.Password,
		Role:     body.Role,
		Avatar:   body.Avatar,
		Location: body.Location,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrUserNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, store.ErrDuplicateUsername) {
			status = http.StatusConflict
		}
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
