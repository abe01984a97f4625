package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dastan2209/Hideout_Messenger/internal/config"
	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	jwtutil "github.com/Dastan2209/Hideout_Messenger/pkg/jwt"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
)

// SiteHandler serves the lock screen: one shared password gating access to
// the login endpoint itself.
type SiteHandler struct {
	Service *services.UserService
	Config  *config.Config
}

func NewSiteHandler(service *services.UserService, cfg *config.Config) *SiteHandler {
	return &SiteHandler{Service: service, Config: cfg}
}

// UnlockSiteHandler checks the site password and hands out a site-scope
// token on match. A wrong password changes nothing.
func (h *SiteHandler) UnlockSiteHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.Service.CheckSitePassword(body.Password) {
		logger.Log.Warn("Site unlock attempt with wrong password")
		http.Error(w, "Wrong password", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateSiteToken(h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		logger.Log.Errorf("Failed to generate site token: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"unlocked": true,
		"token":    token,
	})
}
