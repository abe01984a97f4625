package services

import (
	"context"

	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/sirupsen/logrus"
)

// UserService encapsulates the business logic for accounts and sessions,
// including the admin-only provisioning operations.
type UserService struct {
	store *store.Store
	hub   *ws.Hub
}

// NewUserService creates a new instance of UserService.
func NewUserService(st *store.Store, hub *ws.Hub) *UserService {
	return &UserService{store: st, hub: hub}
}

// Login authenticates a user and announces their presence.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastStatus(user.ID, models.StatusOnline)
	return user, nil
}

// Logout marks the user offline and announces it.
func (s *UserService) Logout(userID string) error {
	if err := s.store.Logout(userID); err != nil {
		return err
	}
	s.hub.BroadcastStatus(userID, models.StatusOffline)
	return nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(id string) (*models.User, error) {
	return s.store.GetUser(id)
}

// GetAllUsers returns every account, including credentials. Admin panel only.
func (s *UserService) GetAllUsers() []models.User {
	return s.store.Users()
}

// AddUser provisions a new account; the store auto-friends it with the first
// admin.
func (s *UserService) AddUser(input models.User) (*models.User, error) {
	logrus.WithField("username", input.Username).Info("Creating user")
	return s.store.AddUser(input)
}

// UpdateUser merges the given fields into an account.
func (s *UserService) UpdateUser(id string, update store.UserUpdate) (*models.User, error) {
	return s.store.UpdateUser(id, update)
}

// DeleteUser removes a non-admin account and everything referencing it.
func (s *UserService) DeleteUser(id string) error {
	return s.store.DeleteUser(id)
}

// CheckSitePassword reports whether pwd passes the lock screen.
func (s *UserService) CheckSitePassword(pwd string) bool {
	return s.store.CheckSitePassword(pwd)
}

// SitePassword returns the current site password for the admin panel.
func (s *UserService) SitePassword() string {
	return s.store.SitePassword()
}

// SetSitePassword replaces the site unlock password.
func (s *UserService) SetSitePassword(pwd string) error {
	logrus.Info("Site password changed")
	return s.store.SetSitePassword(pwd)
}
