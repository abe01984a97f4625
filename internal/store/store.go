package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/ipinfo"
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultSitePassword gates the login screen until the admin changes it.
const DefaultSitePassword = "1234"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrDeleteAdmin        = errors.New("admin accounts cannot be deleted")
	ErrSelfRequest        = errors.New("cannot send a friend request to yourself")
	ErrDuplicateRequest   = errors.New("request already pending or you are already friends")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrRequestClosed      = errors.New("request already responded to")
	ErrInvalidStatus      = errors.New("invalid request status")
	ErrCallBusy           = errors.New("a call is already in progress")
	ErrNoActiveCall       = errors.New("no active call")
)

// Store is the single source of truth for users, messages, friend requests,
// the site password and the (ephemeral) call state. Collections live in
// memory; every mutation is applied under the lock and then mirrored to
// durable storage as a JSON blob under its logical name. When a mirror write
// fails the in-memory state is already updated, so memory may run ahead of
// the backend until the next successful flush. Mutations are commands taking
// the acting user explicitly and returning a result or an error, never
// touching ambient state.
type Store struct {
	mu      sync.Mutex
	storage storage.Storage
	lookup  ipinfo.Lookuper

	users        []models.User
	messages     []models.Message
	requests     []models.FriendRequest
	sitePassword string
	call         models.CallState
}

// New loads the persisted collections from st, seeding the default admin
// account and site password on first run.
func New(st storage.Storage, lookup ipinfo.Lookuper) (*Store, error) {
	s := &Store{
		storage: st,
		lookup:  lookup,
		call:    models.CallState{Type: models.CallAudio},
	}

	if err := loadJSON(st, storage.KeyUsers, &s.users); err != nil {
		return nil, err
	}
	if err := loadJSON(st, storage.KeyMessages, &s.messages); err != nil {
		return nil, err
	}
	if err := loadJSON(st, storage.KeyFriendRequests, &s.requests); err != nil {
		return nil, err
	}

	pwd, err := st.Get(storage.KeySitePassword)
	switch {
	case err == nil:
		s.sitePassword = string(pwd)
	case errors.Is(err, storage.ErrNotFound):
		s.sitePassword = DefaultSitePassword
		if err := st.Set(storage.KeySitePassword, []byte(s.sitePassword)); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if len(s.users) == 0 {
		s.users = []models.User{seedAdmin()}
		if err := s.persistUsers(); err != nil {
			return nil, err
		}
		logrus.WithField("username", s.users[0].Username).Info("Seeded default admin account")
	}

	return s, nil
}

func seedAdmin() models.User {
	return models.User{
		ID:       "admin-1",
		Username: "admin",
		Password: "12345",
		Role:     models.RoleAdmin,
		Status:   models.StatusOffline,
		LastSeen: time.Now(),
		IP:       "Unknown",
		Location: "Unknown",
		Avatar:   "https://picsum.photos/seed/admin/200/200",
	}
}

func loadJSON(st storage.Storage, name string, out interface{}) error {
	raw, err := st.Get(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %q: %v", name, err)
	}
	return nil
}

func (s *Store) persistUsers() error {
	return s.persist(storage.KeyUsers, s.users)
}

func (s *Store) persistMessages() error {
	return s.persist(storage.KeyMessages, s.messages)
}

func (s *Store) persistRequests() error {
	return s.persist(storage.KeyFriendRequests, s.requests)
}

func (s *Store) persist(name string, collection interface{}) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %v", name, err)
	}
	if err := s.storage.Set(name, raw); err != nil {
		return fmt.Errorf("failed to persist %q: %v", name, err)
	}
	return nil
}

// CheckSitePassword reports whether pwd unlocks the site. No state changes;
// the caller is expected to hand the client a session-scoped token on match.
func (s *Store) CheckSitePassword(pwd string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pwd == s.sitePassword
}

// SitePassword returns the current site password for the admin panel.
func (s *Store) SitePassword() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sitePassword
}

// SetSitePassword overwrites the site unlock password.
func (s *Store) SetSitePassword(pwd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sitePassword = pwd
	if err := s.storage.Set(storage.KeySitePassword, []byte(pwd)); err != nil {
		return fmt.Errorf("failed to persist site password: %v", err)
	}
	return nil
}

// Login authenticates by exact username/password match, then resolves the
// caller's IP and location best-effort and marks the user online. A lookup
// failure never fails the login; invalid credentials leave every record
// untouched.
func (s *Store) Login(ctx context.Context, username, password string) (*models.User, error) {
	s.mu.Lock()
	var id string
	for i := range s.users {
		if s.users[i].Username == username && s.users[i].Password == password {
			id = s.users[i].ID
			break
		}
	}
	s.mu.Unlock()

	if id == "" {
		logrus.WithField("username", username).Warn("Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	// The lookup happens outside the lock; only the record update below is
	// the atomic apply-then-persist step.
	info := s.lookup.Lookup(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByID(id)
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.Status = models.StatusOnline
	user.LastSeen = time.Now()
	user.IP = info.IP
	user.Location = info.Location()
	if err := s.persistUsers(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"userID": user.ID, "ip": user.IP}).Info("User logged in")
	copied := *user
	return &copied, nil
}

// Logout marks the user offline with an updated last-seen stamp.
func (s *Store) Logout(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByID(userID)
	if user == nil {
		return ErrUserNotFound
	}
	user.Status = models.StatusOffline
	user.LastSeen = time.Now()
	if err := s.persistUsers(); err != nil {
		return err
	}

	logrus.WithField("userID", userID).Info("User logged out")
	return nil
}

// AddUser provisions a new account and immediately friends it with the first
// admin so the newcomer has someone to talk to. Role enforcement is the
// caller's job; the store only fills defaults.
func (s *Store) AddUser(input models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := models.User{
		ID:       uuid.NewString(),
		Username: input.Username,
		Password: input.Password,
		Role:     input.Role,
		Status:   models.StatusOffline,
		LastSeen: time.Now(),
		IP:       "Pending",
		Location: "Pending",
		Avatar:   input.Avatar,
	}
	if user.Username == "" {
		user.Username = "User"
	}
	if user.Password == "" {
		user.Password = "12345"
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if user.Avatar == "" {
		user.Avatar = fmt.Sprintf("https://picsum.photos/seed/%s/200/200", user.ID)
	}

	for i := range s.users {
		if s.users[i].Username == user.Username {
			return nil, ErrDuplicateUsername
		}
	}

	s.users = append(s.users, user)
	if admin := s.firstAdmin(); admin != nil && admin.ID != user.ID {
		s.requests = append(s.requests, models.FriendRequest{
			ID:         uuid.NewString(),
			FromUserID: admin.ID,
			ToUserID:   user.ID,
			Status:     models.RequestAccepted,
			Timestamp:  time.Now().UnixMilli(),
		})
	}

	// Flush every touched collection before reporting a failure, so the
	// mirror never holds the new user without the auto-accepted request.
	err := s.persistUsers()
	if reqErr := s.persistRequests(); err == nil {
		err = reqErr
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"userID": user.ID, "username": user.Username}).Info("User created")
	copied := user
	return &copied, nil
}

// UserUpdate carries the fields UpdateUser may merge into a record. Nil
// fields are left as they are.
type UserUpdate struct {
	Username *string
	Password *string
	Role     *string
	Avatar   *string
	Location *string
}

// UpdateUser merges the non-nil fields into the matching user.
func (s *Store) UpdateUser(id string, update UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByID(id)
	if user == nil {
		return nil, ErrUserNotFound
	}

	if update.Username != nil {
		for i := range s.users {
			if s.users[i].ID != id && s.users[i].Username == *update.Username {
				return nil, ErrDuplicateUsername
			}
		}
		user.Username = *update.Username
	}
	if update.Password != nil {
		user.Password = *update.Password
	}
	if update.Role != nil {
		user.Role = *update.Role
	}
	if update.Avatar != nil {
		user.Avatar = *update.Avatar
	}
	if update.Location != nil {
		user.Location = *update.Location
	}

	if err := s.persistUsers(); err != nil {
		return nil, err
	}

	logrus.WithField("userID", id).Info("User updated")
	copied := *user
	return &copied, nil
}

// DeleteUser removes a non-admin user together with every message and friend
// request referencing them, and tears down a call they are a party of.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := s.userByID(id)
	if user == nil {
		return ErrUserNotFound
	}
	if user.Role == models.RoleAdmin {
		return ErrDeleteAdmin
	}

	users := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			users = append(users, u)
		}
	}
	s.users = users

	messages := s.messages[:0]
	for _, m := range s.messages {
		if m.SenderID != id && m.ReceiverID != id {
			messages = append(messages, m)
		}
	}
	s.messages = messages

	requests := s.requests[:0]
	for _, r := range s.requests {
		if !r.Involves(id) {
			requests = append(requests, r)
		}
	}
	s.requests = requests

	if s.call.IsActive && (s.call.CallerID == id || s.call.ReceiverID == id) {
		s.call = models.CallState{Type: models.CallAudio}
	}

	// Flush all three collections even if one persist fails; the first
	// error is reported after the last flush so the mirror stays as close
	// to memory as the backend allows.
	err := s.persistUsers()
	if msgErr := s.persistMessages(); err == nil {
		err = msgErr
	}
	if reqErr := s.persistRequests(); err == nil {
		err = reqErr
	}
	if err != nil {
		return err
	}

	logrus.WithField("userID", id).Info("User deleted")
	return nil
}

// SendMessage appends a message from sender to receiver. Messages are append
// only.
func (s *Store) SendMessage(senderID, receiverID, content, msgType, callType string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendMessageLocked(senderID, receiverID, content, msgType, callType)
}

func (s *Store) sendMessageLocked(senderID, receiverID, content, msgType, callType string) (*models.Message, error) {
	if s.userByID(senderID) == nil {
		return nil, ErrUserNotFound
	}
	if msgType == "" {
		msgType = models.MessageText
	}

	msg := models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Timestamp:  time.Now().UnixMilli(),
		Type:       msgType,
		CallType:   callType,
	}
	s.messages = append(s.messages, msg)
	if err := s.persistMessages(); err != nil {
		return nil, err
	}

	copied := msg
	return &copied, nil
}

// SendFriendRequest creates a pending request from one user to another. A
// pending or accepted request between the pair, in either direction, blocks
// a new one; a rejected request does not, so a turned-down user may try
// again.
func (s *Store) SendFriendRequest(fromID, toID string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fromID == toID {
		return nil, ErrSelfRequest
	}
	if s.userByID(fromID) == nil || s.userByID(toID) == nil {
		return nil, ErrUserNotFound
	}
	for i := range s.requests {
		r := &s.requests[i]
		if r.Links(fromID, toID) && r.Status != models.RequestRejected {
			return nil, ErrDuplicateRequest
		}
	}

	req := models.FriendRequest{
		ID:         uuid.NewString(),
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     models.RequestPending,
		Timestamp:  time.Now().UnixMilli(),
	}
	s.requests = append(s.requests, req)
	if err := s.persistRequests(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"from": fromID, "to": toID}).Info("Friend request sent")
	copied := req
	return &copied, nil
}

// RespondToFriendRequest moves a pending request to accepted or rejected.
// Both states are terminal.
func (s *Store) RespondToFriendRequest(requestID, status string) (*models.FriendRequest, error) {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return nil, ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.requests {
		if s.requests[i].ID != requestID {
			continue
		}
		if s.requests[i].Status != models.RequestPending {
			return nil, ErrRequestClosed
		}
		s.requests[i].Status = status
		if err := s.persistRequests(); err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{"requestID": requestID, "status": status}).Info("Friend request answered")
		copied := s.requests[i]
		return &copied, nil
	}
	return nil, ErrRequestNotFound
}

// StartCall activates the single system-wide call and records a call_log
// message in the pair's thread. Only one call may be active at a time.
func (s *Store) StartCall(callerID, receiverID, callType string) (*models.CallState, *models.Message, error) {
	if callType != models.CallAudio && callType != models.CallVideo {
		return nil, nil, fmt.Errorf("unknown call type %q", callType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.call.IsActive {
		return nil, nil, ErrCallBusy
	}
	if s.userByID(callerID) == nil || s.userByID(receiverID) == nil {
		return nil, nil, ErrUserNotFound
	}

	s.call = models.CallState{
		IsActive:   true,
		IsIncoming: false,
		CallerID:   callerID,
		ReceiverID: receiverID,
		Type:       callType,
	}

	msg, err := s.sendMessageLocked(callerID, receiverID,
		fmt.Sprintf("Started %s call", callType), models.MessageCallLog, callType)
	if err != nil {
		s.call = models.CallState{Type: models.CallAudio}
		return nil, nil, err
	}

	logrus.WithFields(logrus.Fields{"caller": callerID, "receiver": receiverID, "type": callType}).Info("Call started")
	call := s.call
	return &call, msg, nil
}

// AcceptCall clears the incoming flag and stamps the start time.
func (s *Store) AcceptCall() (*models.CallState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.call.IsActive {
		return nil, ErrNoActiveCall
	}
	s.call.IsIncoming = false
	s.call.StartTime = time.Now().UnixMilli()
	call := s.call
	return &call, nil
}

// EndCall resets the call state to inactive regardless of its phase.
func (s *Store) EndCall() models.CallState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.call = models.CallState{Type: models.CallAudio}
	logrus.Info("Call ended")
	return s.call
}

// CallState returns a snapshot of the current call.
func (s *Store) CallState() models.CallState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.call
}

// MarkStaleOffline flips online users whose last activity is older than the
// idle window to offline, returning the ids it touched.
func (s *Store) MarkStaleOffline(idle time.Duration) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	var touched []string
	for i := range s.users {
		if s.users[i].Status == models.StatusOnline && s.users[i].LastSeen.Before(cutoff) {
			s.users[i].Status = models.StatusOffline
			touched = append(touched, s.users[i].ID)
		}
	}
	if len(touched) == 0 {
		return nil, nil
	}
	if err := s.persistUsers(); err != nil {
		return nil, err
	}
	return touched, nil
}

// Touch refreshes a user's last-seen stamp without changing anything else.
func (s *Store) Touch(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user := s.userByID(userID); user != nil {
		user.LastSeen = time.Now()
		// Best effort; a failed mirror here only ages the stamp.
		if err := s.persistUsers(); err != nil {
			logrus.WithError(err).Warn("Failed to persist last-seen update")
		}
	}
}

func (s *Store) userByID(id string) *models.User {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i]
		}
	}
	return nil
}

func (s *Store) firstAdmin() *models.User {
	for i := range s.users {
		if s.users[i].Role == models.RoleAdmin {
			return &s.users[i]
		}
	}
	return nil
}
