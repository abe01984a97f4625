package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/ipinfo"
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	info ipinfo.Info
}

func (s stubLookup) Lookup(ctx context.Context) ipinfo.Info {
	return s.info
}

func newTestStore(t *testing.T) (*Store, *storage.MemoryStorage) {
	t.Helper()
	mem := storage.NewMemory()
	s, err := New(mem, stubLookup{info: ipinfo.Info{IP: "203.0.113.7", City: "Almaty", Country: "Kazakhstan"}})
	require.NoError(t, err)
	return s, mem
}

func addUser(t *testing.T, s *Store, username, password string) *models.User {
	t.Helper()
	user, err := s.AddUser(models.User{Username: username, Password: password})
	require.NoError(t, err)
	return user
}

func TestSeedsDefaultAdmin(t *testing.T) {
	s, _ := newTestStore(t)

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "12345", users[0].Password)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, models.StatusOffline, users[0].Status)
}

func TestSitePassword(t *testing.T) {
	s, _ := newTestStore(t)

	assert.False(t, s.CheckSitePassword("wrong"))
	assert.True(t, s.CheckSitePassword("1234"))

	require.NoError(t, s.SetSitePassword("secret"))
	assert.False(t, s.CheckSitePassword("1234"))
	assert.True(t, s.CheckSitePassword("secret"))
	assert.Equal(t, "secret", s.SitePassword())
}

func TestLoginSuccess(t *testing.T) {
	s, _ := newTestStore(t)

	user, err := s.Login(context.Background(), "admin", "12345")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, user.Status)
	assert.Equal(t, "203.0.113.7", user.IP)
	assert.Equal(t, "Almaty, Kazakhstan", user.Location)

	stored, err := s.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, stored.Status)
}

func TestLoginInvalidCredentialsChangesNothing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(context.Background(), "ghost", "12345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, models.StatusOffline, users[0].Status)
}

func TestLoginLookupFallbackStillSucceeds(t *testing.T) {
	mem := storage.NewMemory()
	s, err := New(mem, stubLookup{info: ipinfo.Fallback})
	require.NoError(t, err)

	user, err := s.Login(context.Background(), "admin", "12345")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", user.IP)
	assert.Equal(t, "Localhost, Local Network", user.Location)
	assert.Equal(t, models.StatusOnline, user.Status)
}

func TestLogout(t *testing.T) {
	s, _ := newTestStore(t)

	user, err := s.Login(context.Background(), "admin", "12345")
	require.NoError(t, err)

	require.NoError(t, s.Logout(user.ID))
	stored, err := s.GetUser(user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, stored.Status)

	assert.ErrorIs(t, s.Logout("nope"), ErrUserNotFound)
}

func TestAddUserAutoFriendsAdmin(t *testing.T) {
	s, _ := newTestStore(t)

	bob := addUser(t, s, "bob", "pw1")
	assert.Equal(t, models.RoleUser, bob.Role)
	assert.Equal(t, models.StatusOffline, bob.Status)
	assert.NotEmpty(t, bob.Avatar)

	friends := s.Friends(bob.ID)
	require.Len(t, friends, 1)
	assert.Equal(t, "admin", friends[0].Username)

	// Symmetry: bob shows up on the admin side too.
	adminFriends := s.Friends("admin-1")
	require.Len(t, adminFriends, 1)
	assert.Equal(t, bob.ID, adminFriends[0].ID)
}

func TestAddUserDefaults(t *testing.T) {
	s, _ := newTestStore(t)

	user, err := s.AddUser(models.User{})
	require.NoError(t, err)
	assert.Equal(t, "User", user.Username)
	assert.Equal(t, "12345", user.Password)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "Pending", user.IP)
	assert.Equal(t, "Pending", user.Location)
}

func TestAddUserDuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)

	addUser(t, s, "bob", "pw1")
	_, err := s.AddUser(models.User{Username: "bob", Password: "pw2"})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
	assert.Len(t, s.Users(), 2)
}

func TestUpdateUserMergesFields(t *testing.T) {
	s, _ := newTestStore(t)
	bob := addUser(t, s, "bob", "pw1")

	newName := "bobby"
	newPwd := "pw2"
	updated, err := s.UpdateUser(bob.ID, UserUpdate{Username: &newName, Password: &newPwd})
	require.NoError(t, err)
	assert.Equal(t, "bobby", updated.Username)
	assert.Equal(t, "pw2", updated.Password)
	assert.Equal(t, models.RoleUser, updated.Role)

	_, err = s.UpdateUser("nope", UserUpdate{Username: &newName})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSendFriendRequestDeduplication(t *testing.T) {
	s, _ := newTestStore(t)
	carol := addUser(t, s, "carol", "pw")
	dave := addUser(t, s, "dave", "pw")

	_, err := s.SendFriendRequest(carol.ID, dave.ID)
	require.NoError(t, err)

	_, err = s.SendFriendRequest(carol.ID, dave.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	// The reverse direction is blocked too.
	_, err = s.SendFriendRequest(dave.ID, carol.ID)
	assert.ErrorIs(t, err, ErrDuplicateRequest)

	require.Len(t, s.PendingOutgoing(carol.ID), 1)
	require.Len(t, s.PendingIncoming(dave.ID), 1)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.SendFriendRequest("admin-1", "admin-1")
	assert.ErrorIs(t, err, ErrSelfRequest)
}

func TestRespondToFriendRequest(t *testing.T) {
	s, _ := newTestStore(t)
	carol := addUser(t, s, "carol", "pw")
	dave := addUser(t, s, "dave", "pw")

	req, err := s.SendFriendRequest(carol.ID, dave.ID)
	require.NoError(t, err)

	_, err = s.RespondToFriendRequest(req.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = s.RespondToFriendRequest(req.ID, models.RequestAccepted)
	require.NoError(t, err)

	// Terminal: a second answer is rejected.
	_, err = s.RespondToFriendRequest(req.ID, models.RequestRejected)
	assert.ErrorIs(t, err, ErrRequestClosed)

	// Acceptance makes the friendship visible from both sides.
	assert.Contains(t, usernames(s.Friends(carol.ID)), "dave")
	assert.Contains(t, usernames(s.Friends(dave.ID)), "carol")
}

func TestReRequestAfterRejection(t *testing.T) {
	s, _ := newTestStore(t)
	carol := addUser(t, s, "carol", "pw")
	dave := addUser(t, s, "dave", "pw")

	req, err := s.SendFriendRequest(carol.ID, dave.ID)
	require.NoError(t, err)
	_, err = s.RespondToFriendRequest(req.ID, models.RequestRejected)
	require.NoError(t, err)

	// A rejection does not lock the pair out forever.
	again, err := s.SendFriendRequest(carol.ID, dave.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, again.Status)
}

func TestCandidates(t *testing.T) {
	s, _ := newTestStore(t)
	carol := addUser(t, s, "carol", "pw")
	dave := addUser(t, s, "dave", "pw")
	erin := addUser(t, s, "erin", "pw")

	// carol is auto-friended with admin and sends dave a pending request.
	_, err := s.SendFriendRequest(carol.ID, dave.ID)
	require.NoError(t, err)

	names := usernames(s.Candidates(carol.ID))
	assert.NotContains(t, names, "carol")
	assert.NotContains(t, names, "admin")
	assert.NotContains(t, names, "dave")
	assert.Contains(t, names, "erin")

	// A rejected pair reappears in the candidate list.
	req, err := s.SendFriendRequest(carol.ID, erin.ID)
	require.NoError(t, err)
	_, err = s.RespondToFriendRequest(req.ID, models.RequestRejected)
	require.NoError(t, err)
	assert.Contains(t, usernames(s.Candidates(carol.ID)), "erin")
}

func TestChatThreadOrderingAndIsolation(t *testing.T) {
	s, _ := newTestStore(t)
	bob := addUser(t, s, "bob", "pw")
	carol := addUser(t, s, "carol", "pw")

	_, err := s.SendMessage(bob.ID, "admin-1", "hi admin", models.MessageText, "")
	require.NoError(t, err)
	_, err = s.SendMessage("admin-1", bob.ID, "hi bob", models.MessageText, "")
	require.NoError(t, err)
	_, err = s.SendMessage(bob.ID, carol.ID, "hi carol", models.MessageText, "")
	require.NoError(t, err)
	_, err = s.SendMessage(bob.ID, "admin-1", "are you there?", models.MessageText, "")
	require.NoError(t, err)

	thread := s.ChatThread(bob.ID, "admin-1")
	require.Len(t, thread, 3)
	assert.Equal(t, "hi admin", thread[0].Content)
	assert.Equal(t, "hi bob", thread[1].Content)
	assert.Equal(t, "are you there?", thread[2].Content)
	for i := 1; i < len(thread); i++ {
		assert.LessOrEqual(t, thread[i-1].Timestamp, thread[i].Timestamp)
	}

	// The same thread reads identically from the other side.
	assert.Equal(t, thread, s.ChatThread("admin-1", bob.ID))
}

func TestSendMessageUnknownSender(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.SendMessage("ghost", "admin-1", "boo", models.MessageText, "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCallLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	bob := addUser(t, s, "bob", "pw")

	call, logMsg, err := s.StartCall(bob.ID, "admin-1", models.CallVideo)
	require.NoError(t, err)
	assert.True(t, call.IsActive)
	assert.False(t, call.IsIncoming)
	assert.Equal(t, models.CallVideo, call.Type)
	assert.Equal(t, bob.ID, call.CallerID)

	// The call leaves a call_log message in the thread.
	require.NotNil(t, logMsg)
	assert.Equal(t, models.MessageCallLog, logMsg.Type)
	assert.Equal(t, "Started video call", logMsg.Content)
	thread := s.ChatThread(bob.ID, "admin-1")
	require.Len(t, thread, 1)
	assert.Equal(t, models.MessageCallLog, thread[0].Type)
	assert.Equal(t, models.CallVideo, thread[0].CallType)

	// Only one call at a time.
	_, _, err = s.StartCall("admin-1", bob.ID, models.CallAudio)
	assert.ErrorIs(t, err, ErrCallBusy)

	accepted, err := s.AcceptCall()
	require.NoError(t, err)
	assert.False(t, accepted.IsIncoming)
	assert.NotZero(t, accepted.StartTime)

	ended := s.EndCall()
	assert.False(t, ended.IsActive)
	assert.Equal(t, models.CallAudio, ended.Type)

	_, err = s.AcceptCall()
	assert.ErrorIs(t, err, ErrNoActiveCall)
}

func TestStartCallValidation(t *testing.T) {
	s, _ := newTestStore(t)

	_, _, err := s.StartCall("admin-1", "ghost", models.CallAudio)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = s.StartCall("admin-1", "admin-1", "hologram")
	assert.Error(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	s, _ := newTestStore(t)
	bob := addUser(t, s, "bob", "pw")
	carol := addUser(t, s, "carol", "pw")

	_, err := s.SendMessage(bob.ID, carol.ID, "hi", models.MessageText, "")
	require.NoError(t, err)
	_, err = s.SendFriendRequest(bob.ID, carol.ID)
	require.NoError(t, err)
	_, _, err = s.StartCall(bob.ID, carol.ID, models.CallAudio)
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(bob.ID))

	_, err = s.GetUser(bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, s.ChatThread(bob.ID, carol.ID))
	assert.Empty(t, s.PendingIncoming(carol.ID))
	assert.Equal(t, []string{"carol"}, usernames(s.Friends("admin-1")))
	assert.False(t, s.CallState().IsActive)
}

func TestDeleteAdminRejected(t *testing.T) {
	s, _ := newTestStore(t)
	assert.ErrorIs(t, s.DeleteUser("admin-1"), ErrDeleteAdmin)
	assert.ErrorIs(t, s.DeleteUser("ghost"), ErrUserNotFound)
}

func TestRoundTripReload(t *testing.T) {
	s, mem := newTestStore(t)
	bob := addUser(t, s, "bob", "pw1")
	_, err := s.Login(context.Background(), "bob", "pw1")
	require.NoError(t, err)
	_, err = s.SendMessage(bob.ID, "admin-1", "hi", models.MessageText, "")
	require.NoError(t, err)
	require.NoError(t, s.SetSitePassword("changed"))

	// A fresh store over the same storage sees the same world.
	reloaded, err := New(mem, stubLookup{})
	require.NoError(t, err)

	users := reloaded.Users()
	require.Len(t, users, 2)
	assert.Equal(t, s.Users()[1].ID, users[1].ID)
	assert.Equal(t, "bob", users[1].Username)
	assert.Equal(t, models.StatusOnline, users[1].Status)

	thread := reloaded.ChatThread(bob.ID, "admin-1")
	require.Len(t, thread, 1)
	assert.Equal(t, "hi", thread[0].Content)

	require.Len(t, reloaded.Friends(bob.ID), 1)
	assert.True(t, reloaded.CheckSitePassword("changed"))

	// Call state is ephemeral and must not survive.
	assert.False(t, reloaded.CallState().IsActive)
}

func TestMarkStaleOffline(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Login(context.Background(), "admin", "12345")
	require.NoError(t, err)

	// Fresh login is within any reasonable window.
	touched, err := s.MarkStaleOffline(time.Minute)
	require.NoError(t, err)
	assert.Empty(t, touched)

	touched, err = s.MarkStaleOffline(-time.Second)
	require.NoError(t, err)
	require.Len(t, touched, 1)
	assert.Equal(t, "admin-1", touched[0])

	user, err := s.GetUser("admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, user.Status)
}

// Scenario from the admin onboarding flow: provision bob, have him message
// the admin, and read the thread back in order.
func TestOnboardingScenario(t *testing.T) {
	s, _ := newTestStore(t)

	bob := addUser(t, s, "bob", "pw1")

	// Auto-friendship exists as an accepted request.
	require.Len(t, s.Friends(bob.ID), 1)

	logged, err := s.Login(context.Background(), "bob", "pw1")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, logged.ID)

	_, err = s.SendMessage(bob.ID, "admin-1", "hi", models.MessageText, "")
	require.NoError(t, err)

	thread := s.ChatThread(bob.ID, "admin-1")
	require.Len(t, thread, 1)
	assert.Equal(t, "hi", thread[0].Content)
	assert.Equal(t, bob.ID, thread[0].SenderID)
}

// failingStorage wraps MemoryStorage and fails Set for chosen names while
// recording every attempted write.
type failingStorage struct {
	*storage.MemoryStorage
	failOn map[string]bool
	sets   []string
}

func (f *failingStorage) Set(name string, value []byte) error {
	f.sets = append(f.sets, name)
	if f.failOn[name] {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Set(name, value)
}

func TestDeleteUserFlushesAllCollectionsOnPersistError(t *testing.T) {
	fs := &failingStorage{MemoryStorage: storage.NewMemory()}
	s, err := New(fs, stubLookup{})
	require.NoError(t, err)

	bob := addUser(t, s, "bob", "pw1")
	_, err = s.SendMessage(bob.ID, "admin-1", "hi", models.MessageText, "")
	require.NoError(t, err)

	fs.failOn = map[string]bool{storage.KeyUsers: true}
	fs.sets = nil

	err = s.DeleteUser(bob.ID)
	require.Error(t, err)

	// Messages and requests still reached the backend despite the failed
	// users write.
	assert.Equal(t, []string{storage.KeyUsers, storage.KeyMessages, storage.KeyFriendRequests}, fs.sets)

	// Memory runs ahead of the backend until the next successful flush.
	_, err = s.GetUser(bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddUserFlushesRequestsOnPersistError(t *testing.T) {
	fs := &failingStorage{MemoryStorage: storage.NewMemory()}
	s, err := New(fs, stubLookup{})
	require.NoError(t, err)

	fs.failOn = map[string]bool{storage.KeyUsers: true}
	fs.sets = nil

	_, err = s.AddUser(models.User{Username: "bob", Password: "pw1"})
	require.Error(t, err)
	assert.Equal(t, []string{storage.KeyUsers, storage.KeyFriendRequests}, fs.sets)
}

func usernames(users []models.User) []string {
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names
}
