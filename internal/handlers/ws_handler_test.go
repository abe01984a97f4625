package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The upgrade has to succeed through the full middleware chain, logging
// included, because that is the path production requests take.
func TestWebsocketPushRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)

	siteToken := unlockSite(t, router)
	adminToken, admin := login(t, router, siteToken, "admin", "12345")

	rec := doJSON(t, router, http.MethodPost, "/admin/users", adminToken,
		map[string]string{"username": "bob", "password": "pw1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	bobToken, bob := login(t, router, siteToken, "bob", "pw1")

	srv := httptest.NewServer(router)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + adminToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	rec = doJSON(t, router, http.MethodPost, "/chat/"+bob.ID, adminToken,
		map[string]string{"content": "welcome"})
	require.Equal(t, http.StatusOK, rec.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event struct {
		Type    string         `json:"type"`
		Message models.Message `json:"message"`
	}
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "message", event.Type)
	assert.Equal(t, "welcome", event.Message.Content)
	assert.Equal(t, admin.ID, event.Message.SenderID)
	assert.Equal(t, bob.ID, event.Message.ReceiverID)

	// The same push reaches the admin again when bob replies.
	rec = doJSON(t, router, http.MethodPost, "/chat/"+admin.ID, bobToken,
		map[string]string{"content": "thanks"})
	require.Equal(t, http.StatusOK, rec.Code)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "message", event.Type)
	assert.Equal(t, "thanks", event.Message.Content)
	assert.Equal(t, bob.ID, event.Message.SenderID)
}

func TestWebsocketRejectsMissingOrSiteToken(t *testing.T) {
	router, _ := newTestRouter(t)
	siteToken := unlockSite(t, router)

	srv := httptest.NewServer(router)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// A site scope token unlocks login only, never the socket.
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+siteToken, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
