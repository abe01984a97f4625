package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/ipinfo"
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/storage"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct{}

func (stubLookup) Lookup(ctx context.Context) ipinfo.Info {
	return ipinfo.Fallback
}

func TestRunSweepMarksIdleUsersOffline(t *testing.T) {
	appStore, err := store.New(storage.NewMemory(), stubLookup{})
	require.NoError(t, err)

	_, err = appStore.Login(context.Background(), "admin", "12345")
	require.NoError(t, err)

	sweeper := NewPresenceSweeper(appStore, ws.NewHub(), time.Hour)
	require.NoError(t, sweeper.RunSweep())
	user, err := appStore.GetUser("admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnline, user.Status)

	// With a negative window everyone online is stale.
	sweeper.Idle = -time.Second
	require.NoError(t, sweeper.RunSweep())
	user, err = appStore.GetUser("admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, user.Status)
}
