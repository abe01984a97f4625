package jobs

import (
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/sirupsen/logrus"
)

// PresenceSweeper flips users offline when they have been idle longer than
// the configured window, catching clients that vanished without logging out.
type PresenceSweeper struct {
	Store *store.Store
	Hub   *ws.Hub
	Idle  time.Duration
}

// NewPresenceSweeper creates a new instance of PresenceSweeper.
func NewPresenceSweeper(st *store.Store, hub *ws.Hub, idle time.Duration) *PresenceSweeper {
	return &PresenceSweeper{Store: st, Hub: hub, Idle: idle}
}

// RunSweep marks stale online users offline and broadcasts the change. A
// live websocket counts as activity, so connected users are refreshed first.
func (p *PresenceSweeper) RunSweep() error {
	for _, id := range p.Hub.ConnectedIDs() {
		p.Store.Touch(id)
	}

	touched, err := p.Store.MarkStaleOffline(p.Idle)
	if err != nil {
		return err
	}
	for _, id := range touched {
		p.Hub.BroadcastStatus(id, models.StatusOffline)
	}
	if len(touched) > 0 {
		logrus.WithField("count", len(touched)).Info("Presence sweep marked idle users offline")
	}
	return nil
}
