package cron

import (
	"github.com/Dastan2209/Hideout_Messenger/internal/jobs"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartPresenceCronJobs runs the presence sweep every minute. A panicking
// sweep is recovered so it cannot take the scheduler down.
func StartPresenceCronJobs(sweeper *jobs.PresenceSweeper) *cron.Cron {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))

	c.AddFunc("@every 1m", func() {
		if err := sweeper.RunSweep(); err != nil {
			logrus.WithError(err).Error("Presence sweep failed")
		}
	})

	c.Start()
	return c
}
