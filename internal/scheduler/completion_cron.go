package cron

import (
	"context"

	"github.com/gatherly-app/gatherly/internal/jobs"
	"github.com/gatherly-app/gatherly/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartCompletionCron schedules the event completion batch pass and the
// notification cleanup. spec is a cron expression from configuration.
func StartCompletionCron(spec string, job *jobs.EventCompletionJob, notificationService *services.NotificationService) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(spec, func() {
		if err := job.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Event completion pass failed")
		}
	}); err != nil {
		logrus.WithError(err).Fatalf("Invalid completion cron spec %q", spec)
	}

	// Expired notification cleanup
	c.AddFunc("@daily", func() {
		if err := notificationService.DeleteExpiredNotifications(context.Background()); err != nil {
			logrus.WithError(err).Error("DeleteExpiredNotifications failed")
		}
	})

	c.Start()
	return c
}
