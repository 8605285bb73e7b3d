package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventSource supplies the completion snapshot and the terminal transition.
type EventSource interface {
	GetExpiredActiveEvents(ctx context.Context, now time.Time) ([]models.Event, error)
	MarkCompleted(ctx context.Context, eventID primitive.ObjectID) error
}

// ReputationEngine issues completion rewards to host and attendees.
type ReputationEngine interface {
	ApplyEventCompletion(ctx context.Context, event *models.Event) error
}

// EventCompletionJob transitions expired active events to completed and
// drives the associated reputation rewards. Each invocation is one bounded
// pass over a snapshot taken at the start: events that become eligible
// mid-run wait for the next scheduled pass.
type EventCompletionJob struct {
	events     EventSource
	reputation ReputationEngine
}

func NewEventCompletionJob(events EventSource, reputation ReputationEngine) *EventCompletionJob {
	return &EventCompletionJob{
		events:     events,
		reputation: reputation,
	}
}

// Run processes the snapshot sequentially. Per-event failures are isolated:
// a failed reputation update is logged and the event is still marked
// completed, and a failed completion write does not block later events.
// Failed reputation updates are not retried within the pass; the next pass
// will not see the event again once it is completed.
func (j *EventCompletionJob) Run(ctx context.Context) error {
	now := time.Now()

	events, err := j.events.GetExpiredActiveEvents(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to fetch expired events: %v", err)
	}

	if len(events) == 0 {
		logrus.Info("Completion pass: no expired events")
		return nil
	}

	completed := 0
	failed := 0
	for i := range events {
		event := &events[i]

		if err := j.reputation.ApplyEventCompletion(ctx, event); err != nil {
			// Rewards failed for at least one participant; the event still
			// completes so the pass never revisits it.
			failed++
			logrus.WithError(err).WithField("eventID", event.ID.Hex()).
				Error("Failed to apply completion rewards")
		}

		if err := j.events.MarkCompleted(ctx, event.ID); err != nil {
			failed++
			logrus.WithError(err).WithField("eventID", event.ID.Hex()).
				Error("Failed to mark event completed")
			continue
		}
		completed++
	}

	logrus.WithFields(logrus.Fields{
		"snapshot":  len(events),
		"completed": completed,
		"failures":  failed,
	}).Info("Event completion pass finished")
	return nil
}
