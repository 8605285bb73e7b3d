package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// MinRewardParticipants is the host-plus-attendees floor below which a
	// completed event issues no rewards. Keeps self-hosted solo events from
	// farming karma.
	MinRewardParticipants = 2

	// LastMinuteWindow is how close to start time a leave counts as a
	// last-minute cancel.
	LastMinuteWindow = 24 * time.Hour

	hostKarmaReward     = 2
	attendeeKarmaReward = 1
	lastMinutePenalty   = 10
)

// ReputationStore is the atomic counter surface the engine writes through.
type ReputationStore interface {
	IncrementReputation(ctx context.Context, userID primitive.ObjectID, delta repository.ReputationDelta) (*models.User, error)
	SetQualityBadge(ctx context.Context, userID primitive.ObjectID, badge string) error
}

// NotificationSink receives fire-and-forget reputation notifications.
type NotificationSink interface {
	Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error
}

// ReputationService owns every write to karma, attendance counters and the
// quality badge. No other component touches those fields.
type ReputationService struct {
	store         ReputationStore
	notifications NotificationSink
}

func NewReputationService(store ReputationStore, notifications NotificationSink) *ReputationService {
	return &ReputationService{
		store:         store,
		notifications: notifications,
	}
}

// ComputeBadge derives the badge tier from karma and attendance. First
// matching rule wins, in strict descending priority.
func ComputeBadge(karma, eventsAttended int) string {
	switch {
	case karma >= 90 && eventsAttended >= 20:
		return models.BadgePlatinum
	case karma >= 80 && eventsAttended >= 10:
		return models.BadgeGold
	case karma >= 60 && eventsAttended >= 5:
		return models.BadgeSilver
	default:
		return models.BadgeBronze
	}
}

// ApplyEventCompletion issues completion rewards for a finished event.
// Events with fewer than MinRewardParticipants total participants issue
// nothing. Host and attendee updates are independent writes: one user's
// failure does not block the others, and the first failure is reported.
func (s *ReputationService) ApplyEventCompletion(ctx context.Context, event *models.Event) error {
	if event.TotalParticipants() < MinRewardParticipants {
		logrus.WithField("eventID", event.ID.Hex()).
			Info("Skipping rewards for event below participant threshold")
		return nil
	}

	var firstErr error

	hostDelta := repository.ReputationDelta{
		Karma:          hostKarmaReward,
		EventsAttended: 1,
		EventsHosted:   1,
	}
	if err := s.applyDelta(ctx, event.HostID, hostDelta); err != nil {
		firstErr = fmt.Errorf("failed to reward host %s: %v", event.HostID.Hex(), err)
		logrus.WithError(err).WithField("userID", event.HostID.Hex()).Error("Failed to reward host")
	} else {
		eventID := event.ID
		_ = s.notifications.Notify(ctx, event.HostID, "karma_awarded",
			"Event completed",
			fmt.Sprintf("Your event %q wrapped up. You earned %d karma for hosting.", event.Name, hostKarmaReward),
			&eventID)
	}

	for _, attendeeID := range event.Attendees {
		delta := repository.ReputationDelta{
			Karma:          attendeeKarmaReward,
			EventsAttended: 1,
		}
		if err := s.applyDelta(ctx, attendeeID, delta); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to reward attendee %s: %v", attendeeID.Hex(), err)
			}
			logrus.WithError(err).WithField("userID", attendeeID.Hex()).Error("Failed to reward attendee")
			continue
		}
		eventID := event.ID
		_ = s.notifications.Notify(ctx, attendeeID, "karma_awarded",
			"Event completed",
			fmt.Sprintf("%q wrapped up. You earned %d karma for attending.", event.Name, attendeeKarmaReward),
			&eventID)
	}

	return firstErr
}

// ApplyLastMinuteCancel penalizes a user for leaving an event less than
// LastMinuteWindow before it starts. The check uses wall-clock time at the
// moment of leaving, not the time of the original join. Outside the window
// this is a no-op. Only active events carry the penalty: leaving an event
// the host already canceled costs nothing.
func (s *ReputationService) ApplyLastMinuteCancel(ctx context.Context, userID primitive.ObjectID, event *models.Event, now time.Time) error {
	if event.Status != models.EventStatusActive {
		return nil
	}
	if event.StartTime.Sub(now) >= LastMinuteWindow {
		return nil
	}

	delta := repository.ReputationDelta{
		Karma:             -lastMinutePenalty,
		LastMinuteCancels: 1,
	}
	if err := s.applyDelta(ctx, userID, delta); err != nil {
		return fmt.Errorf("failed to apply last-minute cancel penalty: %v", err)
	}

	eventID := event.ID
	_ = s.notifications.Notify(ctx, userID, "karma_penalty",
		"Last-minute cancellation",
		fmt.Sprintf("You left %q less than 24 hours before it starts. %d karma deducted.", event.Name, lastMinutePenalty),
		&eventID)

	logrus.WithFields(logrus.Fields{
		"userID":  userID.Hex(),
		"eventID": event.ID.Hex(),
	}).Info("Applied last-minute cancel penalty")
	return nil
}

// applyDelta increments the counters atomically and immediately writes the
// badge derived from the resulting counters, so the badge never lags.
func (s *ReputationService) applyDelta(ctx context.Context, userID primitive.ObjectID, delta repository.ReputationDelta) error {
	user, err := s.store.IncrementReputation(ctx, userID, delta)
	if err != nil {
		return err
	}

	badge := ComputeBadge(user.KarmaScore, user.EventsAttended)
	if badge != user.QualityBadge {
		if err := s.store.SetQualityBadge(ctx, userID, badge); err != nil {
			return err
		}
	}
	return nil
}
