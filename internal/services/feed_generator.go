package services

import (
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// TrendingAttendeeThreshold is the attendance above which an event is
	// surfaced as popular.
	TrendingAttendeeThreshold = 15

	// UpcomingWindow is how far ahead an event may start and still be
	// surfaced as coming up.
	UpcomingWindow = 48 * time.Hour

	// FreshnessWindow bounds how recent a friend's profile or status change
	// must be to produce a record on this generation pass.
	FreshnessWindow = 24 * time.Hour
)

// The generators are pure: they read their inputs and emit records, never
// touching the store. That makes re-running them safe; the aggregator alone
// decides what gets persisted.

// GenerateUserActivity emits records about the subject's friends: profile
// and status changes, accepted friendships, and events the friends host or
// joined among the candidate set.
func GenerateUserActivity(subject *models.User, friends []models.User, events []models.Event, now time.Time) []models.ActivityRecord {
	var records []models.ActivityRecord

	emit := func(kind string, actor models.UserSummary, target models.ActivityTarget, ts time.Time) {
		rec, err := models.NewUserActivity(kind, subject.ID, actor, target, ts)
		if err != nil {
			return
		}
		records = append(records, *rec)
	}

	for i := range friends {
		friend := &friends[i]
		actor := friend.Summary()

		if friend.UpdatedAt.After(now.Add(-FreshnessWindow)) {
			emit(models.ActivityProfileChanged, actor, models.ActivityTarget{
				Text: fmt.Sprintf("%s updated their profile", friend.Username),
			}, friend.UpdatedAt)
		}

		if friend.Status != nil && friend.Status.PostedAt.After(now.Add(-FreshnessWindow)) {
			emit(models.ActivityStatusPosted, actor, models.ActivityTarget{
				Text: friend.Status.Text,
			}, friend.Status.PostedAt)
		}

		if friend.HasFriend(subject.ID) {
			emit(models.ActivityFriendAccepted, actor, models.ActivityTarget{
				Text: fmt.Sprintf("You and %s are now friends", friend.Username),
			}, now)
		}

		for j := range events {
			event := &events[j]
			eventID := event.ID
			target := models.ActivityTarget{
				EventID:   &eventID,
				EventName: event.Name,
				Location:  event.Location,
			}
			if event.HostID == friend.ID {
				target.Text = fmt.Sprintf("%s is hosting %q", friend.Username, event.Name)
				emit(models.ActivityEventHosted, actor, target, now)
			} else if event.IsAttendee(friend.ID) {
				target.Text = fmt.Sprintf("%s joined %q", friend.Username, event.Name)
				emit(models.ActivityEventJoined, actor, target, now)
			}
		}
	}

	return records
}

// GenerateEventActivity classifies candidate events as trending and/or
// upcoming. The two flags are independent: a single event can produce both
// records, or neither.
func GenerateEventActivity(viewerID primitive.ObjectID, events []models.Event, now time.Time) []models.ActivityRecord {
	var records []models.ActivityRecord

	emit := func(kind string, actor models.EventSummary, target models.ActivityTarget) {
		rec, err := models.NewEventActivity(kind, viewerID, actor, target, now)
		if err != nil {
			return
		}
		records = append(records, *rec)
	}

	for i := range events {
		event := &events[i]
		actor := event.Summary()
		eventID := event.ID

		if len(event.Attendees) > TrendingAttendeeThreshold {
			emit(models.ActivityEventPopular, actor, models.ActivityTarget{
				EventID:   &eventID,
				EventName: event.Name,
				Location:  event.Location,
				Text:      fmt.Sprintf("%q is trending with %d people going", event.Name, len(event.Attendees)),
			})
		}

		until := event.StartTime.Sub(now)
		if until > 0 && until <= UpcomingWindow {
			emit(models.ActivityEventComingUp, actor, models.ActivityTarget{
				EventID:   &eventID,
				EventName: event.Name,
				Location:  event.Location,
				Text:      fmt.Sprintf("%q starts soon at %s", event.Name, event.Location),
			})
		}
	}

	return records
}
