package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity kinds. Closed set: records with any other kind are rejected
// at construction time and never reach the store.
const (
	ActivityProfileChanged = "profile_changed"
	ActivityFriendAccepted = "friend_accepted"
	ActivityEventJoined    = "event_joined"
	ActivityEventHosted    = "event_hosted"
	ActivityEventPopular   = "event_is_popular"
	ActivityEventComingUp  = "event_coming_up"
	ActivityStatusPosted   = "status_posted"
)

var userActivityKinds = map[string]bool{
	ActivityProfileChanged: true,
	ActivityFriendAccepted: true,
	ActivityEventJoined:    true,
	ActivityEventHosted:    true,
	ActivityStatusPosted:   true,
}

var eventActivityKinds = map[string]bool{
	ActivityEventPopular:  true,
	ActivityEventComingUp: true,
}

// ActivityTarget describes what happened; which fields are set depends on the kind.
type ActivityTarget struct {
	Text      string              `bson:"text,omitempty" json:"text,omitempty"`
	EventID   *primitive.ObjectID `bson:"event_id,omitempty" json:"event_id,omitempty"`
	EventName string              `bson:"event_name,omitempty" json:"event_name,omitempty"`
	Location  string              `bson:"location,omitempty" json:"location,omitempty"`
}

// ActivityRecord is one immutable feed entry, fanned out per viewer.
// Exactly one of ActorUser/ActorEvent is set, matching the kind.
type ActivityRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ViewerID   primitive.ObjectID `bson:"viewer_id" json:"viewer_id"`
	Kind       string             `bson:"kind" json:"kind"`
	ActorUser  *UserSummary       `bson:"actor_user,omitempty" json:"actor_user,omitempty"`
	ActorEvent *EventSummary      `bson:"actor_event,omitempty" json:"actor_event,omitempty"`
	Target     ActivityTarget     `bson:"target" json:"target"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`
}

// NewUserActivity builds a record whose actor is a user.
// The id is assigned here so client-side merge can dedup before persistence.
func NewUserActivity(kind string, viewerID primitive.ObjectID, actor UserSummary, target ActivityTarget, ts time.Time) (*ActivityRecord, error) {
	if !userActivityKinds[kind] {
		return nil, fmt.Errorf("invalid user activity kind %q", kind)
	}
	return &ActivityRecord{
		ID:        primitive.NewObjectID(),
		ViewerID:  viewerID,
		Kind:      kind,
		ActorUser: &actor,
		Target:    target,
		Timestamp: ts,
	}, nil
}

// NewEventActivity builds a record whose actor is an event.
func NewEventActivity(kind string, viewerID primitive.ObjectID, actor EventSummary, target ActivityTarget, ts time.Time) (*ActivityRecord, error) {
	if !eventActivityKinds[kind] {
		return nil, fmt.Errorf("invalid event activity kind %q", kind)
	}
	return &ActivityRecord{
		ID:         primitive.NewObjectID(),
		ViewerID:   viewerID,
		Kind:       kind,
		ActorEvent: &actor,
		Target:     target,
		Timestamp:  ts,
	}, nil
}
