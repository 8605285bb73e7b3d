package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event lifecycle states. Completed is terminal.
const (
	EventStatusActive    = "active"
	EventStatusCanceled  = "canceled"
	EventStatusCompleted = "completed"
	EventStatusRemoved   = "removed"
)

// Event represents a hosted gathering users can join.
type Event struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	HostID      primitive.ObjectID   `bson:"host_id" json:"host_id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Location    string               `bson:"location" json:"location"`
	StartTime   time.Time            `bson:"start_time" json:"start_time"`
	Status      string               `bson:"status" json:"status"`
	Attendees   []primitive.ObjectID `bson:"attendees,omitempty" json:"attendees,omitempty"`
	Banned      []primitive.ObjectID `bson:"banned,omitempty" json:"banned,omitempty"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
}

// EventSummary is the compact event shape embedded in activity records.
type EventSummary struct {
	ID            primitive.ObjectID `bson:"id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Location      string             `bson:"location" json:"location"`
	AttendeeCount int                `bson:"attendee_count" json:"attendee_count"`
	StartTime     time.Time          `bson:"start_time" json:"start_time"`
}

// Summary returns the embeddable summary of the event.
func (e *Event) Summary() EventSummary {
	return EventSummary{
		ID:            e.ID,
		Name:          e.Name,
		Location:      e.Location,
		AttendeeCount: len(e.Attendees),
		StartTime:     e.StartTime,
	}
}

// IsAttendee reports whether id is in the attendee set.
func (e *Event) IsAttendee(id primitive.ObjectID) bool {
	return containsID(e.Attendees, id)
}

// IsBanned reports whether id has been banned from the event.
func (e *Event) IsBanned(id primitive.ObjectID) bool {
	return containsID(e.Banned, id)
}

// TotalParticipants counts the host plus all attendees.
func (e *Event) TotalParticipants() int {
	return len(e.Attendees) + 1
}
