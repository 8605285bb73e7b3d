package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Visibility levels controlling who may see a user's activity.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityFriends   = "friends"
	VisibilityOff       = "off"
)

// Quality badge tiers, derived from karma and attendance counters.
const (
	BadgeBronze   = "bronze"
	BadgeSilver   = "silver"
	BadgeGold     = "gold"
	BadgePlatinum = "platinum"
)

// StatusPost is the user's most recent status update, shown in friends' feeds.
type StatusPost struct {
	Text     string    `bson:"text" json:"text"`
	PostedAt time.Time `bson:"posted_at" json:"posted_at"`
}

// User represents a user account in Gatherly.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username       string               `bson:"username" json:"username"`
	Handle         string               `bson:"handle" json:"handle"`
	Email          string               `bson:"email" json:"email"`
	HashedPassword string               `bson:"hashed_password" json:"-"`
	Role           string               `bson:"role" json:"role"`
	AvatarURL      string               `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Visibility     string               `bson:"visibility" json:"visibility"`
	Friends        []primitive.ObjectID `bson:"friends,omitempty" json:"friends,omitempty"`
	Followers      []primitive.ObjectID `bson:"followers,omitempty" json:"followers,omitempty"`
	Blocked        []primitive.ObjectID `bson:"blocked,omitempty" json:"blocked,omitempty"`
	Status         *StatusPost          `bson:"status,omitempty" json:"status,omitempty"`

	// Reputation counters. Written only by the reputation service,
	// via atomic increments at the storage layer.
	KarmaScore        int    `bson:"karma_score" json:"karma_score"`
	EventsAttended    int    `bson:"events_attended" json:"events_attended"`
	EventsHosted      int    `bson:"events_hosted" json:"events_hosted"`
	LastMinuteCancels int    `bson:"last_minute_cancels" json:"last_minute_cancels"`
	QualityBadge      string `bson:"quality_badge" json:"quality_badge"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// UserSummary is the compact user shape embedded in activity records.
type UserSummary struct {
	ID        primitive.ObjectID `bson:"id" json:"id"`
	Username  string             `bson:"username" json:"username"`
	Handle    string             `bson:"handle" json:"handle"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
}

// Summary returns the embeddable summary of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Handle:    u.Handle,
		AvatarURL: u.AvatarURL,
	}
}

// HasFriend reports whether id is in the user's friends list.
func (u *User) HasFriend(id primitive.ObjectID) bool {
	return containsID(u.Friends, id)
}

// HasFollower reports whether id is in the user's followers list.
func (u *User) HasFollower(id primitive.ObjectID) bool {
	return containsID(u.Followers, id)
}

// HasBlocked reports whether the user has blocked id.
func (u *User) HasBlocked(id primitive.ObjectID) bool {
	return containsID(u.Blocked, id)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
