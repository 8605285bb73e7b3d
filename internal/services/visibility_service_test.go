package services

import (
	"testing"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanView(t *testing.T) {
	svc := NewVisibilityService()

	self := primitive.NewObjectID()
	friend := primitive.NewObjectID()
	follower := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	blocked := primitive.NewObjectID()

	subject := func(visibility string) *models.User {
		return &models.User{
			ID:         self,
			Visibility: visibility,
			Friends:    []primitive.ObjectID{friend},
			Followers:  []primitive.ObjectID{follower},
			Blocked:    []primitive.ObjectID{blocked},
		}
	}

	tests := []struct {
		name          string
		visibility    string
		viewer        primitive.ObjectID
		authenticated bool
		want          bool
	}{
		{"self sees own activity on public", models.VisibilityPublic, self, true, true},
		{"self sees own activity even when off", models.VisibilityOff, self, true, true},
		{"self sees own activity on friends", models.VisibilityFriends, self, true, true},
		{"public visible to stranger", models.VisibilityPublic, stranger, true, true},
		{"public hidden from anonymous", models.VisibilityPublic, stranger, false, false},
		{"off hidden from friend", models.VisibilityOff, friend, true, false},
		{"off hidden from stranger", models.VisibilityOff, stranger, true, false},
		{"followers visible to follower", models.VisibilityFollowers, follower, true, true},
		{"followers visible to friend", models.VisibilityFollowers, friend, true, true},
		{"followers hidden from stranger", models.VisibilityFollowers, stranger, true, false},
		{"friends visible to friend", models.VisibilityFriends, friend, true, true},
		{"friends hidden from follower", models.VisibilityFriends, follower, true, false},
		{"friends hidden from stranger", models.VisibilityFriends, stranger, true, false},
		{"blocked viewer denied on public", models.VisibilityPublic, blocked, true, false},
		{"unknown level fails closed", "everyone", stranger, true, false},
		{"empty level fails closed", "", friend, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CanView(subject(tt.visibility), tt.viewer, tt.authenticated)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanViewNilSubject(t *testing.T) {
	svc := NewVisibilityService()
	assert.False(t, svc.CanView(nil, primitive.NewObjectID(), true))
}
