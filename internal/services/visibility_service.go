package services

import (
	"github.com/gatherly-app/gatherly/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VisibilityService decides whether a viewer may observe a subject's
// activity. It is a pure predicate over the subject document as loaded for
// the current request; results are never cached because the friend and
// follower graph changes underneath.
type VisibilityService struct{}

func NewVisibilityService() *VisibilityService {
	return &VisibilityService{}
}

// CanView reports whether viewerID may see subject's activity.
// authenticated must be false for anonymous callers, in which case only the
// subject themselves could ever pass (and they cannot be anonymous).
func (s *VisibilityService) CanView(subject *models.User, viewerID primitive.ObjectID, authenticated bool) bool {
	if subject == nil {
		return false
	}
	if authenticated && subject.ID == viewerID {
		// Self always sees own activity, regardless of level.
		return true
	}
	if !authenticated {
		return false
	}
	if subject.HasBlocked(viewerID) {
		return false
	}

	switch subject.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilityFollowers:
		return subject.HasFollower(viewerID) || subject.HasFriend(viewerID)
	case models.VisibilityFriends:
		return subject.HasFriend(viewerID)
	case models.VisibilityOff:
		return false
	default:
		// Unknown or unset level fails closed.
		return false
	}
}
