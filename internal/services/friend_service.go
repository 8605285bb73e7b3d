package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FriendService handles business logic for managing friendships.
type FriendService struct {
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

// NewFriendService creates a new FriendService.
func NewFriendService(friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// SendFriendRequest creates a new friend request.
func (s *FriendService) SendFriendRequest(ctx context.Context, senderID, receiverID primitive.ObjectID) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot send a friend request to yourself")
	}

	receiver, err := s.userRepo.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, ErrNotFound
	}
	if receiver.HasBlocked(senderID) {
		return nil, ErrForbidden
	}
	if receiver.HasFriend(senderID) {
		return nil, fmt.Errorf("already friends")
	}

	if existing, err := s.friendRepo.GetPendingRequestBetween(ctx, senderID, receiverID); err == nil && existing != nil {
		return nil, fmt.Errorf("a pending request already exists")
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		CreatedAt:  time.Now(),
		Status:     models.FriendRequestPending,
	}

	return s.friendRepo.CreateRequest(ctx, request)
}

// GetPendingRequests fetches all pending requests for the receiver.
func (s *FriendService) GetPendingRequests(ctx context.Context, receiverID primitive.ObjectID) ([]models.FriendRequest, error) {
	return s.friendRepo.GetRequestsByReceiver(ctx, receiverID)
}

// RespondToRequest updates a friend request's status and updates user friend
// lists if accepted. An accepted friendship then shows up in both users'
// feeds through the user-activity generator.
func (s *FriendService) RespondToRequest(ctx context.Context, requestID primitive.ObjectID, accept bool) error {
	request, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("could not find request: %v", err)
	}

	if request.Status != models.FriendRequestPending {
		return fmt.Errorf("request already responded to")
	}

	status := models.FriendRequestRejected
	if accept {
		status = models.FriendRequestAccepted
	}

	if err := s.friendRepo.UpdateRequestStatus(ctx, requestID, status); err != nil {
		return err
	}

	if accept {
		if err := s.userRepo.AddFriend(ctx, request.SenderID, request.ReceiverID); err != nil {
			return fmt.Errorf("failed to add friend to sender: %v", err)
		}
		if err := s.userRepo.AddFriend(ctx, request.ReceiverID, request.SenderID); err != nil {
			return fmt.Errorf("failed to add friend to receiver: %v", err)
		}
	}

	return nil
}

// GetFriends returns summaries of the user's friends.
func (s *FriendService) GetFriends(ctx context.Context, userID primitive.ObjectID) ([]models.UserSummary, error) {
	friendIDs, err := s.userRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get friend IDs: %v", err)
	}

	if len(friendIDs) == 0 {
		return []models.UserSummary{}, nil
	}

	users, err := s.userRepo.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	return summaries, nil
}

// RemoveFriend removes each user from the other's friends list.
func (s *FriendService) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.userRepo.RemoveFriend(ctx, userID, friendID)
}
