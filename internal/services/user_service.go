package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles registration, authentication and profile logic.
type UserService struct {
	userRepo   *repository.UserRepository
	visibility *VisibilityService
}

func NewUserService(userRepo *repository.UserRepository, visibility *VisibilityService) *UserService {
	return &UserService{
		userRepo:   userRepo,
		visibility: visibility,
	}
}

// RegisterUser creates a new account with a hashed password and defaults.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.Email == "" || user.Username == "" || user.HashedPassword == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.HashedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}
	user.HashedPassword = string(hashed)

	if user.Role == "" {
		user.Role = "user"
	}
	if user.Visibility == "" {
		user.Visibility = models.VisibilityPublic
	}
	user.QualityBadge = models.BadgeBronze
	user.KarmaScore = 0
	user.EventsAttended = 0
	user.EventsHosted = 0
	user.LastMinuteCancels = 0

	return s.userRepo.CreateUser(ctx, user)
}

// AuthenticateUser checks credentials and returns the user on success.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	return user, nil
}

// GetProfile returns a user's profile, subject to the visibility check.
// Forbidden results carry no detail about what was hidden.
func (s *UserService) GetProfile(ctx context.Context, requesterID, targetID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, ErrNotFound
	}

	if !s.visibility.CanView(user, requesterID, true) {
		return nil, ErrForbidden
	}

	return user, nil
}

// UpdateProfile applies profile field changes. The bumped updated_at is what
// surfaces a "profile changed" record in friends' feeds.
func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, username, handle, bio, avatarURL string) error {
	fields := bson.M{}
	if username != "" {
		fields["username"] = username
	}
	if handle != "" {
		fields["handle"] = handle
	}
	if bio != "" {
		fields["bio"] = bio
	}
	if avatarURL != "" {
		fields["avatar_url"] = avatarURL
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fields to update")
	}

	return s.userRepo.UpdateProfile(ctx, userID, fields)
}

// PostStatus replaces the user's current status post.
func (s *UserService) PostStatus(ctx context.Context, userID primitive.ObjectID, text string) error {
	if text == "" {
		return fmt.Errorf("status text is required")
	}

	status := &models.StatusPost{
		Text:     text,
		PostedAt: time.Now(),
	}
	if err := s.userRepo.SetStatus(ctx, userID, status); err != nil {
		return err
	}

	logrus.WithField("userID", userID.Hex()).Info("Status posted")
	return nil
}

// SetVisibility changes the user's activity visibility level.
func (s *UserService) SetVisibility(ctx context.Context, userID primitive.ObjectID, level string) error {
	switch level {
	case models.VisibilityPublic, models.VisibilityFollowers, models.VisibilityFriends, models.VisibilityOff:
	default:
		return fmt.Errorf("invalid visibility level %q", level)
	}
	return s.userRepo.SetVisibility(ctx, userID, level)
}

// BlockUser blocks another user from seeing this user's activity.
func (s *UserService) BlockUser(ctx context.Context, userID, blockedID primitive.ObjectID) error {
	if userID == blockedID {
		return fmt.Errorf("cannot block yourself")
	}
	return s.userRepo.BlockUser(ctx, userID, blockedID)
}

// UnblockUser lifts a block.
func (s *UserService) UnblockUser(ctx context.Context, userID, blockedID primitive.ObjectID) error {
	return s.userRepo.UnblockUser(ctx, userID, blockedID)
}
