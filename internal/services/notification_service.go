package services

import (
	"context"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService is the sink the reputation engine publishes into, plus
// the read surface for the notification endpoints.
type NotificationService struct {
	repo *repository.NotificationRepository
}

func NewNotificationService(repo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification for a user. Callers treat this as
// fire-and-forget: a failure is logged here and must not block the caller.
func (s *NotificationService) Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	notif := &models.Notification{
		UserID:   userID,
		Type:     notifType,
		Title:    title,
		Message:  message,
		Read:     false,
		TargetID: targetID,
	}

	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).WithField("userID", userID.Hex()).
			Warn("Failed to deliver notification")
		return err
	}
	return nil
}

// GetUserNotifications returns all notifications for a user.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, notifID)
}

// DeleteNotification deletes a specific notification.
func (s *NotificationService) DeleteNotification(ctx context.Context, notifID primitive.ObjectID) error {
	return s.repo.DeleteNotification(ctx, notifID)
}

// DeleteExpiredNotifications is called periodically by cron to drop old ones.
func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) error {
	return s.repo.DeleteExpiredNotifications(ctx)
}
