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

// EventService handles business logic for the event lifecycle: hosting,
// joining, leaving, canceling. Leaving close to start time routes through
// the reputation service for the cancellation penalty.
type EventService struct {
	eventRepo  *repository.EventRepository
	reputation *ReputationService
}

func NewEventService(eventRepo *repository.EventRepository, reputation *ReputationService) *EventService {
	return &EventService{
		eventRepo:  eventRepo,
		reputation: reputation,
	}
}

// CreateEvent creates a new active event hosted by hostID.
func (s *EventService) CreateEvent(ctx context.Context, hostID primitive.ObjectID, event *models.Event) (*models.Event, error) {
	if event.Name == "" {
		return nil, fmt.Errorf("event name is required")
	}
	if event.StartTime.Before(time.Now()) {
		return nil, fmt.Errorf("event start time must be in the future")
	}

	event.HostID = hostID
	event.Attendees = nil
	event.Banned = nil

	created, err := s.eventRepo.CreateEvent(ctx, event)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"eventID": created.ID.Hex(),
		"hostID":  hostID.Hex(),
	}).Info("Event created")
	return created, nil
}

// GetEvent fetches a single event.
func (s *EventService) GetEvent(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	return s.eventRepo.GetEventByID(ctx, id)
}

// GetUserEvents lists events the user hosts or attends.
func (s *EventService) GetUserEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	return s.eventRepo.GetUserEvents(ctx, userID)
}

// JoinEvent adds the user to the attendee set.
func (s *EventService) JoinEvent(ctx context.Context, eventID, userID primitive.ObjectID) error {
	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return ErrNotFound
	}

	if event.Status != models.EventStatusActive {
		return fmt.Errorf("event is not open for joining")
	}
	if event.IsBanned(userID) {
		return ErrForbidden
	}
	if event.HostID == userID {
		return fmt.Errorf("host is already part of the event")
	}

	if err := s.eventRepo.AddAttendee(ctx, eventID, userID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"eventID": eventID.Hex(),
		"userID":  userID.Hex(),
	}).Info("User joined event")
	return nil
}

// LeaveEvent removes the user from the attendee set and applies the
// last-minute cancellation penalty when the event starts within 24 hours.
func (s *EventService) LeaveEvent(ctx context.Context, eventID, userID primitive.ObjectID) error {
	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return ErrNotFound
	}

	if !event.IsAttendee(userID) {
		return fmt.Errorf("user is not attending this event")
	}

	if err := s.eventRepo.RemoveAttendee(ctx, eventID, userID); err != nil {
		return err
	}

	if err := s.reputation.ApplyLastMinuteCancel(ctx, userID, event, time.Now()); err != nil {
		// The leave itself succeeded; the penalty failure is logged, not
		// surfaced, so the user is not stuck attending.
		logrus.WithError(err).WithFields(logrus.Fields{
			"eventID": eventID.Hex(),
			"userID":  userID.Hex(),
		}).Error("Failed to apply cancellation penalty")
	}

	return nil
}

// CancelEvent transitions an active event to canceled. Host only.
func (s *EventService) CancelEvent(ctx context.Context, eventID, userID primitive.ObjectID) error {
	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return ErrNotFound
	}

	if event.HostID != userID {
		return ErrForbidden
	}
	if event.Status != models.EventStatusActive {
		return fmt.Errorf("only active events can be canceled")
	}

	return s.eventRepo.UpdateStatus(ctx, eventID, models.EventStatusCanceled)
}

// BanAttendee removes a user from the event and bans them from rejoining.
// Host only.
func (s *EventService) BanAttendee(ctx context.Context, eventID, hostID, userID primitive.ObjectID) error {
	event, err := s.eventRepo.GetEventByID(ctx, eventID)
	if err != nil {
		return ErrNotFound
	}

	if event.HostID != hostID {
		return ErrForbidden
	}
	if userID == hostID {
		return fmt.Errorf("host cannot ban themselves")
	}

	return s.eventRepo.BanAttendee(ctx, eventID, userID)
}
