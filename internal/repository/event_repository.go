package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EventRepository handles database operations related to events.
type EventRepository struct {
	collection *mongo.Collection
}

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

// CreateEvent inserts a new event in the active state.
func (r *EventRepository) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	event.Status = models.EventStatusActive
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, event)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert event")
		return nil, fmt.Errorf("failed to insert event: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	event.ID = insertedID

	return event, nil
}

// GetEventByID retrieves an event by its ID.
func (r *EventRepository) GetEventByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err != nil {
		return nil, fmt.Errorf("failed to find event: %v", err)
	}
	return &event, nil
}

// GetEventsInvolving returns active events where any of the given users is
// host or attendee, restricted to events starting after since. The recency
// floor bounds how much work the feed generators do per request.
func (r *EventRepository) GetEventsInvolving(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
	if len(userIDs) == 0 {
		return []models.Event{}, nil
	}

	filter := bson.M{
		"status":     models.EventStatusActive,
		"start_time": bson.M{"$gte": since},
		"$or": []bson.M{
			{"host_id": bson.M{"$in": userIDs}},
			{"attendees": bson.M{"$in": userIDs}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %v", err)
	}
	return events, nil
}

// GetExpiredActiveEvents returns the snapshot of events still active whose
// start time has passed. The batch processor takes this snapshot once per run.
func (r *EventRepository) GetExpiredActiveEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	filter := bson.M{
		"status":     models.EventStatusActive,
		"start_time": bson.M{"$lt": now},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expired events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode expired events: %v", err)
	}
	return events, nil
}

// GetUserEvents returns events the user hosts or attends, newest first.
func (r *EventRepository) GetUserEvents(ctx context.Context, userID primitive.ObjectID) ([]models.Event, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"host_id": userID},
			{"attendees": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user events: %v", err)
	}
	defer cursor.Close(ctx)

	var events []models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode user events: %v", err)
	}
	return events, nil
}

// AddAttendee adds a user to the attendee set.
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$addToSet": bson.M{"attendees": userID}}, // avoid duplicates
	)
	if err != nil {
		return fmt.Errorf("failed to add attendee: %v", err)
	}
	return nil
}

// RemoveAttendee removes a user from the attendee set.
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$pull": bson.M{"attendees": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove attendee: %v", err)
	}
	return nil
}

// BanAttendee removes a user from attendees and adds them to the banned set.
func (r *EventRepository) BanAttendee(ctx context.Context, eventID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{
			"$pull":     bson.M{"attendees": userID},
			"$addToSet": bson.M{"banned": userID},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to ban attendee: %v", err)
	}
	return nil
}

// UpdateStatus transitions the event to the given status.
func (r *EventRepository) UpdateStatus(ctx context.Context, eventID primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": eventID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update event status: %v", err)
	}
	return nil
}

// MarkCompleted transitions an event to the terminal completed state.
func (r *EventRepository) MarkCompleted(ctx context.Context, eventID primitive.ObjectID) error {
	if err := r.UpdateStatus(ctx, eventID, models.EventStatusCompleted); err != nil {
		return err
	}
	logrus.WithField("eventID", eventID.Hex()).Info("Event marked completed")
	return nil
}
