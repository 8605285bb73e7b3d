package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FriendRepository owns the friend request edge collection. Accepted edges
// are also denormalized into each user document's friends array.
type FriendRepository struct {
	collection *mongo.Collection
}

func NewFriendRepository(db *mongo.Database) *FriendRepository {
	return &FriendRepository{
		collection: db.Collection("friend_requests"),
	}
}

func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	req.CreatedAt = time.Now()
	req.Status = models.FriendRequestPending

	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to send friend request: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	req.ID = insertedID

	return req, nil
}

func (r *FriendRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend request: %v", err)
	}
	return &request, nil
}

func (r *FriendRepository) GetRequestsByReceiver(ctx context.Context, receiverID primitive.ObjectID) ([]models.FriendRequest, error) {
	filter := bson.M{"receiver_id": receiverID, "status": models.FriendRequestPending}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find friend requests: %v", err)
	}
	defer cursor.Close(ctx)

	var requests []models.FriendRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode friend requests: %v", err)
	}
	return requests, nil
}

// GetPendingRequestBetween returns a pending request between the two users in
// either direction, if one exists.
func (r *FriendRepository) GetPendingRequestBetween(ctx context.Context, a, b primitive.ObjectID) (*models.FriendRequest, error) {
	filter := bson.M{
		"status": models.FriendRequestPending,
		"$or": []bson.M{
			{"sender_id": a, "receiver_id": b},
			{"sender_id": b, "receiver_id": a},
		},
	}

	var request models.FriendRequest
	err := r.collection.FindOne(ctx, filter).Decode(&request)
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *FriendRepository) UpdateRequestStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %v", err)
	}
	return nil
}
