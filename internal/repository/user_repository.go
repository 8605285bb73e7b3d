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

// ReputationDelta is a set of counter increments applied to a user document
// in a single atomic update.
type ReputationDelta struct {
	Karma             int
	EventsAttended    int
	EventsHosted      int
	LastMinuteCancels int
}

// UserRepository handles database operations related to users.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %v", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Failed to find user by email")
		return nil, fmt.Errorf("failed to find user by email: %v", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %v", err)
	}
	return &user, nil
}

// GetUsersByIDs fetches user details for a list of ObjectIDs (mainly for friends).
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	filter := bson.M{"_id": bson.M{"$in": ids}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %v", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %v", err)
	}
	return users, nil
}

// UpdateProfile sets the given profile fields and bumps updated_at, which is
// what the user-activity generator keys "profile changed" records on.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user profile")
		return fmt.Errorf("failed to update user: %v", err)
	}
	return nil
}

// SetStatus records the user's latest status post.
func (r *UserRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status *models.StatusPost) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to set status: %v", err)
	}
	return nil
}

// AddFriend adds friendID to userID's friends set.
func (r *UserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"friends": friendID}}, // avoid duplicates
	)
	if err != nil {
		return fmt.Errorf("failed to add friend: %v", err)
	}
	return nil
}

// RemoveFriend removes each user from the other's friend list.
func (r *UserRepository) RemoveFriend(ctx context.Context, userID1, userID2 primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID1},
		bson.M{"$pull": bson.M{"friends": userID2}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend from user %s: %v", userID1.Hex(), err)
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": userID2},
		bson.M{"$pull": bson.M{"friends": userID1}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove friend from user %s: %v", userID2.Hex(), err)
	}

	return nil
}

// GetFriendIDs returns the list of friends for a user.
func (r *UserRepository) GetFriendIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user for friend list: %v", err)
	}
	return user.Friends, nil
}

// BlockUser adds blockedID to userID's blocked set.
func (r *UserRepository) BlockUser(ctx context.Context, userID, blockedID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"blocked": blockedID}},
	)
	if err != nil {
		return fmt.Errorf("failed to block user: %v", err)
	}
	return nil
}

// UnblockUser removes blockedID from userID's blocked set.
func (r *UserRepository) UnblockUser(ctx context.Context, userID, blockedID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"blocked": blockedID}},
	)
	if err != nil {
		return fmt.Errorf("failed to unblock user: %v", err)
	}
	return nil
}

// SetVisibility changes the user's activity visibility level.
func (r *UserRepository) SetVisibility(ctx context.Context, userID primitive.ObjectID, level string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"visibility": level, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set visibility: %v", err)
	}
	return nil
}

// IncrementReputation applies all counter deltas in one atomic $inc and
// returns the post-update document, so the caller can derive the badge from
// the resulting counters. This must stay a single update: read-modify-write
// here would lose increments under concurrent event completions.
func (r *UserRepository) IncrementReputation(ctx context.Context, userID primitive.ObjectID, delta ReputationDelta) (*models.User, error) {
	update := bson.M{"$inc": bson.M{
		"karma_score":         delta.Karma,
		"events_attended":     delta.EventsAttended,
		"events_hosted":       delta.EventsHosted,
		"last_minute_cancels": delta.LastMinuteCancels,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID.Hex(),
			"error":  err,
		}).Error("Failed to increment reputation counters")
		return nil, fmt.Errorf("failed to increment reputation: %v", err)
	}
	return &user, nil
}

// SetQualityBadge writes the derived badge tier back to the user document.
func (r *UserRepository) SetQualityBadge(ctx context.Context, userID primitive.ObjectID, badge string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"quality_badge": badge}},
	)
	if err != nil {
		return fmt.Errorf("failed to set quality badge: %v", err)
	}
	return nil
}
