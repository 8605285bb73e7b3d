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

// Sort orders for viewer queries. The _id tiebreak keeps the ordering
// stable within a fixed snapshot: records produced in one generation pass
// share a single timestamp, so page boundaries routinely fall inside an
// equal-timestamp group.
var (
	viewerSortNewestFirst = bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}
	viewerSortOldestFirst = bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}
)

// ActivityRepository owns the append-only activity records collection.
// Records are never updated or deleted once inserted.
type ActivityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activity_records"),
	}
}

// CreateRecords appends a batch of activity records. The insert is unordered:
// one failed document does not abort the rest of the batch.
func (r *ActivityRepository) CreateRecords(ctx context.Context, records []models.ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(records))
	for i := range records {
		docs = append(docs, records[i])
	}

	opts := options.InsertMany().SetOrdered(false)
	if _, err := r.collection.InsertMany(ctx, docs, opts); err != nil {
		logrus.WithError(err).Error("Failed to insert activity records")
		return fmt.Errorf("failed to insert activity records: %v", err)
	}
	return nil
}

// GetViewerRecords fetches a viewer's records sorted newest first.
// since, when non-nil, restricts the result to records strictly newer than it.
func (r *ActivityRepository) GetViewerRecords(ctx context.Context, viewerID primitive.ObjectID, since *time.Time, skip, limit int64) ([]models.ActivityRecord, error) {
	filter := bson.M{"viewer_id": viewerID}
	if since != nil {
		filter["timestamp"] = bson.M{"$gt": *since}
	}

	opts := options.Find().
		SetSort(viewerSortNewestFirst).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.ActivityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode activity records: %v", err)
	}
	return records, nil
}

// GetViewerRecordsSince fetches records strictly newer than since, oldest
// first. Ascending order keeps a limit-truncated result contiguous with the
// caller's watermark: advancing the watermark to the last record received
// picks up the remainder on the next poll.
func (r *ActivityRepository) GetViewerRecordsSince(ctx context.Context, viewerID primitive.ObjectID, since time.Time, limit int64) ([]models.ActivityRecord, error) {
	filter := bson.M{
		"viewer_id": viewerID,
		"timestamp": bson.M{"$gt": since},
	}

	opts := options.Find().
		SetSort(viewerSortOldestFirst).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity records: %v", err)
	}
	defer cursor.Close(ctx)

	var records []models.ActivityRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode activity records: %v", err)
	}
	return records, nil
}
