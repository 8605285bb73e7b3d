package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// CandidateEventWindow is the recency floor for generator input: only active
// events started within this window of now are considered, which bounds
// per-request generation cost.
const CandidateEventWindow = 24 * time.Hour

// SocialGraph is the read-only user graph the feed depends on.
type SocialGraph interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// EventDirectory supplies candidate events for the generators.
type EventDirectory interface {
	GetEventsInvolving(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error)
}

// ActivityStore is the append-only record store.
type ActivityStore interface {
	CreateRecords(ctx context.Context, records []models.ActivityRecord) error
	GetViewerRecords(ctx context.Context, viewerID primitive.ObjectID, since *time.Time, skip, limit int64) ([]models.ActivityRecord, error)
	GetViewerRecordsSince(ctx context.Context, viewerID primitive.ObjectID, since time.Time, limit int64) ([]models.ActivityRecord, error)
}

// FeedPage is one page of a viewer's merged feed.
type FeedPage struct {
	Records  []models.ActivityRecord `json:"records"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Count    int                     `json:"count"`
}

// FeedService orchestrates the generators over a viewer's social graph,
// persists what they produce, and returns the paginated merged view.
type FeedService struct {
	users      SocialGraph
	events     EventDirectory
	activities ActivityStore
	visibility *VisibilityService
}

func NewFeedService(users SocialGraph, events EventDirectory, activities ActivityStore, visibility *VisibilityService) *FeedService {
	return &FeedService{
		users:      users,
		events:     events,
		activities: activities,
		visibility: visibility,
	}
}

// GetFeed builds and returns one page of the viewer's activity feed.
// Pagination is offset-based; concurrent inserts between page fetches can
// skip or repeat items, which is an accepted trade-off for this feed.
//
// A failure loading the social graph fails the whole call. A failure
// persisting freshly generated records does not: the call degrades to
// returning whatever was previously persisted.
func (s *FeedService) GetFeed(ctx context.Context, viewerID primitive.ObjectID, page, pageSize int, since *time.Time) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load viewer: %v", err)
	}

	now := time.Now()

	var friends []models.User
	var candidates []models.Event

	// The two generator inputs are independent reads.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.users.GetUsersByIDs(gctx, viewer.Friends)
		if err != nil {
			return fmt.Errorf("failed to load friends: %v", err)
		}
		friends = loaded
		return nil
	})
	g.Go(func() error {
		loaded, err := s.events.GetEventsInvolving(gctx, viewer.Friends, now.Add(-CandidateEventWindow))
		if err != nil {
			return fmt.Errorf("failed to load candidate events: %v", err)
		}
		candidates = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Only friends whose visibility admits this viewer feed the generators.
	visible := make([]models.User, 0, len(friends))
	for i := range friends {
		if s.visibility.CanView(&friends[i], viewerID, true) {
			visible = append(visible, friends[i])
		}
	}

	generated := GenerateUserActivity(viewer, visible, candidates, now)
	generated = append(generated, GenerateEventActivity(viewerID, candidates, now)...)

	if err := s.activities.CreateRecords(ctx, generated); err != nil {
		// Degrade to the read path rather than failing the fetch.
		logrus.WithError(err).WithField("viewerID", viewerID.Hex()).
			Warn("Failed to persist generated activity, serving stored records only")
	}

	skip := int64(page-1) * int64(pageSize)
	records, err := s.activities.GetViewerRecords(ctx, viewerID, since, skip, int64(pageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %v", err)
	}

	return &FeedPage{
		Records:  records,
		Page:     page,
		PageSize: pageSize,
		Count:    len(records),
	}, nil
}

// GetDelta returns records newer than the client's watermark, oldest first,
// read-only. Polling clients call this on a timer and stage the result with
// StageRefresh before applying it to the visible list.
//
// The result may be truncated at limit, but it is always contiguous with the
// watermark: a client that advances its watermark to the newest record it
// received picks up the remainder on the next poll, so no record is skipped.
func (s *FeedService) GetDelta(ctx context.Context, viewerID primitive.ObjectID, since time.Time, limit int) ([]models.ActivityRecord, error) {
	if limit < 1 {
		limit = 100
	}
	records, err := s.activities.GetViewerRecordsSince(ctx, viewerID, since, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read feed delta: %v", err)
	}
	return records, nil
}
