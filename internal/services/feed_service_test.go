package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock collaborators
type mockSocialGraph struct {
	getUserByIDFunc   func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	getUsersByIDsFunc func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

func (m *mockSocialGraph) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.getUserByIDFunc != nil {
		return m.getUserByIDFunc(ctx, id)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSocialGraph) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if m.getUsersByIDsFunc != nil {
		return m.getUsersByIDsFunc(ctx, ids)
	}
	return nil, errors.New("not implemented")
}

type mockEventDirectory struct {
	getEventsInvolvingFunc func(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error)
}

func (m *mockEventDirectory) GetEventsInvolving(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
	if m.getEventsInvolvingFunc != nil {
		return m.getEventsInvolvingFunc(ctx, userIDs, since)
	}
	return nil, errors.New("not implemented")
}

type mockActivityStore struct {
	created   []models.ActivityRecord
	createErr error
	stored    []models.ActivityRecord
	readErr   error
	lastSkip  int64
	lastLimit int64
	lastSince *time.Time
}

func (m *mockActivityStore) CreateRecords(ctx context.Context, records []models.ActivityRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, records...)
	return nil
}

func (m *mockActivityStore) GetViewerRecords(ctx context.Context, viewerID primitive.ObjectID, since *time.Time, skip, limit int64) ([]models.ActivityRecord, error) {
	m.lastSince = since
	m.lastSkip = skip
	m.lastLimit = limit
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.stored, nil
}

// GetViewerRecordsSince behaves like the real store: stored records are
// assumed oldest-first, filtered strictly after since, capped at limit.
func (m *mockActivityStore) GetViewerRecordsSince(ctx context.Context, viewerID primitive.ObjectID, since time.Time, limit int64) ([]models.ActivityRecord, error) {
	m.lastSince = &since
	m.lastLimit = limit
	if m.readErr != nil {
		return nil, m.readErr
	}
	var out []models.ActivityRecord
	for _, rec := range m.stored {
		if !rec.Timestamp.After(since) {
			continue
		}
		out = append(out, rec)
		if int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func feedFixture() (*models.User, models.User, models.Event) {
	friendID := primitive.NewObjectID()
	viewer := &models.User{
		ID:      primitive.NewObjectID(),
		Friends: []primitive.ObjectID{friendID},
	}
	friend := models.User{
		ID:         friendID,
		Username:   "hana",
		Visibility: models.VisibilityPublic,
		UpdatedAt:  time.Now().Add(-48 * time.Hour),
	}
	event := models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    friendID,
		Name:      "Book Club",
		StartTime: time.Now().Add(6 * time.Hour),
		Status:    models.EventStatusActive,
	}
	return viewer, friend, event
}

func TestGetFeedGeneratesAndPersists(t *testing.T) {
	viewer, friend, event := feedFixture()

	store := &mockActivityStore{}
	svc := NewFeedService(
		&mockSocialGraph{
			getUserByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
				return viewer, nil
			},
			getUsersByIDsFunc: func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
				return []models.User{friend}, nil
			},
		},
		&mockEventDirectory{
			getEventsInvolvingFunc: func(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
				return []models.Event{event}, nil
			},
		},
		store,
		NewVisibilityService(),
	)

	page, err := svc.GetFeed(context.Background(), viewer.ID, 1, 20, nil)
	require.NoError(t, err)
	require.NotNil(t, page)

	// The friend hosts one candidate event: hosted + coming-up records.
	gotKinds := kinds(store.created)
	assert.Contains(t, gotKinds, models.ActivityEventHosted)
	assert.Contains(t, gotKinds, models.ActivityEventComingUp)
	for _, rec := range store.created {
		assert.Equal(t, viewer.ID, rec.ViewerID)
	}
}

func TestGetFeedSkipsHiddenFriends(t *testing.T) {
	viewer, friend, event := feedFixture()
	friend.Visibility = models.VisibilityOff

	store := &mockActivityStore{}
	svc := NewFeedService(
		&mockSocialGraph{
			getUserByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
				return viewer, nil
			},
			getUsersByIDsFunc: func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
				return []models.User{friend}, nil
			},
		},
		&mockEventDirectory{
			getEventsInvolvingFunc: func(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
				return []models.Event{event}, nil
			},
		},
		store,
		NewVisibilityService(),
	)

	_, err := svc.GetFeed(context.Background(), viewer.ID, 1, 20, nil)
	require.NoError(t, err)

	// No user-actor records about the hidden friend; the event generator
	// still runs because event activity is not per-friend.
	for _, rec := range store.created {
		assert.Nil(t, rec.ActorUser)
	}
}

func TestGetFeedGraphFailureFailsCall(t *testing.T) {
	svc := NewFeedService(
		&mockSocialGraph{
			getUserByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
				return nil, errors.New("store unavailable")
			},
		},
		&mockEventDirectory{},
		&mockActivityStore{},
		NewVisibilityService(),
	)

	_, err := svc.GetFeed(context.Background(), primitive.NewObjectID(), 1, 20, nil)
	assert.Error(t, err)
}

func TestGetFeedWriteFailureDegradesToRead(t *testing.T) {
	viewer, friend, event := feedFixture()

	previous := makeRecord(t, time.Now().Add(-time.Hour), "already stored")
	store := &mockActivityStore{
		createErr: errors.New("insert failed"),
		stored:    []models.ActivityRecord{previous},
	}

	svc := NewFeedService(
		&mockSocialGraph{
			getUserByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
				return viewer, nil
			},
			getUsersByIDsFunc: func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
				return []models.User{friend}, nil
			},
		},
		&mockEventDirectory{
			getEventsInvolvingFunc: func(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
				return []models.Event{event}, nil
			},
		},
		store,
		NewVisibilityService(),
	)

	page, err := svc.GetFeed(context.Background(), viewer.ID, 1, 20, nil)
	require.NoError(t, err)
	require.Len(t, page.Records, 1)
	assert.Equal(t, previous.ID, page.Records[0].ID)
}

func TestGetFeedPaginationOffsets(t *testing.T) {
	viewer, friend, _ := feedFixture()

	store := &mockActivityStore{}
	svc := NewFeedService(
		&mockSocialGraph{
			getUserByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
				return viewer, nil
			},
			getUsersByIDsFunc: func(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
				return []models.User{friend}, nil
			},
		},
		&mockEventDirectory{
			getEventsInvolvingFunc: func(ctx context.Context, userIDs []primitive.ObjectID, since time.Time) ([]models.Event, error) {
				return nil, nil
			},
		},
		store,
		NewVisibilityService(),
	)

	page, err := svc.GetFeed(context.Background(), viewer.ID, 3, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(20), store.lastSkip)
	assert.Equal(t, int64(10), store.lastLimit)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.PageSize)
}

func TestGetDeltaPassesWatermark(t *testing.T) {
	store := &mockActivityStore{}
	svc := NewFeedService(&mockSocialGraph{}, &mockEventDirectory{}, store, NewVisibilityService())

	since := time.Now().Add(-time.Minute)
	_, err := svc.GetDelta(context.Background(), primitive.NewObjectID(), since, 0)
	require.NoError(t, err)

	require.NotNil(t, store.lastSince)
	assert.True(t, store.lastSince.Equal(since))
	assert.Equal(t, int64(100), store.lastLimit)
}

// A delta larger than the limit must be delivered oldest first so that
// repeated polls, each advancing the watermark to the newest record
// received, eventually deliver every record with none skipped.
func TestGetDeltaTruncationResumesFromWatermark(t *testing.T) {
	base := time.Now().Add(-time.Hour)
	store := &mockActivityStore{}
	for i := 0; i < 150; i++ {
		store.stored = append(store.stored, makeRecord(t, base.Add(time.Duration(i+1)*time.Second), "update"))
	}

	svc := NewFeedService(&mockSocialGraph{}, &mockEventDirectory{}, store, NewVisibilityService())
	viewerID := primitive.NewObjectID()

	seen := make(map[primitive.ObjectID]bool)
	watermark := base
	for polls := 0; polls < 2; polls++ {
		delta, err := svc.GetDelta(context.Background(), viewerID, watermark, 0)
		require.NoError(t, err)
		for i, rec := range delta {
			if i > 0 {
				assert.True(t, !rec.Timestamp.Before(delta[i-1].Timestamp), "delta must be oldest first")
			}
			seen[rec.ID] = true
		}
		require.NotEmpty(t, delta)
		watermark = delta[len(delta)-1].Timestamp
	}

	assert.Len(t, seen, 150)
}
