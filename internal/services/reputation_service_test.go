package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatherly-app/gatherly/internal/models"
	"github.com/gatherly-app/gatherly/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mock reputation store backed by in-memory users.
type mockReputationStore struct {
	users          map[primitive.ObjectID]*models.User
	incrementErrs  map[primitive.ObjectID]error
	badgeWrites    map[primitive.ObjectID]string
	incrementCalls int
}

func newMockReputationStore(users ...*models.User) *mockReputationStore {
	m := &mockReputationStore{
		users:         map[primitive.ObjectID]*models.User{},
		incrementErrs: map[primitive.ObjectID]error{},
		badgeWrites:   map[primitive.ObjectID]string{},
	}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockReputationStore) IncrementReputation(ctx context.Context, userID primitive.ObjectID, delta repository.ReputationDelta) (*models.User, error) {
	m.incrementCalls++
	if err := m.incrementErrs[userID]; err != nil {
		return nil, err
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	user.KarmaScore += delta.Karma
	user.EventsAttended += delta.EventsAttended
	user.EventsHosted += delta.EventsHosted
	user.LastMinuteCancels += delta.LastMinuteCancels
	copied := *user
	return &copied, nil
}

func (m *mockReputationStore) SetQualityBadge(ctx context.Context, userID primitive.ObjectID, badge string) error {
	m.badgeWrites[userID] = badge
	if user, ok := m.users[userID]; ok {
		user.QualityBadge = badge
	}
	return nil
}

type mockNotificationSink struct {
	notified []primitive.ObjectID
	err      error
}

func (m *mockNotificationSink) Notify(ctx context.Context, userID primitive.ObjectID, notifType, title, message string, targetID *primitive.ObjectID) error {
	m.notified = append(m.notified, userID)
	return m.err
}

func newTestUser(karma, attended int) *models.User {
	return &models.User{
		ID:             primitive.NewObjectID(),
		KarmaScore:     karma,
		EventsAttended: attended,
		QualityBadge:   ComputeBadge(karma, attended),
	}
}

func TestComputeBadge(t *testing.T) {
	tests := []struct {
		name     string
		karma    int
		attended int
		want     string
	}{
		{"fresh account", 0, 0, models.BadgeBronze},
		{"silver floor", 60, 5, models.BadgeSilver},
		{"just below silver karma", 59, 5, models.BadgeBronze},
		{"gold floor", 80, 10, models.BadgeGold},
		{"high karma low attendance stays below gold", 95, 9, models.BadgeSilver},
		{"platinum floor", 90, 20, models.BadgePlatinum},
		{"platinum karma without attendance is gold", 90, 19, models.BadgeGold},
		{"negative karma", -30, 3, models.BadgeBronze},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeBadge(tt.karma, tt.attended))
		})
	}
}

func TestComputeBadgeDeterministic(t *testing.T) {
	// Same inputs always yield the same badge, independent of call order.
	first := ComputeBadge(85, 12)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ComputeBadge(85, 12))
	}
	assert.Equal(t, models.BadgeGold, first)
}

func TestApplyEventCompletionRewards(t *testing.T) {
	host := newTestUser(10, 0)
	attendee := newTestUser(5, 1)
	store := newMockReputationStore(host, attendee)
	sink := &mockNotificationSink{}
	svc := NewReputationService(store, sink)

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    host.ID,
		Name:      "Picnic",
		Attendees: []primitive.ObjectID{attendee.ID},
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 12, host.KarmaScore)
	assert.Equal(t, 1, host.EventsAttended)
	assert.Equal(t, 1, host.EventsHosted)

	assert.Equal(t, 6, attendee.KarmaScore)
	assert.Equal(t, 2, attendee.EventsAttended)
	assert.Equal(t, 0, attendee.EventsHosted)

	assert.ElementsMatch(t, []primitive.ObjectID{host.ID, attendee.ID}, sink.notified)
}

func TestApplyEventCompletionHostOnlyNoRewards(t *testing.T) {
	host := newTestUser(10, 0)
	store := newMockReputationStore(host)
	svc := NewReputationService(store, &mockNotificationSink{})

	event := &models.Event{
		ID:     primitive.NewObjectID(),
		HostID: host.ID,
		Name:   "Solo Show",
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	require.NoError(t, err)

	assert.Zero(t, store.incrementCalls)
	assert.Equal(t, 10, host.KarmaScore)
	assert.Equal(t, 0, host.EventsHosted)
}

func TestApplyEventCompletionAttendeeFailureDoesNotBlockOthers(t *testing.T) {
	host := newTestUser(0, 0)
	broken := newTestUser(0, 0)
	fine := newTestUser(0, 0)
	store := newMockReputationStore(host, broken, fine)
	store.incrementErrs[broken.ID] = errors.New("write timeout")
	svc := NewReputationService(store, &mockNotificationSink{})

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    host.ID,
		Name:      "Hike",
		Attendees: []primitive.ObjectID{broken.ID, fine.ID},
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	require.Error(t, err)

	// The failing attendee did not stop the remaining one.
	assert.Equal(t, 1, fine.KarmaScore)
	assert.Equal(t, 1, fine.EventsAttended)
	assert.Equal(t, 2, host.KarmaScore)
}

func TestApplyEventCompletionNotificationFailureIsSwallowed(t *testing.T) {
	host := newTestUser(0, 0)
	attendee := newTestUser(0, 0)
	store := newMockReputationStore(host, attendee)
	sink := &mockNotificationSink{err: errors.New("sink down")}
	svc := NewReputationService(store, sink)

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    host.ID,
		Attendees: []primitive.ObjectID{attendee.ID},
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	assert.NoError(t, err)
	assert.Equal(t, 2, host.KarmaScore)
}

func TestApplyLastMinuteCancelInsideWindow(t *testing.T) {
	user := newTestUser(50, 3)
	store := newMockReputationStore(user)
	sink := &mockNotificationSink{}
	svc := NewReputationService(store, sink)

	now := time.Now()
	event := &models.Event{
		ID:        primitive.NewObjectID(),
		Name:      "Dinner",
		StartTime: now.Add(23 * time.Hour),
		Status:    models.EventStatusActive,
	}

	err := svc.ApplyLastMinuteCancel(context.Background(), user.ID, event, now)
	require.NoError(t, err)

	assert.Equal(t, 40, user.KarmaScore)
	assert.Equal(t, 1, user.LastMinuteCancels)
	assert.Equal(t, []primitive.ObjectID{user.ID}, sink.notified)
}

func TestApplyLastMinuteCancelOutsideWindow(t *testing.T) {
	user := newTestUser(50, 3)
	store := newMockReputationStore(user)
	svc := NewReputationService(store, &mockNotificationSink{})

	now := time.Now()
	event := &models.Event{
		ID:        primitive.NewObjectID(),
		StartTime: now.Add(25 * time.Hour),
		Status:    models.EventStatusActive,
	}

	err := svc.ApplyLastMinuteCancel(context.Background(), user.ID, event, now)
	require.NoError(t, err)

	assert.Zero(t, store.incrementCalls)
	assert.Equal(t, 50, user.KarmaScore)
	assert.Equal(t, 0, user.LastMinuteCancels)
}

func TestApplyLastMinuteCancelCanceledEventNoPenalty(t *testing.T) {
	user := newTestUser(50, 3)
	store := newMockReputationStore(user)
	sink := &mockNotificationSink{}
	svc := NewReputationService(store, sink)

	// Inside the window, but the host already canceled: leaving is free.
	now := time.Now()
	event := &models.Event{
		ID:        primitive.NewObjectID(),
		StartTime: now.Add(2 * time.Hour),
		Status:    models.EventStatusCanceled,
	}

	err := svc.ApplyLastMinuteCancel(context.Background(), user.ID, event, now)
	require.NoError(t, err)

	assert.Zero(t, store.incrementCalls)
	assert.Equal(t, 50, user.KarmaScore)
	assert.Equal(t, 0, user.LastMinuteCancels)
	assert.Empty(t, sink.notified)
}

func TestBadgeRecomputedAfterCompletion(t *testing.T) {
	// karma 85, attended 12 is gold; one more attended event keeps it gold
	// because attendance is still short of platinum.
	attendee := newTestUser(85, 12)
	require.Equal(t, models.BadgeGold, attendee.QualityBadge)

	host := newTestUser(0, 0)
	store := newMockReputationStore(host, attendee)
	svc := NewReputationService(store, &mockNotificationSink{})

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    host.ID,
		Attendees: []primitive.ObjectID{attendee.ID},
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 86, attendee.KarmaScore)
	assert.Equal(t, 13, attendee.EventsAttended)
	assert.Equal(t, models.BadgeGold, attendee.QualityBadge)
}

func TestBadgePromotionWrittenImmediately(t *testing.T) {
	user := newTestUser(59, 5)
	require.Equal(t, models.BadgeBronze, user.QualityBadge)

	host := newTestUser(0, 0)
	store := newMockReputationStore(host, user)
	svc := NewReputationService(store, &mockNotificationSink{})

	event := &models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    host.ID,
		Attendees: []primitive.ObjectID{user.ID},
	}

	err := svc.ApplyEventCompletion(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, 60, user.KarmaScore)
	assert.Equal(t, models.BadgeSilver, store.badgeWrites[user.ID])
}
