package jobs

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

type mockEventSource struct {
	snapshot     []models.Event
	snapshotErr  error
	completed    []primitive.ObjectID
	completeErrs map[primitive.ObjectID]error
	fetchCalls   int
}

func (m *mockEventSource) GetExpiredActiveEvents(ctx context.Context, now time.Time) ([]models.Event, error) {
	m.fetchCalls++
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	return m.snapshot, nil
}

func (m *mockEventSource) MarkCompleted(ctx context.Context, eventID primitive.ObjectID) error {
	if err := m.completeErrs[eventID]; err != nil {
		return err
	}
	m.completed = append(m.completed, eventID)
	return nil
}

type mockReputationEngine struct {
	applied []primitive.ObjectID
	errs    map[primitive.ObjectID]error
}

func (m *mockReputationEngine) ApplyEventCompletion(ctx context.Context, event *models.Event) error {
	m.applied = append(m.applied, event.ID)
	return m.errs[event.ID]
}

func expiredEvent(name string) models.Event {
	return models.Event{
		ID:        primitive.NewObjectID(),
		HostID:    primitive.NewObjectID(),
		Name:      name,
		StartTime: time.Now().Add(-2 * time.Hour),
		Status:    models.EventStatusActive,
		Attendees: []primitive.ObjectID{primitive.NewObjectID()},
	}
}

func TestRunCompletesAllExpiredEvents(t *testing.T) {
	first := expiredEvent("first")
	second := expiredEvent("second")
	source := &mockEventSource{snapshot: []models.Event{first, second}}
	engine := &mockReputationEngine{}

	job := NewEventCompletionJob(source, engine)
	err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{first.ID, second.ID}, engine.applied)
	assert.Equal(t, []primitive.ObjectID{first.ID, second.ID}, source.completed)
	// One snapshot per pass: events becoming eligible mid-run wait.
	assert.Equal(t, 1, source.fetchCalls)
}

func TestRunReputationFailureStillCompletesEvent(t *testing.T) {
	broken := expiredEvent("broken")
	healthy := expiredEvent("healthy")
	source := &mockEventSource{snapshot: []models.Event{broken, healthy}}
	engine := &mockReputationEngine{
		errs: map[primitive.ObjectID]error{broken.ID: errors.New("increment failed")},
	}

	job := NewEventCompletionJob(source, engine)
	err := job.Run(context.Background())
	require.NoError(t, err)

	// The failed event is still marked completed, and the pass continued.
	assert.Contains(t, source.completed, broken.ID)
	assert.Contains(t, source.completed, healthy.ID)
	assert.Len(t, engine.applied, 2)
}

func TestRunCompletionFailureDoesNotBlockLaterEvents(t *testing.T) {
	stuck := expiredEvent("stuck")
	next := expiredEvent("next")
	source := &mockEventSource{
		snapshot:     []models.Event{stuck, next},
		completeErrs: map[primitive.ObjectID]error{stuck.ID: errors.New("update failed")},
	}
	engine := &mockReputationEngine{}

	job := NewEventCompletionJob(source, engine)
	err := job.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []primitive.ObjectID{next.ID}, source.completed)
	assert.Len(t, engine.applied, 2)
}

func TestRunSnapshotFailureFailsPass(t *testing.T) {
	source := &mockEventSource{snapshotErr: errors.New("query failed")}
	job := NewEventCompletionJob(source, &mockReputationEngine{})

	err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestRunEmptySnapshotIsNoop(t *testing.T) {
	source := &mockEventSource{}
	engine := &mockReputationEngine{}
	job := NewEventCompletionJob(source, engine)

	err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, engine.applied)
	assert.Empty(t, source.completed)
}
