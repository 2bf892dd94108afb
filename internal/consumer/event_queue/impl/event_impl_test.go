package consumer

import (
	"context"
	"errors"
	"testing"

	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecomputer struct {
	calls []string
	err   error
}

func (r *countingRecomputer) RecomputeRating(ctx context.Context, userID string) error {
	r.calls = append(r.calls, userID)
	return r.err
}

type countingSettler struct {
	calls []string
	err   error
}

func (s *countingSettler) AutoSettle(ctx context.Context, ticketID string) error {
	s.calls = append(s.calls, ticketID)
	return s.err
}

type fixture struct {
	store    *memory.Store
	ratings  *countingRecomputer
	settler  *countingSettler
	consumer *eventConsumer
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		store:   store,
		ratings: &countingRecomputer{},
		settler: &countingSettler{},
	}
	f.consumer = NewEventConsumer(store.ActivityLog(), f.ratings, f.settler, logger.NewNopLogger()).(*eventConsumer)
	return f
}

func (f *fixture) activity(t *testing.T, userID string) []*domain.ActivityLogEntry {
	t.Helper()
	entries, err := f.store.ActivityLog().ListByUser(context.Background(), userID, 0)
	require.NoError(t, err)
	return entries
}

func TestRatingSubmittedRecomputesOnce(t *testing.T) {
	f := newFixture()
	ev := domain.NewEvent(domain.EventRatingSubmitted, "user-a", "rated a helper", map[string]string{
		domain.MetaRatedID: "user-b",
		domain.MetaScore:   "5",
	})

	assert.True(t, f.consumer.ProcessMessage(context.Background(), ev))
	assert.Equal(t, []string{"user-b"}, f.ratings.calls)
	assert.Empty(t, f.settler.calls)

	entries := f.activity(t, "user-a")
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EventRatingSubmitted, entries[0].Action)
	assert.Equal(t, "5", entries[0].Metadata[domain.MetaScore])
}

func TestTicketCompletedRunsAutoSettle(t *testing.T) {
	f := newFixture()
	ev := domain.NewEvent(domain.EventTicketCompleted, "user-b", "finished", map[string]string{
		domain.MetaTicketID: "t-1",
	})

	assert.True(t, f.consumer.ProcessMessage(context.Background(), ev))
	assert.Equal(t, []string{"t-1"}, f.settler.calls)
	assert.Len(t, f.activity(t, "user-b"), 1)
}

func TestActivityLoggedForEveryType(t *testing.T) {
	f := newFixture()
	for _, eventType := range []domain.EventType{domain.EventJobCreated, domain.EventJobApplied, domain.EventJobCancelled} {
		ev := domain.NewEvent(eventType, "user-a", string(eventType), map[string]string{domain.MetaJobID: "j-1"})
		assert.True(t, f.consumer.ProcessMessage(context.Background(), ev))
	}

	assert.Len(t, f.activity(t, "user-a"), 3)
	assert.Empty(t, f.ratings.calls)
	assert.Empty(t, f.settler.calls)
}

func TestRedeliveryDoesNotDuplicateActivity(t *testing.T) {
	f := newFixture()
	ev := domain.NewEvent(domain.EventJobCreated, "user-a", "created", nil)

	assert.True(t, f.consumer.ProcessMessage(context.Background(), ev))
	assert.True(t, f.consumer.ProcessMessage(context.Background(), ev))
	assert.Len(t, f.activity(t, "user-a"), 1)
}

func TestStoreFailuresAreRetried(t *testing.T) {
	t.Run("activity append", func(t *testing.T) {
		f := newFixture()
		f.store.InjectFault("activity.append", errors.New("throttled"))

		ev := domain.NewEvent(domain.EventRatingSubmitted, "user-a", "rated", map[string]string{domain.MetaRatedID: "user-b"})
		assert.False(t, f.consumer.ProcessMessage(context.Background(), ev))
		assert.Empty(t, f.ratings.calls)
	})

	t.Run("recompute", func(t *testing.T) {
		f := newFixture()
		f.ratings.err = domain.NewStoreError("profiles.update_rating", errors.New("throttled"))

		ev := domain.NewEvent(domain.EventRatingSubmitted, "user-a", "rated", map[string]string{domain.MetaRatedID: "user-b"})
		assert.False(t, f.consumer.ProcessMessage(context.Background(), ev))
	})
}

func TestUnretryableEventsAreDropped(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.Event
		err  error
	}{
		{
			name: "missing rated id",
			ev:   domain.NewEvent(domain.EventRatingSubmitted, "user-a", "rated", nil),
		},
		{
			name: "missing ticket",
			ev:   domain.NewEvent(domain.EventTicketCompleted, "user-b", "done", map[string]string{domain.MetaTicketID: "t-9"}),
			err:  domain.NotFoundError("ticket", "t-9"),
		},
		{
			name: "no type",
			ev:   domain.Event{EventID: "e-1", ActorID: "user-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.settler.err = tt.err
			assert.True(t, f.consumer.ProcessMessage(context.Background(), tt.ev))
		})
	}
}
