package service

import (
	"context"
	"sync"
	"testing"

	memoryCache "karmahub/internal/cache/memory"
	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType domain.EventType) []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type recordingReporter struct {
	mu    sync.Mutex
	views []string
}

func (r *recordingReporter) Report(ctx context.Context, view string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
}

func (r *recordingReporter) reported() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.views...)
}

type harness struct {
	ctx        context.Context
	store      *memory.Store
	stores     Stores
	publisher  *recordingPublisher
	reporter   *recordingReporter
	engine     LifecycleEngine
	queries    JobQueries
	profiles   ProfileService
	settlement SettlementService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithRule(t, "")
}

func newHarnessWithRule(t *testing.T, autoRule string) *harness {
	t.Helper()

	log := logger.NewNopLogger()
	store := memory.NewStore()
	stores := Stores{
		Jobs:         store.Jobs(),
		Applications: store.Applications(),
		Tickets:      store.Tickets(),
		Settlement:   store.Settlement(),
		Ratings:      store.Ratings(),
		Profiles:     store.Profiles(),
		ActivityLog:  store.ActivityLog(),
	}

	publisher := &recordingPublisher{}
	reporter := &recordingReporter{}
	profiles := NewProfileService(stores, memoryCache.NewMemoryCache(), 0, log)

	settlement, err := NewSettlementService(stores, profiles, autoRule, log)
	require.NoError(t, err)

	return &harness{
		ctx:        context.Background(),
		store:      store,
		stores:     stores,
		publisher:  publisher,
		reporter:   reporter,
		engine:     NewLifecycleEngine(stores, publisher, EngineConfig{}, log),
		queries:    NewJobQueries(stores, reporter, log),
		profiles:   profiles,
		settlement: settlement,
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}

func paidJobInput() domain.NewJobInput {
	return domain.NewJobInput{
		Title:       "Umzugshilfe",
		Description: "Kisten tragen",
		Category:    "moving",
		JobType:     domain.JobTypePaid,
		Budget:      float64Ptr(25),
		KarmaReward: 10,
		Location:    "Berlin",
	}
}

func goodDeedInput() domain.NewJobInput {
	return domain.NewJobInput{
		Title:    "Einkaufen für Nachbarin",
		Category: "errands",
		JobType:  domain.JobTypeGoodDeeds,
		Location: "Hamburg",
	}
}

// acceptedJob posts a job as creator, lets applicant apply and accepts the application
func (h *harness) acceptedJob(t *testing.T, in domain.NewJobInput, creator, applicant string) (*domain.Job, *AcceptanceResult) {
	t.Helper()

	job, err := h.engine.CreateJob(h.ctx, creator, in)
	require.NoError(t, err)

	application, err := h.engine.ApplyForJob(h.ctx, applicant, job.JobID, "")
	require.NoError(t, err)

	result, err := h.engine.AcceptApplication(h.ctx, creator, job.JobID, application.ApplicationID, applicant)
	require.NoError(t, err)

	return job, result
}

// completedJob runs a job through acceptance and completion
func (h *harness) completedJob(t *testing.T, in domain.NewJobInput, creator, applicant string) (*domain.Job, *domain.JobTicket) {
	t.Helper()

	job, result := h.acceptedJob(t, in, creator, applicant)

	ticket, err := h.engine.CompleteJob(h.ctx, applicant, result.Ticket.TicketID)
	require.NoError(t, err)

	return job, ticket
}
