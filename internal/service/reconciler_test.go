package service

import (
	"errors"
	"testing"
	"time"

	"karmahub/internal/coordinator/local"
	"karmahub/internal/domain"
	"karmahub/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcilerSweepResumesStalledAcceptances(t *testing.T) {
	h := newHarness(t)

	job, err := h.engine.CreateJob(h.ctx, userA, paidJobInput())
	require.NoError(t, err)
	chosen, err := h.engine.ApplyForJob(h.ctx, userB, job.JobID, "")
	require.NoError(t, err)
	_, err = h.engine.ApplyForJob(h.ctx, userC, job.JobID, "")
	require.NoError(t, err)

	h.store.InjectFault("applications.reject", errors.New("throttled"))
	_, err = h.engine.AcceptApplication(h.ctx, userA, job.JobID, chosen.ApplicationID, userB)
	_, partial := domain.AsPartialAcceptance(err)
	require.True(t, partial)

	r := NewReconciler(h.stores, h.engine, local.NewLocalCoordinator(), ReconcilerConfig{
		StaleAfter: time.Nanosecond,
		NodeID:     "node-1",
	}, logger.NewNopLogger())

	// still failing: the job stays pending
	resumed, err := r.Sweep(h.ctx)
	assert.Error(t, err)
	assert.Zero(t, resumed)

	h.store.ClearFault("applications.reject")

	resumed, err = r.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	stored, err := h.queries.GetJob(h.ctx, job.JobID)
	require.NoError(t, err)
	assert.False(t, stored.HasPendingAcceptance())
	assert.Len(t, h.queries.ListTicketsForJob(h.ctx, job.JobID), 1)

	resumed, err = r.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, resumed)
}

func TestReconcilerSkipsFreshAcceptances(t *testing.T) {
	h := newHarness(t)

	job, err := h.engine.CreateJob(h.ctx, userA, paidJobInput())
	require.NoError(t, err)
	application, err := h.engine.ApplyForJob(h.ctx, userB, job.JobID, "")
	require.NoError(t, err)

	h.store.InjectFault("tickets.create", errors.New("throttled"))
	_, err = h.engine.AcceptApplication(h.ctx, userA, job.JobID, application.ApplicationID, userB)
	require.Error(t, err)
	h.store.ClearFault("tickets.create")

	r := NewReconciler(h.stores, h.engine, local.NewLocalCoordinator(), ReconcilerConfig{
		StaleAfter: time.Hour,
		NodeID:     "node-1",
	}, logger.NewNopLogger())

	resumed, err := r.Sweep(h.ctx)
	require.NoError(t, err)
	assert.Zero(t, resumed, "a marker younger than stale_after may still be finishing")
}

func TestReconcilerStartStop(t *testing.T) {
	h := newHarness(t)
	coord := local.NewLocalCoordinator()

	r := NewReconciler(h.stores, h.engine, coord, ReconcilerConfig{
		Schedule: "@every 1s",
		NodeID:   "node-1",
	}, logger.NewNopLogger())

	require.NoError(t, r.Start(h.ctx))

	assert.Eventually(t, func() bool {
		data, err := coord.GetNode(DefaultLeaderPath)
		return err == nil && string(data) == "node-1"
	}, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, r.Stop(h.ctx))

	_, err := coord.GetNode(DefaultLeaderPath)
	assert.Error(t, err, "leadership is released on stop")
}

func TestReconcilerInvalidSchedule(t *testing.T) {
	h := newHarness(t)

	r := NewReconciler(h.stores, h.engine, local.NewLocalCoordinator(), ReconcilerConfig{
		Schedule: "not a schedule",
		NodeID:   "node-1",
	}, logger.NewNopLogger())

	assert.Error(t, r.Start(h.ctx))
}
