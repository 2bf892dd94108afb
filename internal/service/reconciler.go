package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	coordinator "karmahub/internal/coordinator/iface"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"

	"github.com/robfig/cron/v3"
)

const (
	DefaultReconcileSchedule = "@every 1m"
	DefaultStaleAfter        = 2 * time.Minute
	DefaultLeaderPath        = "/karmahub/reconciler/leader"
)

// Reconciler periodically resumes acceptances that stopped after the job was assigned.
// Only the node holding the leader path sweeps.
type Reconciler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// Sweep resumes every stale acceptance and returns how many finished
	Sweep(ctx context.Context) (int, error)
}

// ReconcilerConfig configures the acceptance reconciler
type ReconcilerConfig struct {
	Schedule   string
	StaleAfter time.Duration
	NodeID     string
	LeaderPath string
}

type reconciler struct {
	stores      Stores
	engine      LifecycleEngine
	coordinator coordinator.Coordinator
	cfg         ReconcilerConfig
	cron        *cron.Cron
	logger      logger.Logger
}

// NewReconciler creates the acceptance reconciler
func NewReconciler(
	stores Stores,
	engine LifecycleEngine,
	coord coordinator.Coordinator,
	cfg ReconcilerConfig,
	log logger.Logger,
) Reconciler {
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultReconcileSchedule
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if cfg.LeaderPath == "" {
		cfg.LeaderPath = DefaultLeaderPath
	}

	return &reconciler{
		stores:      stores,
		engine:      engine,
		coordinator: coord,
		cfg:         cfg,
		cron:        cron.New(cron.WithSeconds()),
		logger:      log.With(logger.String("component", "reconciler"), logger.String("node_id", cfg.NodeID)),
	}
}

// Start schedules the sweep
func (r *reconciler) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc(r.cfg.Schedule, func() {
		r.tick(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to add reconciler cron: %w", err)
	}

	r.cron.Start()

	r.logger.Info("reconciler started",
		logger.String("schedule", r.cfg.Schedule),
		logger.Duration("stale_after", r.cfg.StaleAfter))

	return nil
}

// Stop waits for a running sweep and gives up leadership
func (r *reconciler) Stop(ctx context.Context) error {
	cronCtx := r.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := r.coordinator.ReleaseLeadership(r.cfg.LeaderPath, r.cfg.NodeID); err != nil {
		r.logger.Warn("failed to release leadership", logger.Error(err))
	}
	metrics.IsLeader.WithLabelValues(r.cfg.NodeID).Set(0)

	return nil
}

func (r *reconciler) tick(ctx context.Context) {
	leader, err := r.coordinator.AcquireLeadership(r.cfg.LeaderPath, r.cfg.NodeID)
	if err != nil {
		r.logger.Error("failed to acquire leadership", logger.Error(err))
		metrics.IsLeader.WithLabelValues(r.cfg.NodeID).Set(0)
		metrics.ReconcilerRunsTotal.WithLabelValues("leadership_failed").Inc()
		return
	}
	if !leader {
		metrics.IsLeader.WithLabelValues(r.cfg.NodeID).Set(0)
		r.logger.Debug("not the leader, skipping sweep")
		return
	}
	metrics.IsLeader.WithLabelValues(r.cfg.NodeID).Set(1)

	if _, err := r.Sweep(ctx); err != nil {
		r.logger.Warn("sweep finished with errors", logger.Error(err))
	}
}

func (r *reconciler) Sweep(ctx context.Context) (int, error) {
	markedBefore := nowMillis() - r.cfg.StaleAfter.Milliseconds()

	jobs, err := r.stores.Jobs.ListPendingAcceptances(ctx, markedBefore)
	if err != nil {
		metrics.ReconcilerRunsTotal.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("failed to list pending acceptances: %w", err)
	}

	resumed := 0
	var errs []error
	for _, job := range jobs {
		if _, err := r.engine.ResumeAcceptance(ctx, job.CreatorID, job.JobID); err != nil {
			r.logger.Warn("failed to resume acceptance",
				logger.String("job_id", job.JobID),
				logger.Error(err))
			errs = append(errs, fmt.Errorf("job %s: %w", job.JobID, err))
			continue
		}
		resumed++
	}

	status := "success"
	if len(errs) > 0 {
		status = "partial"
	}
	metrics.ReconcilerRunsTotal.WithLabelValues(status).Inc()

	if len(jobs) > 0 {
		r.logger.Info("reconciler sweep finished",
			logger.Int("pending", len(jobs)),
			logger.Int("resumed", resumed))
	}

	return resumed, errors.Join(errs...)
}
