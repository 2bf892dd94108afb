package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"karmahub/internal/domain"
	"karmahub/internal/events"
	"karmahub/internal/logger"
	"karmahub/internal/metrics"
	"karmahub/internal/repository"

	"github.com/go-playground/validator/v10"
)

// nowMillis is the engine clock
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}

// LifecycleEngine enforces the job state machine
// (open -> in_progress -> completed, open -> cancelled) and the acceptance protocol
type LifecycleEngine interface {
	CreateJob(ctx context.Context, actorID string, in domain.NewJobInput) (*domain.Job, error)
	ApplyForJob(ctx context.Context, actorID, jobID, message string) (*domain.JobApplication, error)
	AcceptApplication(ctx context.Context, actorID, jobID, applicationID, applicantID string) (*AcceptanceResult, error)
	ResumeAcceptance(ctx context.Context, actorID, jobID string) (*AcceptanceResult, error)
	CompleteJob(ctx context.Context, actorID, ticketID string) (*domain.JobTicket, error)
	CancelJob(ctx context.Context, actorID, jobID string) (*domain.Job, error)
	SubmitRating(ctx context.Context, actorID, jobID string, in domain.NewRatingInput) (*domain.Rating, error)
}

// EngineConfig holds the tunables of the lifecycle engine
type EngineConfig struct {
	DefaultKarmaReward int
}

type lifecycleEngine struct {
	stores   Stores
	events   *eventEmitter
	validate *validator.Validate
	cfg      EngineConfig
	logger   logger.Logger
}

// NewLifecycleEngine creates the lifecycle engine
func NewLifecycleEngine(stores Stores, publisher events.Publisher, cfg EngineConfig, log logger.Logger) LifecycleEngine {
	if cfg.DefaultKarmaReward <= 0 {
		cfg.DefaultKarmaReward = domain.DefaultKarmaReward
	}

	engineLogger := log.With(logger.String("component", "lifecycle_engine"))

	return &lifecycleEngine{
		stores:   stores,
		events:   newEventEmitter(publisher, engineLogger),
		validate: newValidator(),
		cfg:      cfg,
		logger:   engineLogger,
	}
}

// observe counts the outcome of an engine operation
func observe(operation string, err *error) {
	metrics.LifecycleOperationsTotal.WithLabelValues(operation, outcomeLabel(*err)).Inc()
}

// CreateJob inserts an open job owned by actorID
func (e *lifecycleEngine) CreateJob(ctx context.Context, actorID string, in domain.NewJobInput) (job *domain.Job, err error) {
	defer observe("create_job", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}

	if in.JobType == domain.JobTypeGoodDeeds {
		in.Budget = nil
	}
	if err := e.validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}

	job = domain.NewJob(actorID, in, e.cfg.DefaultKarmaReward)
	if job.KarmaReward < 1 {
		return nil, domain.ValidationError("karma_reward must be at least 1")
	}

	if err := e.stores.Jobs.Create(ctx, job); err != nil {
		return nil, storeFailure(ctx, e.logger, "create_job", err)
	}

	e.logger.WithContext(ctx).Info("job created",
		logger.String("job_id", job.JobID),
		logger.String("job_type", string(job.JobType)))

	e.events.emit(ctx, domain.EventJobCreated, actorID,
		fmt.Sprintf("Created job %q", job.Title),
		map[string]string{domain.MetaJobID: job.JobID})

	return job, nil
}

// ApplyForJob inserts a pending application of actorID for jobID
func (e *lifecycleEngine) ApplyForJob(ctx context.Context, actorID, jobID, message string) (application *domain.JobApplication, err error) {
	defer observe("apply_for_job", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}
	if len(message) > 2000 {
		return nil, domain.ValidationError("message must be at most 2000 characters")
	}

	job, err := loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return nil, err
	}
	if job.CreatorID == actorID {
		return nil, domain.ValidationError("cannot apply to your own job")
	}
	if job.Status.IsTerminal() {
		return nil, domain.StateConflictError("job %s is %s", jobID, job.Status)
	}

	application = domain.NewJobApplication(jobID, actorID, message)
	if err := e.stores.Applications.Create(ctx, application); err != nil {
		if repository.IsAlreadyExistsError(err) {
			return nil, domain.ErrDuplicateApplication
		}
		return nil, storeFailure(ctx, e.logger, "create_application", err)
	}

	e.events.emit(ctx, domain.EventJobApplied, actorID,
		fmt.Sprintf("Applied for job %q", job.Title),
		map[string]string{
			domain.MetaJobID:         jobID,
			domain.MetaApplicationID: application.ApplicationID,
		})

	return application, nil
}

// CompleteJob marks the active ticket and its job as completed. Settlement is separate.
func (e *lifecycleEngine) CompleteJob(ctx context.Context, actorID, ticketID string) (ticket *domain.JobTicket, err error) {
	defer observe("complete_job", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}

	ticket, err = loadTicket(ctx, e.stores.Tickets, e.logger, ticketID)
	if err != nil {
		return nil, err
	}

	job, err := loadJob(ctx, e.stores.Jobs, e.logger, ticket.JobID)
	if err != nil {
		return nil, err
	}
	if actorID != ticket.ApplicantID && actorID != job.CreatorID {
		return nil, domain.AuthorizationError("only the job participants can complete ticket %s", ticketID)
	}
	if ticket.Status != domain.TicketStatusActive {
		return nil, domain.StateConflictError("ticket %s is %s", ticketID, ticket.Status)
	}

	// a completed job must not carry the acceptance marker, and the sweep only scans in_progress
	if job.HasPendingAcceptance() {
		application, err := e.loadApplication(ctx, job.PendingAcceptanceID)
		if err != nil {
			return nil, err
		}
		if _, err := e.finishAcceptance(ctx, job, application); err != nil {
			return nil, err
		}
	}

	now := nowMillis()
	if err := e.stores.Jobs.Complete(ctx, job.JobID, ticket.ApplicantID, now); err != nil {
		if repository.IsConditionFailedError(err) {
			return nil, domain.StateConflictError("job %s cannot be completed", job.JobID)
		}
		return nil, storeFailure(ctx, e.logger, "complete_job", err)
	}

	if err := e.stores.Tickets.Complete(ctx, ticketID, now); err != nil {
		if repository.IsConditionFailedError(err) {
			return nil, domain.StateConflictError("ticket %s is no longer active", ticketID)
		}
		return nil, storeFailure(ctx, e.logger, "complete_ticket", err)
	}

	ticket.Status = domain.TicketStatusCompleted
	ticket.CompletedAt = now
	ticket.UpdatedAt = now

	e.logger.WithContext(ctx).Info("job completed",
		logger.String("job_id", job.JobID),
		logger.String("ticket_id", ticketID))

	e.events.emit(ctx, domain.EventTicketCompleted, actorID,
		fmt.Sprintf("Completed job %q", job.Title),
		map[string]string{
			domain.MetaJobID:    job.JobID,
			domain.MetaTicketID: ticketID,
		})

	return ticket, nil
}

// CancelJob moves an open job of actorID to cancelled
func (e *lifecycleEngine) CancelJob(ctx context.Context, actorID, jobID string) (job *domain.Job, err error) {
	defer observe("cancel_job", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}

	now := nowMillis()
	if err := e.stores.Jobs.Cancel(ctx, jobID, actorID, now); err != nil {
		if repository.IsConditionFailedError(err) {
			return nil, e.classifyJobConflict(ctx, actorID, jobID)
		}
		return nil, storeFailure(ctx, e.logger, "cancel_job", err)
	}

	job, err = loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return nil, err
	}

	e.events.emit(ctx, domain.EventJobCancelled, actorID,
		fmt.Sprintf("Cancelled job %q", job.Title),
		map[string]string{domain.MetaJobID: jobID})

	return job, nil
}

// SubmitRating records actorID's score of in.RatedID for a completed job.
// The ratee's aggregate is recomputed by the event consumer.
func (e *lifecycleEngine) SubmitRating(ctx context.Context, actorID, jobID string, in domain.NewRatingInput) (rating *domain.Rating, err error) {
	defer observe("submit_rating", &err)

	if actorID == "" {
		return nil, domain.ErrAuthentication
	}
	if err := e.validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}
	if in.RatedID == actorID {
		return nil, domain.ValidationError("cannot rate yourself")
	}

	job, err := loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobStatusCompleted {
		return nil, domain.StateConflictError("job %s is %s, ratings open after completion", jobID, job.Status)
	}
	if !job.IsParticipant(actorID) || !job.IsParticipant(in.RatedID) {
		return nil, domain.AuthorizationError("only the job participants can rate each other")
	}

	rating = domain.NewRating(jobID, actorID, in)
	if err := e.stores.Ratings.Create(ctx, rating); err != nil {
		if repository.IsAlreadyExistsError(err) {
			return nil, domain.ErrDuplicateRating
		}
		return nil, storeFailure(ctx, e.logger, "create_rating", err)
	}

	e.events.emit(ctx, domain.EventRatingSubmitted, actorID,
		fmt.Sprintf("Rated a participant of job %q", job.Title),
		map[string]string{
			domain.MetaJobID:    jobID,
			domain.MetaRatingID: rating.RatingID,
			domain.MetaRatedID:  in.RatedID,
			domain.MetaScore:    strconv.Itoa(in.Score),
		})

	return rating, nil
}

// classifyJobConflict re-reads a job after a failed owner-guarded write
func (e *lifecycleEngine) classifyJobConflict(ctx context.Context, actorID, jobID string) error {
	job, err := loadJob(ctx, e.stores.Jobs, e.logger, jobID)
	if err != nil {
		return err
	}
	if job.CreatorID != actorID {
		return domain.AuthorizationError("job %s belongs to another user", jobID)
	}
	return domain.StateConflictError("job %s is %s", jobID, job.Status)
}
