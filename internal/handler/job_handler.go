package handler

import (
	"context"

	"karmahub/commons/error_handler"
	"karmahub/commons/handler"
	"karmahub/internal/domain"
	"karmahub/internal/dto"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	"karmahub/internal/service"
)

type JobHandler struct {
	logger   logger.Logger
	engine   service.LifecycleEngine
	queries  service.JobQueries
	notifier notifier
}

func NewJobHandler(
	log logger.Logger,
	engine service.LifecycleEngine,
	queries service.JobQueries,
	sink notification.Sink,
) *JobHandler {
	log = log.With(logger.String("component", "job_handler"))
	return &JobHandler{
		logger:   log,
		engine:   engine,
		queries:  queries,
		notifier: notifier{sink: sink, logger: log},
	}
}

func (h *JobHandler) CreateJobService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.CreateJobRequest],
) (dto.JobResponse, *error_handler.ErrorCollection) {
	job, err := h.engine.CreateJob(ctx, identity.UserFromContext(ctx), ioutil.Body.NewJobInput)
	if err != nil {
		return dto.JobResponse{}, h.notifier.failure(ctx, "Could not post job", err)
	}

	return dto.JobResponse{
		Job:    job,
		Notice: h.notifier.success(ctx, "Job posted", "Your job is now open for applications."),
	}, nil
}

func (h *JobHandler) ListOpenJobsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListJobsResponse, *error_handler.ErrorCollection) {
	jobs := h.queries.ListOpenJobs(ctx)
	return dto.ListJobsResponse{Jobs: jobs, Pagination: dto.Page(len(jobs))}, nil
}

func (h *JobHandler) ListMyJobsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListJobsResponse, *error_handler.ErrorCollection) {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return dto.ListJobsResponse{}, ec
	}

	jobs := h.queries.ListJobsByCreator(ctx, userID)
	return dto.ListJobsResponse{Jobs: jobs, Pagination: dto.Page(len(jobs))}, nil
}

func (h *JobHandler) GetJobService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.JobResponse, *error_handler.ErrorCollection) {
	job, err := h.queries.GetJob(ctx, ioutil.PathParams["id"])
	if err != nil {
		return dto.JobResponse{}, errorCollection(err)
	}
	return dto.JobResponse{Job: job}, nil
}

func (h *JobHandler) CancelJobService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.JobResponse, *error_handler.ErrorCollection) {
	job, err := h.engine.CancelJob(ctx, identity.UserFromContext(ctx), ioutil.PathParams["id"])
	if err != nil {
		return dto.JobResponse{}, h.notifier.failure(ctx, "Could not cancel job", err)
	}

	return dto.JobResponse{
		Job:    job,
		Notice: h.notifier.success(ctx, "Job cancelled", "The job no longer accepts applications."),
	}, nil
}

func (h *JobHandler) ApplyForJobService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.ApplyForJobRequest],
) (dto.ApplicationResponse, *error_handler.ErrorCollection) {
	application, err := h.engine.ApplyForJob(ctx, identity.UserFromContext(ctx), ioutil.PathParams["id"], ioutil.Body.Message)
	if err != nil {
		return dto.ApplicationResponse{}, h.notifier.failure(ctx, "Could not apply", err)
	}

	return dto.ApplicationResponse{
		Application: application,
		Notice:      h.notifier.success(ctx, "Application sent", "The job creator will get back to you."),
	}, nil
}

// ListJobApplicationsService lists the applications of a job to its creator
func (h *JobHandler) ListJobApplicationsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListApplicationsResponse, *error_handler.ErrorCollection) {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return dto.ListApplicationsResponse{}, ec
	}

	job, err := h.queries.GetJob(ctx, ioutil.PathParams["id"])
	if err != nil {
		return dto.ListApplicationsResponse{}, errorCollection(err)
	}
	if job.CreatorID != userID {
		return dto.ListApplicationsResponse{}, errorCollection(
			domain.AuthorizationError("only the creator of job %s can see its applications", job.JobID))
	}

	applications := h.queries.ListApplicationsForJob(ctx, job.JobID)
	return dto.ListApplicationsResponse{Applications: applications, Pagination: dto.Page(len(applications))}, nil
}

func (h *JobHandler) ListMyApplicationsService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListApplicationsResponse, *error_handler.ErrorCollection) {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return dto.ListApplicationsResponse{}, ec
	}

	applications := h.queries.ListApplicationsByApplicant(ctx, userID)
	return dto.ListApplicationsResponse{Applications: applications, Pagination: dto.Page(len(applications))}, nil
}

func (h *JobHandler) AcceptApplicationService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.AcceptApplicationRequest],
) (dto.AcceptanceResponse, *error_handler.ErrorCollection) {
	result, err := h.engine.AcceptApplication(ctx,
		identity.UserFromContext(ctx),
		ioutil.PathParams["id"],
		ioutil.PathParams["applicationId"],
		ioutil.Body.ApplicantID)
	if err != nil {
		return dto.AcceptanceResponse{}, h.notifier.failure(ctx, "Could not accept application", err)
	}

	return h.acceptanceResponse(ctx, result), nil
}

func (h *JobHandler) ResumeAcceptanceService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.AcceptanceResponse, *error_handler.ErrorCollection) {
	result, err := h.engine.ResumeAcceptance(ctx, identity.UserFromContext(ctx), ioutil.PathParams["id"])
	if err != nil {
		return dto.AcceptanceResponse{}, h.notifier.failure(ctx, "Could not finish acceptance", err)
	}

	return h.acceptanceResponse(ctx, result), nil
}

func (h *JobHandler) acceptanceResponse(ctx context.Context, result *service.AcceptanceResult) dto.AcceptanceResponse {
	return dto.AcceptanceResponse{
		Job:         result.Job,
		Application: result.Application,
		Ticket:      result.Ticket,
		Notice:      h.notifier.success(ctx, "Application accepted", "A ticket was opened for the helper."),
	}
}

func (h *JobHandler) SubmitRatingService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.SubmitRatingRequest],
) (dto.RatingResponse, *error_handler.ErrorCollection) {
	rating, err := h.engine.SubmitRating(ctx, identity.UserFromContext(ctx), ioutil.PathParams["id"], ioutil.Body.NewRatingInput)
	if err != nil {
		return dto.RatingResponse{}, h.notifier.failure(ctx, "Could not submit rating", err)
	}

	return dto.RatingResponse{
		Rating: rating,
		Notice: h.notifier.success(ctx, "Rating submitted", "Thanks for your feedback."),
	}, nil
}
