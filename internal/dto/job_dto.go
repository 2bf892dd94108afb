package dto

import (
	"karmahub/internal/domain"
	"karmahub/internal/notification"
)

// EmptyRequest is the body of requests that carry everything in the path
type EmptyRequest struct{}

// CreateJobRequest represents request for posting a job
type CreateJobRequest struct {
	domain.NewJobInput
}

type JobResponse struct {
	Job    *domain.Job          `json:"job"`
	Notice *notification.Notice `json:"notice,omitempty"`
}

type ListJobsResponse struct {
	Jobs       []*domain.Job      `json:"jobs"`
	Pagination PaginationResponse `json:"pagination"`
}

// ApplyForJobRequest represents request for applying to a job
type ApplyForJobRequest struct {
	Message string `json:"message"`
}

type ApplicationResponse struct {
	Application *domain.JobApplication `json:"application"`
	Notice      *notification.Notice   `json:"notice,omitempty"`
}

type ListApplicationsResponse struct {
	Applications []*domain.JobApplication `json:"applications"`
	Pagination   PaginationResponse       `json:"pagination"`
}

// AcceptApplicationRequest names the applicant the creator expects to accept
type AcceptApplicationRequest struct {
	ApplicantID string `json:"applicant_id"`
}

type AcceptanceResponse struct {
	Job         *domain.Job            `json:"job"`
	Application *domain.JobApplication `json:"application"`
	Ticket      *domain.JobTicket      `json:"ticket"`
	Notice      *notification.Notice   `json:"notice,omitempty"`
}

// PartialAcceptanceData is returned with PARTIAL_SUCCESS when the job was
// assigned but the remaining acceptance steps did not all run
type PartialAcceptanceData struct {
	JobID         string `json:"job_id"`
	ApplicationID string `json:"application_id"`
	ApplicantID   string `json:"applicant_id"`
	FailedStep    string `json:"failed_step"`
	ResumePath    string `json:"resume_path"`
}

// SubmitRatingRequest represents request for rating the other participant
type SubmitRatingRequest struct {
	domain.NewRatingInput
}

type RatingResponse struct {
	Rating *domain.Rating       `json:"rating"`
	Notice *notification.Notice `json:"notice,omitempty"`
}
