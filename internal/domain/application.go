package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus represents the status of a job application
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// JobApplication is an applicant's bid to perform a job
type JobApplication struct {
	ApplicationID string            `json:"application_id" dynamodbav:"application_id"`
	JobID         string            `json:"job_id" dynamodbav:"job_id"`
	ApplicantID   string            `json:"applicant_id" dynamodbav:"applicant_id"`
	Message       string            `json:"message" dynamodbav:"message"`
	Status        ApplicationStatus `json:"status" dynamodbav:"status"`
	CreatedAt     int64             `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt     int64             `json:"updated_at" dynamodbav:"updated_at"`
}

// NewJobApplication creates a pending application
func NewJobApplication(jobID, applicantID, message string) *JobApplication {
	now := time.Now().UnixMilli()

	return &JobApplication{
		ApplicationID: uuid.New().String(),
		JobID:         jobID,
		ApplicantID:   applicantID,
		Message:       message,
		Status:        ApplicationStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ApplicationKey is the uniqueness key of an application
func ApplicationKey(jobID, applicantID string) string {
	return jobID + "#" + applicantID
}
