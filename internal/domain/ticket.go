package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus represents the status of a fulfillment ticket
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// ticketNamespace seeds deterministic ticket ids
var ticketNamespace = uuid.MustParse("6f1c2a0e-3c55-4d0c-9a8e-52f0c8b7e301")

// JobTicket is the fulfillment record opened when an application is accepted.
// Settlement flags are owned by the settlement service.
type JobTicket struct {
	TicketID        string       `json:"ticket_id" dynamodbav:"ticket_id"`
	JobID           string       `json:"job_id" dynamodbav:"job_id"`
	ApplicationID   string       `json:"application_id" dynamodbav:"application_id"`
	ApplicantID     string       `json:"applicant_id" dynamodbav:"applicant_id"`
	Status          TicketStatus `json:"status" dynamodbav:"status"`
	PaymentReleased bool         `json:"payment_released" dynamodbav:"payment_released"`
	KarmaAwarded    bool         `json:"karma_awarded" dynamodbav:"karma_awarded"`
	CompletedAt     int64        `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`
	CreatedAt       int64        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt       int64        `json:"updated_at" dynamodbav:"updated_at"`
}

// TicketIDForApplication derives the ticket id from the accepted application,
// so one application can never own two tickets
func TicketIDForApplication(applicationID string) string {
	return uuid.NewSHA1(ticketNamespace, []byte(applicationID)).String()
}

// NewJobTicket creates an active ticket for an accepted application
func NewJobTicket(jobID, applicationID, applicantID string) *JobTicket {
	now := time.Now().UnixMilli()

	return &JobTicket{
		TicketID:      TicketIDForApplication(applicationID),
		JobID:         jobID,
		ApplicationID: applicationID,
		ApplicantID:   applicantID,
		Status:        TicketStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
