package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobType distinguishes unpaid good deeds from paid tasks
type JobType string

const (
	JobTypeGoodDeeds JobType = "good_deeds"
	JobTypePaid      JobType = "paid"
)

// JobStatus represents the lifecycle state of a job
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// DefaultKarmaReward is used when a job is created without a karma reward
const DefaultKarmaReward = 10

// IsTerminal reports whether no further transition is possible
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// Job is a unit of work posted by a creator
type Job struct {
	JobID             string    `json:"job_id" dynamodbav:"job_id"`
	CreatorID         string    `json:"creator_id" dynamodbav:"creator_id"`
	Title             string    `json:"title" dynamodbav:"title"`
	Description       string    `json:"description" dynamodbav:"description"`
	Category          string    `json:"category" dynamodbav:"category"`
	JobType           JobType   `json:"job_type" dynamodbav:"job_type"`
	Budget            *float64  `json:"budget,omitempty" dynamodbav:"budget,omitempty"`
	KarmaReward       int       `json:"karma_reward" dynamodbav:"karma_reward"`
	Location          string    `json:"location" dynamodbav:"location"`
	Latitude          *float64  `json:"latitude,omitempty" dynamodbav:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty" dynamodbav:"longitude,omitempty"`
	Status            JobStatus `json:"status" dynamodbav:"status"`
	AssignedTo        string    `json:"assigned_to,omitempty" dynamodbav:"assigned_to,omitempty"`
	EstimatedDuration int       `json:"estimated_duration,omitempty" dynamodbav:"estimated_duration,omitempty"` // minutes
	DueDate           int64     `json:"due_date,omitempty" dynamodbav:"due_date,omitempty"`
	Images            []string  `json:"images,omitempty" dynamodbav:"images,omitempty"`
	Requirements      []string  `json:"requirements,omitempty" dynamodbav:"requirements,omitempty"`
	CreatedAt         int64     `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt         int64     `json:"updated_at" dynamodbav:"updated_at"`

	// Set while an acceptance is being applied, cleared once the ticket exists
	PendingAcceptanceID string `json:"pending_acceptance_id,omitempty" dynamodbav:"pending_acceptance_id,omitempty"`
	PendingAcceptanceAt int64  `json:"pending_acceptance_at,omitempty" dynamodbav:"pending_acceptance_at,omitempty"`
}

// NewJobInput carries the caller supplied fields of a new job
type NewJobInput struct {
	Title             string   `json:"title" validate:"required,notblank,max=200"`
	Description       string   `json:"description" validate:"max=5000"`
	Category          string   `json:"category" validate:"required,notblank"`
	JobType           JobType  `json:"job_type" validate:"required,oneof=good_deeds paid"`
	Budget            *float64 `json:"budget" validate:"required_if=JobType paid,omitempty,gte=0"`
	KarmaReward       int      `json:"karma_reward" validate:"gte=0"`
	Location          string   `json:"location" validate:"required,notblank"`
	Latitude          *float64 `json:"latitude" validate:"required_with=Longitude,omitempty,gte=-90,lte=90"`
	Longitude         *float64 `json:"longitude" validate:"required_with=Latitude,omitempty,gte=-180,lte=180"`
	EstimatedDuration int      `json:"estimated_duration" validate:"gte=0"`
	DueDate           int64    `json:"due_date" validate:"gte=0"`
	Images            []string `json:"images" validate:"omitempty,dive,required"`
	Requirements      []string `json:"requirements" validate:"omitempty,dive,required"`
}

// NewJob builds an open job owned by creatorID. The input is expected to be validated.
func NewJob(creatorID string, in NewJobInput, defaultKarma int) *Job {
	now := time.Now().UnixMilli()

	karma := in.KarmaReward
	if karma == 0 {
		karma = defaultKarma
	}

	job := &Job{
		JobID:             uuid.New().String(),
		CreatorID:         creatorID,
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		JobType:           in.JobType,
		KarmaReward:       karma,
		Location:          in.Location,
		Latitude:          in.Latitude,
		Longitude:         in.Longitude,
		Status:            JobStatusOpen,
		EstimatedDuration: in.EstimatedDuration,
		DueDate:           in.DueDate,
		Images:            in.Images,
		Requirements:      in.Requirements,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// budget only means something for paid jobs
	if in.JobType == JobTypePaid && in.Budget != nil {
		budget := *in.Budget
		job.Budget = &budget
	}

	return job
}

// BudgetAmount returns the budget of a paid job, zero otherwise
func (j *Job) BudgetAmount() float64 {
	if j.JobType != JobTypePaid || j.Budget == nil {
		return 0
	}
	return *j.Budget
}

// IsParticipant reports whether userID is the creator or the assignee
func (j *Job) IsParticipant(userID string) bool {
	return userID != "" && (j.CreatorID == userID || j.AssignedTo == userID)
}

// HasPendingAcceptance reports whether an acceptance saga has not finished yet
func (j *Job) HasPendingAcceptance() bool {
	return j.PendingAcceptanceID != ""
}
