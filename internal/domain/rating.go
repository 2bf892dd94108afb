package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

var ratingNamespace = uuid.MustParse("0b7d9e4a-8f3e-4c61-b2a4-1d6e5f7a9c02")

// Rating is one participant's score for the other after completion. Immutable.
type Rating struct {
	RatingID  string `json:"rating_id" dynamodbav:"rating_id"`
	JobID     string `json:"job_id" dynamodbav:"job_id"`
	RaterID   string `json:"rater_id" dynamodbav:"rater_id"`
	RatedID   string `json:"rated_id" dynamodbav:"rated_id"`
	Score     int    `json:"score" dynamodbav:"score"`
	Comment   string `json:"comment,omitempty" dynamodbav:"comment,omitempty"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`
}

// NewRatingInput carries the caller supplied fields of a rating
type NewRatingInput struct {
	RatedID string `json:"rated_id" validate:"required"`
	Score   int    `json:"score" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// RatingIDFor is unique per (job, rater, rated)
func RatingIDFor(jobID, raterID, ratedID string) string {
	return uuid.NewSHA1(ratingNamespace, []byte(jobID+"#"+raterID+"#"+ratedID)).String()
}

// NewRating creates a rating record
func NewRating(jobID, raterID string, in NewRatingInput) *Rating {
	return &Rating{
		RatingID:  RatingIDFor(jobID, raterID, in.RatedID),
		JobID:     jobID,
		RaterID:   raterID,
		RatedID:   in.RatedID,
		Score:     in.Score,
		Comment:   in.Comment,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// AverageScore returns the mean score and the number of ratings
func AverageScore(ratings []*Rating) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}

	total := 0
	for _, r := range ratings {
		total += r.Score
	}
	return float64(total) / float64(len(ratings)), len(ratings)
}
