package repository

import (
	"context"

	"karmahub/internal/domain"
)

// RatingRepository defines operations for ratings
type RatingRepository interface {
	// Create returns repository.ErrAlreadyExists for a second rating of the same (job, rater, rated)
	Create(ctx context.Context, rating *domain.Rating) error
	ListByRated(ctx context.Context, ratedID string) ([]*domain.Rating, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.Rating, error)
}
