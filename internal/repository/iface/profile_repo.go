package repository

import (
	"context"

	"karmahub/internal/domain"
)

// ProfileRepository defines operations for user profiles
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	// Create returns repository.ErrAlreadyExists when the profile exists
	Create(ctx context.Context, profile *domain.Profile) error
	// UpdateDetails writes the editable fields, leaving counters untouched
	UpdateDetails(ctx context.Context, profile *domain.Profile) error
	UpdateRating(ctx context.Context, userID string, rating float64, count int, now int64) error
}

// ActivityLogRepository is the append-only activity log
type ActivityLogRepository interface {
	// Append ignores an entry whose id was already stored
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ActivityLogEntry, error)
}
