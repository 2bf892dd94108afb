package memory

import (
	"context"
	"fmt"

	"karmahub/internal/domain"
	"karmahub/internal/repository"
)

type ratingStore struct {
	s *Store
}

func (r *ratingStore) Create(ctx context.Context, rating *domain.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("ratings.create"); err != nil {
		return err
	}
	if _, ok := r.s.ratings[rating.RatingID]; ok {
		return fmt.Errorf("%w: rating %s", repository.ErrAlreadyExists, rating.RatingID)
	}
	r.s.ratings[rating.RatingID] = *rating
	return nil
}

func (r *ratingStore) ListByRated(ctx context.Context, ratedID string) ([]*domain.Rating, error) {
	return r.list(func(x *domain.Rating) bool { return x.RatedID == ratedID })
}

func (r *ratingStore) ListByJob(ctx context.Context, jobID string) ([]*domain.Rating, error) {
	return r.list(func(x *domain.Rating) bool { return x.JobID == jobID })
}

func (r *ratingStore) list(match func(*domain.Rating) bool) ([]*domain.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("ratings.list"); err != nil {
		return nil, err
	}
	ratings := make([]*domain.Rating, 0)
	for _, rating := range r.s.ratings {
		if match(&rating) {
			x := rating
			ratings = append(ratings, &x)
		}
	}
	return newestFirst(ratings,
		func(x *domain.Rating) int64 { return x.CreatedAt },
		func(x *domain.Rating) string { return x.RatingID }), nil
}

type profileStore struct {
	s *Store
}

func (r *profileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("profiles.get"); err != nil {
		return nil, err
	}
	profile, ok := r.s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", repository.ErrNotFound, userID)
	}
	return &profile, nil
}

func (r *profileStore) Create(ctx context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("profiles.create"); err != nil {
		return err
	}
	if _, ok := r.s.profiles[profile.UserID]; ok {
		return fmt.Errorf("%w: profile %s", repository.ErrAlreadyExists, profile.UserID)
	}
	r.s.profiles[profile.UserID] = *profile
	return nil
}

func (r *profileStore) UpdateDetails(ctx context.Context, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("profiles.update"); err != nil {
		return err
	}
	stored, ok := r.s.profiles[profile.UserID]
	if !ok {
		return fmt.Errorf("%w: profile %s", repository.ErrNotFound, profile.UserID)
	}
	stored.FirstName = profile.FirstName
	stored.LastName = profile.LastName
	stored.AvatarURL = profile.AvatarURL
	stored.Bio = profile.Bio
	stored.Location = profile.Location
	stored.UpdatedAt = profile.UpdatedAt
	r.s.profiles[profile.UserID] = stored
	return nil
}

func (r *profileStore) UpdateRating(ctx context.Context, userID string, rating float64, count int, now int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("profiles.update_rating"); err != nil {
		return err
	}
	profile, ok := r.s.profiles[userID]
	if !ok {
		profile = domain.Profile{UserID: userID, CreatedAt: now}
	}
	profile.Rating = rating
	profile.RatingCount = count
	profile.UpdatedAt = now
	r.s.profiles[userID] = profile
	return nil
}

type activityStore struct {
	s *Store
}

func (r *activityStore) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("activity.append"); err != nil {
		return err
	}
	if _, ok := r.s.activity[entry.EntryID]; ok {
		return nil
	}
	r.s.activity[entry.EntryID] = *entry
	return nil
}

func (r *activityStore) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.ActivityLogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.enter("activity.list"); err != nil {
		return nil, err
	}
	entries := make([]*domain.ActivityLogEntry, 0)
	for _, entry := range r.s.activity {
		if entry.UserID == userID {
			e := entry
			entries = append(entries, &e)
		}
	}
	entries = newestFirst(entries,
		func(e *domain.ActivityLogEntry) int64 { return e.CreatedAt },
		func(e *domain.ActivityLogEntry) string { return e.EntryID })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
