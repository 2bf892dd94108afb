package service

import (
	"context"
	"time"

	cache "karmahub/internal/cache/iface"
	"karmahub/internal/domain"
	"karmahub/internal/logger"
	"karmahub/internal/repository"

	"github.com/go-playground/validator/v10"
)

// DefaultProfileTTL is how long a profile stays cached
const DefaultProfileTTL = 60 * time.Second

// ProfileService reads and updates user profiles through a TTL cache
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, actorID string, in domain.UpdateProfileInput) (*domain.Profile, error)
	RecomputeRating(ctx context.Context, userID string) error
	Invalidate(ctx context.Context, userID string)
}

type profileService struct {
	stores   Stores
	cache    cache.Cache
	ttl      time.Duration
	validate *validator.Validate
	logger   logger.Logger
}

// NewProfileService creates a profile service. A zero ttl uses DefaultProfileTTL.
func NewProfileService(stores Stores, c cache.Cache, ttl time.Duration, log logger.Logger) ProfileService {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &profileService{
		stores:   stores,
		cache:    c,
		ttl:      ttl,
		validate: newValidator(),
		logger:   log.With(logger.String("component", "profile_service")),
	}
}

func profileCacheKey(userID string) string {
	return "profile:" + userID
}

// GetProfile returns the cached profile, creating an empty one on first read
func (s *profileService) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ValidationError("user id is required")
	}

	profile, err := cache.GetOrLoad(ctx, s.cache, profileCacheKey(userID), s.ttl,
		func(ctx context.Context) (domain.Profile, error) {
			p, err := s.loadOrCreate(ctx, userID)
			if err != nil {
				return domain.Profile{}, err
			}
			return *p, nil
		}, s.logger)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

func (s *profileService) loadOrCreate(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.stores.Profiles.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !repository.IsNotFoundError(err) {
		return nil, storeFailure(ctx, s.logger, "get_profile", err)
	}

	profile = domain.NewProfile(userID)
	if err := s.stores.Profiles.Create(ctx, profile); err != nil {
		if !repository.IsAlreadyExistsError(err) {
			return nil, storeFailure(ctx, s.logger, "create_profile", err)
		}
		// created concurrently
		profile, err = s.stores.Profiles.Get(ctx, userID)
		if err != nil {
			return nil, storeFailure(ctx, s.logger, "get_profile", err)
		}
	}
	return profile, nil
}

// UpdateProfile edits actorID's own profile
func (s *profileService) UpdateProfile(ctx context.Context, actorID string, in domain.UpdateProfileInput) (*domain.Profile, error) {
	if actorID == "" {
		return nil, domain.ErrAuthentication
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, validationFailure(err)
	}

	profile, err := s.loadOrCreate(ctx, actorID)
	if err != nil {
		return nil, err
	}

	profile.Apply(in)
	if err := s.stores.Profiles.UpdateDetails(ctx, profile); err != nil {
		return nil, storeFailure(ctx, s.logger, "update_profile", err)
	}

	s.Invalidate(ctx, actorID)
	return profile, nil
}

// RecomputeRating stores the average of all ratings received by userID
func (s *profileService) RecomputeRating(ctx context.Context, userID string) error {
	ratings, err := s.stores.Ratings.ListByRated(ctx, userID)
	if err != nil {
		return storeFailure(ctx, s.logger, "list_ratings", err)
	}

	// the profile may not exist yet when the first rating arrives
	if _, err := s.loadOrCreate(ctx, userID); err != nil {
		return err
	}

	average, count := domain.AverageScore(ratings)
	if err := s.stores.Profiles.UpdateRating(ctx, userID, average, count, nowMillis()); err != nil {
		return storeFailure(ctx, s.logger, "update_rating", err)
	}

	s.logger.WithContext(ctx).Info("rating recomputed",
		logger.String("user_id", userID),
		logger.Float64("rating", average),
		logger.Int("rating_count", count))

	s.Invalidate(ctx, userID)
	return nil
}

// Invalidate drops the cached profile of userID
func (s *profileService) Invalidate(ctx context.Context, userID string) {
	if err := s.cache.Delete(ctx, profileCacheKey(userID)); err != nil {
		s.logger.Warn("failed to invalidate cached profile",
			logger.String("user_id", userID),
			logger.Error(err))
	}
}
