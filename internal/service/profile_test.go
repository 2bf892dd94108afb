package service

import (
	"errors"
	"testing"

	"karmahub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringPtr(s string) *string {
	return &s
}

func TestGetProfileCreatesLazily(t *testing.T) {
	h := newHarness(t)

	profile, err := h.profiles.GetProfile(h.ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, userA, profile.UserID)
	assert.Zero(t, profile.KarmaPoints)
	assert.Equal(t, 1, h.store.Calls("profiles.create"))

	_, err = h.profiles.GetProfile(h.ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, 1, h.store.Calls("profiles.get"), "second read is served from cache")
}

func TestUpdateProfileInvalidatesCache(t *testing.T) {
	h := newHarness(t)

	_, err := h.profiles.GetProfile(h.ctx, userA)
	require.NoError(t, err)

	updated, err := h.profiles.UpdateProfile(h.ctx, userA, domain.UpdateProfileInput{
		FirstName: stringPtr("Anna"),
		Bio:       stringPtr("Hilft gern beim Umzug"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)

	profile, err := h.profiles.GetProfile(h.ctx, userA)
	require.NoError(t, err)
	assert.Equal(t, "Anna", profile.FirstName)
	assert.Equal(t, "Hilft gern beim Umzug", profile.Bio)
}

func TestUpdateProfileValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.profiles.UpdateProfile(h.ctx, "", domain.UpdateProfileInput{})
	assert.ErrorIs(t, err, domain.ErrAuthentication)

	_, err = h.profiles.UpdateProfile(h.ctx, userA, domain.UpdateProfileInput{AvatarURL: stringPtr("not a url")})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRecomputeRating(t *testing.T) {
	h := newHarness(t)

	first, _ := h.completedJob(t, paidJobInput(), userA, userB)
	second, _ := h.completedJob(t, goodDeedInput(), userC, userB)

	_, err := h.engine.SubmitRating(h.ctx, userA, first.JobID, domain.NewRatingInput{RatedID: userB, Score: 5})
	require.NoError(t, err)
	_, err = h.engine.SubmitRating(h.ctx, userC, second.JobID, domain.NewRatingInput{RatedID: userB, Score: 4})
	require.NoError(t, err)

	// cached before the recompute, so the recompute must invalidate
	before, err := h.profiles.GetProfile(h.ctx, userB)
	require.NoError(t, err)
	assert.Zero(t, before.RatingCount)

	require.NoError(t, h.profiles.RecomputeRating(h.ctx, userB))

	profile, err := h.profiles.GetProfile(h.ctx, userB)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, profile.Rating, 0.0001)
	assert.Equal(t, 2, profile.RatingCount)
}

func TestRecomputeRatingFailureKeepsRating(t *testing.T) {
	h := newHarness(t)

	job, _ := h.completedJob(t, paidJobInput(), userA, userB)
	_, err := h.engine.SubmitRating(h.ctx, userA, job.JobID, domain.NewRatingInput{RatedID: userB, Score: 3})
	require.NoError(t, err)

	h.store.InjectFault("profiles.update_rating", errors.New("throttled"))
	err = h.profiles.RecomputeRating(h.ctx, userB)
	assert.True(t, domain.IsStoreError(err))

	ratings, err := h.stores.Ratings.ListByRated(h.ctx, userB)
	require.NoError(t, err)
	assert.Len(t, ratings, 1, "the rating stays durable")
}
