package domain

import "time"

// Profile holds the public data and the bookkeeping counters of a user
type Profile struct {
	UserID             string  `json:"user_id" dynamodbav:"user_id"`
	FirstName          string  `json:"first_name,omitempty" dynamodbav:"first_name,omitempty"`
	LastName           string  `json:"last_name,omitempty" dynamodbav:"last_name,omitempty"`
	AvatarURL          string  `json:"avatar_url,omitempty" dynamodbav:"avatar_url,omitempty"`
	Bio                string  `json:"bio,omitempty" dynamodbav:"bio,omitempty"`
	Location           string  `json:"location,omitempty" dynamodbav:"location,omitempty"`
	KarmaPoints        int     `json:"karma_points" dynamodbav:"karma_points"`
	TotalEarned        float64 `json:"total_earned" dynamodbav:"total_earned"`
	GoodDeedsCompleted int     `json:"good_deeds_completed" dynamodbav:"good_deeds_completed"`
	Rating             float64 `json:"rating" dynamodbav:"rating"`
	RatingCount        int     `json:"rating_count" dynamodbav:"rating_count"`
	CreatedAt          int64   `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt          int64   `json:"updated_at" dynamodbav:"updated_at"`
}

// UpdateProfileInput carries editable profile fields; nil means unchanged
type UpdateProfileInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
}

// NewProfile creates an empty profile for userID
func NewProfile(userID string) *Profile {
	now := time.Now().UnixMilli()
	return &Profile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply copies the set fields of in onto p
func (p *Profile) Apply(in UpdateProfileInput) {
	if in.FirstName != nil {
		p.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		p.LastName = *in.LastName
	}
	if in.AvatarURL != nil {
		p.AvatarURL = *in.AvatarURL
	}
	if in.Bio != nil {
		p.Bio = *in.Bio
	}
	if in.Location != nil {
		p.Location = *in.Location
	}
	p.UpdatedAt = time.Now().UnixMilli()
}
