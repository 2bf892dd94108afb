package dto

import (
	"karmahub/internal/domain"
	"karmahub/internal/notification"
)

type UpdateProfileRequest struct {
	domain.UpdateProfileInput
}

type ProfileResponse struct {
	Profile *domain.Profile      `json:"profile"`
	Notice  *notification.Notice `json:"notice,omitempty"`
}

type ListActivityResponse struct {
	Entries    []*domain.ActivityLogEntry `json:"entries"`
	Pagination PaginationResponse         `json:"pagination"`
}
