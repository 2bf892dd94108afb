package handler

import (
	"context"

	"karmahub/commons/error_handler"
	"karmahub/commons/handler"
	"karmahub/internal/domain"
	"karmahub/internal/dto"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	repositoryIface "karmahub/internal/repository/iface"
	"karmahub/internal/service"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 200
)

type ProfileHandler struct {
	logger      logger.Logger
	profiles    service.ProfileService
	activityLog repositoryIface.ActivityLogRepository
	notifier    notifier
}

func NewProfileHandler(
	log logger.Logger,
	profiles service.ProfileService,
	activityLog repositoryIface.ActivityLogRepository,
	sink notification.Sink,
) *ProfileHandler {
	log = log.With(logger.String("component", "profile_handler"))
	return &ProfileHandler{
		logger:      log,
		profiles:    profiles,
		activityLog: activityLog,
		notifier:    notifier{sink: sink, logger: log},
	}
}

func (h *ProfileHandler) GetProfileService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ProfileResponse, *error_handler.ErrorCollection) {
	userID := ioutil.PathParams["id"]
	if userID == "me" {
		var ec *error_handler.ErrorCollection
		if userID, ec = currentUser(ctx); ec != nil {
			return dto.ProfileResponse{}, ec
		}
	}

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		return dto.ProfileResponse{}, errorCollection(err)
	}
	return dto.ProfileResponse{Profile: profile}, nil
}

func (h *ProfileHandler) UpdateMyProfileService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.UpdateProfileRequest],
) (dto.ProfileResponse, *error_handler.ErrorCollection) {
	profile, err := h.profiles.UpdateProfile(ctx, identity.UserFromContext(ctx), ioutil.Body.UpdateProfileInput)
	if err != nil {
		return dto.ProfileResponse{}, h.notifier.failure(ctx, "Could not update profile", err)
	}

	return dto.ProfileResponse{
		Profile: profile,
		Notice:  h.notifier.success(ctx, "Profile updated", "Your changes were saved."),
	}, nil
}

// ListMyActivityService returns the caller's newest activity log entries;
// ?limit= caps the count
func (h *ProfileHandler) ListMyActivityService(
	ctx context.Context,
	ioutil *handler.RequestIo[dto.EmptyRequest],
) (dto.ListActivityResponse, *error_handler.ErrorCollection) {
	userID, ec := currentUser(ctx)
	if ec != nil {
		return dto.ListActivityResponse{}, ec
	}

	limit, err := ioutil.QueryInt("limit", defaultActivityLimit, 1, maxActivityLimit)
	if err != nil {
		return dto.ListActivityResponse{}, errorCollection(domain.ValidationError("%s", err.Error()))
	}

	entries, err := h.activityLog.ListByUser(ctx, userID, limit)
	if err != nil {
		h.logger.WithContext(ctx).Error("failed to list activity",
			logger.String("user_id", userID),
			logger.Error(err))
		return dto.ListActivityResponse{}, errorCollection(domain.NewStoreError("list_activity", err))
	}

	return dto.ListActivityResponse{Entries: entries, Pagination: dto.Page(len(entries))}, nil
}
