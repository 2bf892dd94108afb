package handler

import (
	"context"
	"fmt"

	"karmahub/commons/error_handler"
	"karmahub/internal/domain"
	"karmahub/internal/dto"
	"karmahub/internal/identity"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
)

// ResumeAcceptancePath is where a creator finishes an interrupted acceptance
const ResumeAcceptancePath = "/api/v1/jobs/%s/acceptance/resume"

// notifier turns operation outcomes into notices for the caller
type notifier struct {
	sink   notification.Sink
	logger logger.Logger
}

func (n notifier) success(ctx context.Context, title, message string) *notification.Notice {
	notice := notification.Success(title, message)
	n.deliver(ctx, notice)
	return &notice
}

// failure maps err onto the response error collection and notifies the caller
func (n notifier) failure(ctx context.Context, title string, err error) *error_handler.ErrorCollection {
	ec := errorCollection(err)
	if domain.IsStoreError(err) || ec.GetHTTPStatus() >= 500 {
		n.logger.WithContext(ctx).Error(title, logger.Error(err))
	}
	n.deliver(ctx, notification.Failure(title, ec.GetErrors()[0].Message))
	return ec
}

func (n notifier) deliver(ctx context.Context, notice notification.Notice) {
	if n.sink == nil {
		return
	}
	if err := n.sink.Notify(ctx, identity.UserFromContext(ctx), notice); err != nil {
		n.logger.Warn("failed to deliver notice", logger.Error(err))
	}
}

// errorCollection maps domain errors onto HTTP error codes
func errorCollection(err error) *error_handler.ErrorCollection {
	ec := error_handler.NewErrorCollection()

	if partial, ok := domain.AsPartialAcceptance(err); ok {
		return ec.MarkPartial().AddError(error_handler.CodeConflict,
			"The helper was assigned but the acceptance did not finish. Resume it to complete the remaining steps.",
			dto.PartialAcceptanceData{
				JobID:         partial.JobID,
				ApplicationID: partial.ApplicationID,
				ApplicantID:   partial.ApplicantID,
				FailedStep:    partial.FailedStep,
				ResumePath:    fmt.Sprintf(ResumeAcceptancePath, partial.JobID),
			})
	}

	switch {
	case domain.IsValidationError(err):
		return ec.AddError(error_handler.CodeValidationError, err.Error(), nil)
	case domain.IsAuthenticationError(err):
		return ec.AddError(error_handler.CodeUnauthorized, err.Error(), nil)
	case domain.IsAuthorizationError(err):
		return ec.AddError(error_handler.CodeForbidden, err.Error(), nil)
	case domain.IsNotFoundError(err):
		return ec.AddError(error_handler.CodeNotFound, err.Error(), nil)
	case domain.IsDuplicateApplicationError(err),
		domain.IsDuplicateRatingError(err),
		domain.IsStateConflictError(err):
		return ec.AddError(error_handler.CodeConflict, err.Error(), nil)
	case domain.IsStoreError(err):
		return ec.AddError(error_handler.CodeInternalServerError, domain.ErrStore.Error()+", please try again", nil)
	default:
		return ec.AddError(error_handler.CodeInternalServerError, "Internal server error", nil)
	}
}

// currentUser is for read endpoints scoped to the caller; mutations leave
// the check to the lifecycle engine
func currentUser(ctx context.Context) (string, *error_handler.ErrorCollection) {
	userID := identity.UserFromContext(ctx)
	if userID == "" {
		return "", errorCollection(domain.ErrAuthentication)
	}
	return userID, nil
}
