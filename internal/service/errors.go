package service

import "errors"

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")
	ErrUserNotVerified   = errors.New("user is not verified")

	ErrChallengeNotFound = errors.New("otp challenge not found")
	ErrChallengeExpired  = errors.New("otp challenge expired")
	ErrInvalidCode       = errors.New("invalid otp code")
	ErrEmailDelivery     = errors.New("verification email delivery failed")

	ErrProjectNotFound  = errors.New("project not found")
	ErrNotProjectMember = errors.New("not a project member")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRole      = errors.New("invalid member role")

	ErrCategoryNotFound = errors.New("expense category not found")
	ErrCategoryExists   = errors.New("expense category already exists")
	ErrExpenseNotFound  = errors.New("expense not found")

	ErrTimelineExists    = errors.New("timeline already exists for project")
	ErrTimelineNotFound  = errors.New("timeline not found")
	ErrStageNotFound     = errors.New("timeline stage not found")
	ErrStageCompleted    = errors.New("completed stages cannot be deleted")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrMissingStageDates = errors.New("stage name, start date and end date are required")
)
