package errors

import (
	"net/http"

	"go-presence/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		"INVALID_CREDENTIALS",
		"Email or password is incorrect",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"The provided token is invalid",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"The provided token has expired",
		http.StatusUnauthorized,
	)

	ErrInvalidRefreshToken = apperror.New(
		"INVALID_REFRESH_TOKEN",
		"The refresh token is invalid",
		http.StatusUnauthorized,
	)

	ErrUserNotFound = apperror.New(
		"USER_NOT_FOUND",
		"User not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		"USER_ALREADY_EXISTS",
		"A user with this email or user id already exists",
		http.StatusConflict,
	)

	ErrTokenGenerationFailed = apperror.New(
		"TOKEN_GENERATION_FAILED",
		"Could not generate a token",
		http.StatusInternalServerError,
	)

	ErrForbidden = apperror.ErrForbidden
)
