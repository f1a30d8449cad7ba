// Package services defines the business logic for authentication, sessions,
// and permission grants. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Auth-related errors.
var (
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidEmail is returned when an email address cannot be parsed.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned when a password is shorter than the
	// configured minimum.
	ErrWeakPassword = errors.New("password too short")

	// ErrEmailTaken is returned by sign-up when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUnauthenticated is returned when a request carries no valid,
	// unrevoked session.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUserNotFound indicates that the user behind a session no longer exists.
	ErrUserNotFound = errors.New("user not found")
)
