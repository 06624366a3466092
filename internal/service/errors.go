// Package service provides business logic services for Sales Tracker.
package service

import "errors"

// Common service errors.
var (
	// User errors
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("a user with this email already exists")
	ErrUsernameAlreadyExists = errors.New("a user with this username already exists")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidUsername       = errors.New("username must be 3-150 characters")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrPasswordTooWeak       = errors.New("password does not meet the strength policy")

	// Token errors
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")

	// Sale errors
	ErrSaleNotFound = errors.New("sale not found")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
