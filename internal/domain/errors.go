// Package domain contains the core business entities for Sales Tracker.
package domain

import "errors"

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ===========================================
	// User Errors
	// ===========================================

	// ErrEmailAlreadyExists indicates a user with the same email exists.
	ErrEmailAlreadyExists = errors.New("a user with this email already exists")

	// ErrUsernameAlreadyExists indicates a user with the same username exists.
	ErrUsernameAlreadyExists = errors.New("a user with this username already exists")

	// ErrInvalidCredentials indicates authentication failed.
	// Deliberately generic: unknown email, inactive account, and wrong
	// password all surface as this error to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ===========================================
	// Token Errors
	// ===========================================

	// ErrTokenExpired indicates the access token has expired.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid indicates the token signature or claims are invalid.
	ErrTokenInvalid = errors.New("token is invalid")

	// ===========================================
	// Sale Errors
	// ===========================================

	// ErrSaleNotFound indicates the requested sale does not exist, or is
	// owned by a different user. The two cases are indistinguishable.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrSaleTitleRequired indicates the sale title is missing.
	ErrSaleTitleRequired = errors.New("title is required")

	// ErrSaleTitleTooLong indicates the sale title exceeds 200 characters.
	ErrSaleTitleTooLong = errors.New("title must be at most 200 characters")

	// ErrSalePriceNotPositive indicates the price is zero or negative.
	ErrSalePriceNotPositive = errors.New("price must be greater than zero")

	// ErrSaleStatusInvalid indicates the status is not one of
	// pending, completed, cancelled.
	ErrSaleStatusInvalid = errors.New("status must be one of: pending, completed, cancelled")
)
