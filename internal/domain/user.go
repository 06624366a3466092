// Package domain contains the core business entities for Sales Tracker.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the sales tracking system.
package domain

import (
	"time"
)

// User represents a registered user in the system.
// Users own sales and authenticate with email + password; the username is a
// unique display handle, not the login key.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Email is the unique email address used as the login credential.
	Email string `json:"email"`

	// Username is the unique username for display.
	// Constraints: 3-150 characters.
	Username string `json:"username"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in API responses.
	PasswordHash string `json:"-"`

	// Company is the optional company name from the signup form.
	Company string `json:"company"`

	// PhoneNumber is the optional contact phone number.
	PhoneNumber string `json:"phone_number"`

	// PlanType is the subscription plan. Default: "free".
	PlanType string `json:"plan_type"`

	// NewsletterSubscribed indicates whether the user opted into the newsletter.
	NewsletterSubscribed bool `json:"newsletter_subscribed"`

	// IsActive indicates whether the user account is active.
	// Inactive users cannot authenticate or perform any operations.
	IsActive bool `json:"-"`

	// IsStaff indicates whether the user has operator privileges.
	// Staff accounts are managed through the admin CLI only.
	IsStaff bool `json:"-"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"-"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"-"`
}

// NewUser creates a new User with default values.
func NewUser(email, username, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		PlanType:     "free",
		IsActive:     true,
		IsStaff:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CanAuthenticate returns true if the user is allowed to authenticate.
func (u *User) CanAuthenticate() bool {
	return u.IsActive
}
