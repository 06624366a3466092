// Package repository defines data access interfaces for Sales Tracker.
// These interfaces abstract database operations, allowing for different implementations
// (PostgreSQL, SQLite, in-memory for testing) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/salestracker/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// Delete deletes a user by ID. Sales owned by the user are removed
	// by the schema's ON DELETE CASCADE.
	Delete(ctx context.Context, id int64) error

	// List returns all users with pagination.
	List(ctx context.Context, opts ListOptions) (*ListResult[domain.User], error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername checks if a user with the given username exists.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// =============================================================================
// Sale Repository
// =============================================================================

// SaleRepository defines the interface for sale data access.
// The repository exposes owner-scoped query methods but enforces no
// ownership policy of its own; that is the service layer's responsibility.
type SaleRepository interface {
	// Create creates a new sale.
	Create(ctx context.Context, sale *domain.Sale) error

	// GetByID retrieves a sale by ID regardless of owner.
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)

	// GetByIDForOwner retrieves a sale by ID only if it is owned by ownerID.
	// Returns ErrNotFound otherwise, whether the sale is absent or owned
	// by someone else.
	GetByIDForOwner(ctx context.Context, id, ownerID int64) (*domain.Sale, error)

	// Update persists all mutable fields of the sale.
	Update(ctx context.Context, sale *domain.Sale) error

	// Delete deletes a sale by ID, scoped to the owner.
	Delete(ctx context.Context, id, ownerID int64) error

	// ListByOwner returns the owner's sales matching the filter,
	// ordered by creation time descending.
	ListByOwner(ctx context.Context, ownerID int64, filter SaleFilter) ([]*domain.Sale, error)

	// StatsByOwner returns aggregate statistics over the owner's sales.
	StatsByOwner(ctx context.Context, ownerID int64) (*domain.SaleStats, error)
}

// SaleFilter narrows a sale listing.
// Status, when non-empty, is an exact match ANDed with the search predicate.
// Search, when non-empty, is a case-insensitive substring match ORed across
// title, description, customer name, and customer email.
type SaleFilter struct {
	// Status filters to an exact lifecycle status.
	Status domain.SaleStatus

	// Search is free text matched against the searchable fields.
	Search string
}

// =============================================================================
// Common Types
// =============================================================================

// ListOptions contains common pagination options.
type ListOptions struct {
	// Offset is the number of records to skip.
	Offset int

	// Limit is the maximum number of records to return.
	Limit int
}

// ListResult is a generic paginated list result.
type ListResult[T any] struct {
	// Items is the list of items.
	Items []*T

	// Total is the total number of items (without pagination).
	Total int64

	// Offset is the current offset.
	Offset int

	// Limit is the current limit.
	Limit int
}
