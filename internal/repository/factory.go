// Package repository provides the data access layer for Sales Tracker.
// This file contains the aggregate types the binaries use to wire
// driver-specific repositories behind the common interfaces.
package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	User UserRepository
	Sale SaleRepository
}

// DatabaseHealth is an interface for database health checks.
// Both the pgx pool wrapper and the SQLite wrapper satisfy it, so the
// health endpoint and shutdown path don't care which driver is in use.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
