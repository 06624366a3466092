package sqlite

import (
	"database/sql"
	"errors"
	"strings"
)

// Error handling utilities for SQLite.

// isUniqueViolation checks if an error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// SQLite unique constraint error message
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed: UNIQUE")
}

// isNoRows checks if an error indicates no rows were found.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// uniqueColumn extracts the offending column name from a SQLite unique
// violation message, e.g. "UNIQUE constraint failed: users.email" -> "email".
func uniqueColumn(err error) string {
	msg := err.Error()
	idx := strings.LastIndex(msg, ".")
	if idx == -1 || idx == len(msg)-1 {
		return ""
	}
	return strings.TrimSpace(msg[idx+1:])
}

// boolToInt converts a boolean to an integer (SQLite doesn't have native boolean).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
