// Package repository defines the response history store interface and errors.
package repository

import (
	"context"

	"github.com/okian/quorum/internal/domain/model"
)

// Store provides read/write access to per-user response history.
type Store interface {
	// Append records a unified response under its user. When a user's
	// history is full the oldest response is evicted.
	Append(ctx context.Context, resp model.UnifiedResponse) error

	// Recent returns up to limit responses for a user, newest first.
	// Returns ErrNotFound if the user has no history and
	// ErrInvalidLimit if limit is not positive.
	Recent(ctx context.Context, userID string, limit int) ([]model.UnifiedResponse, error)

	// Count returns the number of responses retained across all users.
	Count(ctx context.Context) int

	// Users returns the number of users with stored history.
	Users(ctx context.Context) int
}
