package oncall

import (
	"context"

	"Zodbot/internal/core/identity"
)

// Repository persists the oncall list
type Repository interface {
	// List returns entries ordered by username
	List(ctx context.Context) ([]Entry, error)
	// Create returns ErrAlreadyOnCall for a duplicate username
	Create(ctx context.Context, entry Entry) error
	// Delete returns ErrNotOnCall when nothing was removed
	Delete(ctx context.Context, username string) error
}

// Service manages the oncall list
type Service interface {
	List(ctx context.Context) ([]Entry, error)
	Add(ctx context.Context, profile *identity.Profile) (Entry, error)
	Remove(ctx context.Context, username string) error
}
