package cookies

import "context"

// Repository stores cookies
type Repository interface {
	// Create returns ErrDuplicateCookie when (From, To, Release) already exists
	Create(ctx context.Context, cookie Cookie) error
	// Tally returns the cookies received by username, oldest release first
	Tally(ctx context.Context, username string) (Tally, error)
}

// ReleaseSource reports the Fedora release currently in development
type ReleaseSource interface {
	CurrentVersion(ctx context.Context) (string, error)
}

// Publisher announces gifts to the rest of the infrastructure
type Publisher interface {
	Publish(ctx context.Context, event GiveCookieEvent) error
}

// Service gives and counts cookies
type Service interface {
	Give(ctx context.Context, from, to string) (*Receipt, error)
	Count(ctx context.Context, username string) (Tally, error)
}
