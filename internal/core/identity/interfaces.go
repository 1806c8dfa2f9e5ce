package identity

import "context"

// Directory is the Fedora Accounts lookup surface the resolver depends on
type Directory interface {
	// GetAccount returns the profile for an exact username.
	// Returns ErrAccountNotFound (possibly wrapped) when there is none,
	// and *ServiceError for any other failure.
	GetAccount(ctx context.Context, name string) (*Profile, error)

	// FindAccountsByProtocolID returns the profiles whose ircnicks contain nick
	// (for example "matrix://fedora.im/bob"). No match is an empty result, not an error.
	FindAccountsByProtocolID(ctx context.Context, nick string) ([]*Profile, error)
}
