package identity

import (
	"context"
	"errors"
)

// Resolver turns a raw command argument into exactly one Fedora Accounts
// profile. It keeps no state between calls and never retries.
type Resolver struct {
	directory Directory
	settings  Settings
}

// NewResolver creates a resolver backed by directory
func NewResolver(directory Directory, settings Settings) *Resolver {
	return &Resolver{
		directory: directory,
		settings:  settings.clone(),
	}
}

// Resolve finds the profile raw refers to. An empty raw argument (with no
// mention in msg) resolves the sender. Failures are *Error values whose
// Message can be sent to the room verbatim.
func (r *Resolver) Resolve(ctx context.Context, raw string, msg Message) (*Profile, error) {
	subject, err := Classify(raw, msg)
	if err != nil {
		return nil, err
	}

	switch subject.Kind {
	case SubjectMatrixID:
		return r.resolveMatrixID(ctx, subject.MatrixID)
	case SubjectAccountName:
		return r.resolveAccount(ctx, subject.Name)
	default:
		id, err := ParseMatrixID(msg.Sender)
		if err != nil {
			return nil, err
		}
		return r.resolveMatrixID(ctx, id)
	}
}

// resolveMatrixID looks for accounts that declare id, falling back to the
// localpart for safe homeservers
func (r *Resolver) resolveMatrixID(ctx context.Context, id MatrixID) (*Profile, error) {
	matches, err := r.directory.FindAccountsByProtocolID(ctx, id.DirectoryNick())
	if err != nil {
		return nil, directoryUnavailable(err)
	}

	switch len(matches) {
	case 0:
		if r.settings.IsSafeDomain(id.Domain) {
			return r.resolveAccount(ctx, id.Localpart)
		}
		return nil, noProtocolMapping(id)
	case 1:
		return matches[0], nil
	default:
		return nil, ambiguousDirectoryMatch(id, matches)
	}
}

func (r *Resolver) resolveAccount(ctx context.Context, name string) (*Profile, error) {
	profile, err := r.directory.GetAccount(ctx, name)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return nil, noSuchAccount(name, err)
	case err != nil:
		return nil, directoryUnavailable(err)
	case profile == nil:
		return nil, noSuchAccount(name, ErrAccountNotFound)
	}
	return profile, nil
}
