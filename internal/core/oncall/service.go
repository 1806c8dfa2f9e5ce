package oncall

import (
	"context"
	"fmt"
	"strings"

	"Zodbot/internal/core/identity"
)

type oncallService struct {
	repo          Repository
	defaultDomain string
}

// NewOncallService creates an oncall service. Matrix IDs for new entries are
// derived from the account's chat nicks, falling back to defaultDomain.
func NewOncallService(repo Repository, defaultDomain string) Service {
	return &oncallService{repo: repo, defaultDomain: defaultDomain}
}

func (s *oncallService) List(ctx context.Context) ([]Entry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list oncall entries: %w", err)
	}
	return entries, nil
}

// Add puts the account on the list
func (s *oncallService) Add(ctx context.Context, profile *identity.Profile) (Entry, error) {
	if profile == nil || strings.TrimSpace(profile.Username) == "" {
		return Entry{}, fmt.Errorf("an account is required")
	}

	entry := Entry{
		Username: profile.Username,
		MXID:     s.matrixIDFor(profile),
		Timezone: profile.Timezone,
	}
	if entry.Timezone == "" {
		entry.Timezone = DefaultTimezone
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Remove takes username off the list
func (s *oncallService) Remove(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return fmt.Errorf("username is required")
	}
	return s.repo.Delete(ctx, username)
}

func (s *oncallService) matrixIDFor(profile *identity.Profile) string {
	if ids := identity.MatrixIDsFromNicks(profile.Ircnicks, s.defaultDomain); len(ids) > 0 {
		return ids[0].String()
	}
	return identity.MatrixID{Localpart: profile.Username, Domain: s.defaultDomain}.String()
}
