package cookies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type cookieService struct {
	repo      Repository
	releases  ReleaseSource
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCookieService creates a cookie service. publisher may be nil.
func NewCookieService(repo Repository, releases ReleaseSource, publisher Publisher, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cookieService{
		repo:      repo,
		releases:  releases,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Give records a cookie from one account to another for the current release.
// Publishing failures are logged and do not undo the gift.
func (s *cookieService) Give(ctx context.Context, from, to string) (*Receipt, error) {
	if from == to {
		return nil, ErrSelfGift
	}

	release, err := s.releases.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	err = s.repo.Create(ctx, Cookie{From: from, To: to, Release: release, GivenAt: s.now().UTC()})
	if errors.Is(err, ErrDuplicateCookie) {
		return nil, &AlreadyGivenError{From: from, To: to, Release: release}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store cookie: %w", err)
	}

	tally, err := s.repo.Tally(ctx, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count cookies: %w", err)
	}

	receipt := &Receipt{From: from, To: to, Release: release, Tally: tally}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, EventFromReceipt(*receipt)); err != nil {
			s.logger.Warn("failed to publish cookie event",
				zap.String("from", from), zap.String("to", to), zap.Error(err))
		}
	}
	return receipt, nil
}

func (s *cookieService) Count(ctx context.Context, username string) (Tally, error) {
	tally, err := s.repo.Tally(ctx, username)
	if err != nil {
		return Tally{}, fmt.Errorf("failed to count cookies: %w", err)
	}
	return tally, nil
}
