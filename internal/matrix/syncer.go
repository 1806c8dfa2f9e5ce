package matrix

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
)

// EventHandler receives room events from the Syncer
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event)
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event Event)

func (f EventHandlerFunc) HandleEvent(ctx context.Context, event Event) { f(ctx, event) }

// syncAPI is the part of *Client the Syncer drives
type syncAPI interface {
	UserID() string
	Sync(ctx context.Context, since string, timeout time.Duration) (*mautrix.RespSync, error)
	JoinRoom(ctx context.Context, roomID string) error
}

const (
	defaultSyncTimeout = 30 * time.Second
	minBackoff         = time.Second
	maxBackoff         = 30 * time.Second
)

// Syncer long-polls /sync and dispatches new messages and reactions. History
// that predates startup is skipped. Invites are accepted automatically.
type Syncer struct {
	// Timeout is the server-side long-poll timeout
	Timeout time.Duration
	client  syncAPI
	handler EventHandler
	events  *mautrix.DefaultSyncer
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewSyncer creates a Syncer for client
func NewSyncer(client syncAPI, handler EventHandler, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Syncer{
		Timeout: defaultSyncTimeout,
		client:  client,
		handler: handler,
		events:  mautrix.NewDefaultSyncer(),
		logger:  logger,
		sleep:   sleepContext,
	}
	s.events.OnEventType(event.EventMessage, s.dispatch)
	s.events.OnEventType(event.EventReaction, s.dispatch)
	return s
}

// Run syncs until ctx is cancelled. Failed syncs are retried with backoff.
func (s *Syncer) Run(ctx context.Context) error {
	since := ""
	initial := true
	backoff := minBackoff

	for {
		timeout := s.Timeout
		if initial {
			timeout = 0
		}

		resp, err := s.client.Sync(ctx, since, timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, mautrix.MUnknownToken) {
				return err
			}
			s.logger.Warn("sync failed, retrying", zap.Error(err), zap.Duration("backoff", backoff))
			if err := s.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		s.joinInvites(ctx, resp)
		if !initial {
			if err := s.events.ProcessResponse(ctx, resp, since); err != nil {
				s.logger.Error("failed to process sync response", zap.String("since", since), zap.Error(err))
			}
		}
		initial = false
		since = resp.NextBatch
	}
}

func (s *Syncer) joinInvites(ctx context.Context, resp *mautrix.RespSync) {
	for roomID := range resp.Rooms.Invite {
		if err := s.client.JoinRoom(ctx, roomID.String()); err != nil {
			s.logger.Warn("failed to accept invite", zap.Stringer("room_id", roomID), zap.Error(err))
			continue
		}
		s.logger.Info("joined room", zap.Stringer("room_id", roomID))
	}
}

func (s *Syncer) dispatch(ctx context.Context, evt *event.Event) {
	if evt.Sender.String() == s.client.UserID() {
		return
	}
	s.handler.HandleEvent(ctx, FromMautrix(evt))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
