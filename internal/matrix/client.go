// Package matrix adapts the mautrix client-server API client to what a
// command bot needs: sync, join, send, react, read receipts and event lookup.
package matrix

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// ClientConfig holds configuration for creating a Client
type ClientConfig struct {
	HTTPClient    *http.Client
	Logger        *zap.Logger
	HomeserverURL string
	AccessToken   string
	// UserID is filled in by WhoAmI when empty
	UserID string
}

// Client is an authenticated Matrix client
type Client struct {
	api    *mautrix.Client
	logger *zap.Logger
}

// MarkdownOptions controls how SendMarkdown builds the message
type MarkdownOptions struct {
	// ReplyTo makes the message a reply to that event
	ReplyTo string
	// AllowHTML keeps raw HTML found in the markdown
	AllowHTML bool
}

// NewClient creates a Matrix client
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, fmt.Errorf("matrix: HomeserverURL is required")
	}
	if _, err := url.Parse(config.HomeserverURL); err != nil {
		return nil, fmt.Errorf("matrix: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}
	if config.AccessToken == "" {
		return nil, fmt.Errorf("matrix: AccessToken is required")
	}

	api, err := mautrix.NewClient(strings.TrimRight(config.HomeserverURL, "/"), id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("matrix: failed to create client: %w", err)
	}
	if config.HTTPClient != nil {
		api.Client = config.HTTPClient
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, logger: logger}, nil
}

// UserID is the bot's own Matrix ID
func (c *Client) UserID() string {
	return c.api.UserID.String()
}

// WhoAmI asks the homeserver who the access token belongs to and remembers it
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	resp, err := c.api.Whoami(ctx)
	if err != nil {
		return "", fmt.Errorf("matrix: whoami failed: %w", err)
	}
	c.api.UserID = resp.UserID
	return resp.UserID.String(), nil
}

// Sync fetches events after since, long-polling for up to timeout
func (c *Client) Sync(ctx context.Context, since string, timeout time.Duration) (*mautrix.RespSync, error) {
	resp, err := c.api.FullSyncRequest(ctx, mautrix.ReqSync{
		Since:   since,
		Timeout: int(timeout / time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("matrix: sync failed: %w", err)
	}
	return resp, nil
}

// JoinRoom joins a room the bot was invited to
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	if _, err := c.api.JoinRoomByID(ctx, id.RoomID(roomID)); err != nil {
		return fmt.Errorf("matrix: join room %s failed: %w", roomID, err)
	}
	return nil
}

// send posts a message-class event under a bot-prefixed transaction ID
func (c *Client) send(ctx context.Context, roomID string, eventType event.Type, content any) (string, error) {
	resp, err := c.api.SendMessageEvent(ctx, id.RoomID(roomID), eventType, content,
		mautrix.ReqSendEvent{TransactionID: "zodbot-" + uuid.NewString()})
	if err != nil {
		c.logger.Debug("matrix send failed", zap.String("room", roomID), zap.String("type", eventType.Type), zap.Error(err))
		return "", fmt.Errorf("matrix: send %s to %s failed: %w", eventType.Type, roomID, err)
	}
	return resp.EventID.String(), nil
}

// SendMarkdown sends md as a notice with a rendered HTML body
func (c *Client) SendMarkdown(ctx context.Context, roomID, md string, opts MarkdownOptions) (string, error) {
	formatted, err := RenderMarkdown(md, opts.AllowHTML)
	if err != nil {
		return "", fmt.Errorf("matrix: failed to render markdown: %w", err)
	}

	content := &MessageContent{
		MsgType:       MsgNotice,
		Body:          md,
		Format:        FormatHTML,
		FormattedBody: formatted,
	}
	if opts.ReplyTo != "" {
		content.RelatesTo = &RelatesTo{InReplyTo: &event.InReplyTo{EventID: id.EventID(opts.ReplyTo)}}
	}
	return c.send(ctx, roomID, event.EventMessage, content)
}

// SendReaction annotates eventID with key
func (c *Client) SendReaction(ctx context.Context, roomID, eventID, key string) (string, error) {
	return c.send(ctx, roomID, event.EventReaction, &event.ReactionEventContent{
		RelatesTo: RelatesTo{Type: RelAnnotation, EventID: id.EventID(eventID), Key: key},
	})
}

// GetEvent fetches a single event
func (c *Client) GetEvent(ctx context.Context, roomID, eventID string) (*Event, error) {
	evt, err := c.api.GetEvent(ctx, id.RoomID(roomID), id.EventID(eventID))
	if err != nil {
		return nil, fmt.Errorf("matrix: get event %s failed: %w", eventID, err)
	}
	if evt.RoomID == "" {
		evt.RoomID = id.RoomID(roomID)
	}
	converted := FromMautrix(evt)
	return &converted, nil
}

// MarkRead sends a read receipt for eventID
func (c *Client) MarkRead(ctx context.Context, roomID, eventID string) error {
	if err := c.api.MarkRead(ctx, id.RoomID(roomID), id.EventID(eventID)); err != nil {
		return fmt.Errorf("matrix: mark read failed: %w", err)
	}
	return nil
}
