// Package bugzilla fetches bugs from a Bugzilla REST API
package bugzilla

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"Zodbot/internal/clients/apiclient"
)

// Bug is the subset of a Bugzilla bug the bot shows
type Bug struct {
	Summary   string   `json:"summary"`
	Status    string   `json:"status,omitempty"`
	Component []string `json:"component,omitempty"`
	ID        int      `json:"id,omitempty"`
}

// QueryError is a failed Bugzilla request, rendered for chat
type QueryError struct {
	Err    error
	Detail string
}

func (e *QueryError) Error() string {
	return "Issue querying Bugzilla: " + e.Detail
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to Bugzilla
type Client struct {
	api *apiclient.Client
}

// NewClient creates a Bugzilla client; cfg.BaseURL is the site root
func NewClient(cfg apiclient.Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "bugzilla"
	}
	return &Client{api: apiclient.New(cfg)}
}

// BugURL is the web page of bug id
func (c *Client) BugURL(id string) string {
	return c.api.BaseURL() + "/" + id
}

// GetBug returns bug id
func (c *Client) GetBug(ctx context.Context, id string) (*Bug, error) {
	var resp struct {
		Bugs []Bug `json:"bugs"`
	}
	if err := c.api.GetJSON(ctx, "rest/bug/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return nil, queryError(err)
	}
	if len(resp.Bugs) == 0 {
		return nil, &QueryError{Detail: fmt.Sprintf("bug %s not found", id)}
	}
	return &resp.Bugs[0], nil
}

func queryError(err error) error {
	var statusErr *apiclient.StatusError
	if !errors.As(err, &statusErr) {
		return &QueryError{Detail: "service unreachable", Err: err}
	}
	if errors.Is(err, apiclient.ErrNotFound) {
		var body struct {
			Message string `json:"message"`
			Error   any    `json:"error"`
		}
		if statusErr.DecodeBody(&body) == nil {
			if body.Message != "" {
				return &QueryError{Detail: body.Message, Err: err}
			}
			if body.Error != nil {
				return &QueryError{Detail: fmt.Sprint(body.Error), Err: err}
			}
		}
	}
	return &QueryError{Detail: fmt.Sprintf("%d: %s", statusErr.StatusCode, statusErr.Reason()), Err: err}
}
