// Package fedorastatus reads outages from the Fedora infrastructure status page
package fedorastatus

import (
	"context"
	"errors"
	"fmt"

	"Zodbot/internal/clients/apiclient"
)

// OutageType selects one of the published outage lists
type OutageType string

const (
	Ongoing  OutageType = "ongoing"
	Planned  OutageType = "planned"
	Resolved OutageType = "resolved"
)

// Ticket links an outage to its tracking issue
type Ticket struct {
	URL string `json:"url"`
	ID  string `json:"id,omitempty"`
}

// Outage is one entry on the status page
type Outage struct {
	Ticket    *Ticket `json:"ticket,omitempty"`
	Title     string  `json:"title"`
	StartDate string  `json:"startdate"`
	EndDate   string  `json:"enddate,omitempty"`
}

// QueryError is a failed status page request, rendered for chat
type QueryError struct {
	Err    error
	Detail string
}

func (e *QueryError) Error() string {
	return "Issue querying Fedora Status: " + e.Detail
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to the status page
type Client struct {
	api *apiclient.Client
}

// NewClient creates a status page client
func NewClient(cfg apiclient.Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "fedorastatus"
	}
	return &Client{api: apiclient.New(cfg)}
}

// URL is the human facing status page
func (c *Client) URL() string {
	return c.api.BaseURL()
}

// Outages returns the outages of the given type
func (c *Client) Outages(ctx context.Context, kind OutageType) ([]Outage, error) {
	var resp struct {
		Outages []Outage `json:"outages"`
	}
	if err := c.api.GetJSON(ctx, string(kind)+".json", nil, nil, &resp); err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			return nil, &QueryError{Detail: fmt.Sprintf("%d: %s", statusErr.StatusCode, statusErr.Reason()), Err: err}
		}
		return nil, &QueryError{Detail: "service unreachable", Err: err}
	}
	return resp.Outages, nil
}
