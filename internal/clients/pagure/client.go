// Package pagure reads issues and projects from a Pagure instance
// (pagure.io and Fedora dist-git both run it)
package pagure

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"Zodbot/internal/clients/apiclient"
)

// Issue is a Pagure ticket
type Issue struct {
	Title   string `json:"title"`
	FullURL string `json:"full_url"`
	Status  string `json:"status,omitempty"`
	ID      int    `json:"id,omitempty"`
}

// AccessUsers maps access levels to usernames
type AccessUsers struct {
	Owner  []string `json:"owner"`
	Admin  []string `json:"admin"`
	Commit []string `json:"commit"`
}

// Project is a Pagure repository
type Project struct {
	Name        string      `json:"name"`
	Namespace   string      `json:"namespace,omitempty"`
	FullURL     string      `json:"full_url,omitempty"`
	AccessUsers AccessUsers `json:"access_users"`
}

// QueryError is a failed Pagure request, rendered for chat
type QueryError struct {
	Err    error
	Detail string
}

func (e *QueryError) Error() string {
	return "Issue querying Pagure: " + e.Detail
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to one Pagure instance
type Client struct {
	api *apiclient.Client
}

// NewClient creates a Pagure client; cfg.BaseURL is the instance root
func NewClient(cfg apiclient.Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "pagure"
	}
	cfg.BaseURL = cfg.BaseURL + "/api/0"
	return &Client{api: apiclient.New(cfg)}
}

// GetIssue returns issue id of project
func (c *Client) GetIssue(ctx context.Context, project, id string) (*Issue, error) {
	var issue Issue
	if err := c.api.GetJSON(ctx, joinPath(project, "issue", id), nil, nil, &issue); err != nil {
		return nil, queryError(err)
	}
	return &issue, nil
}

// GetProject returns project, optionally inside namespace (e.g. "rpms")
func (c *Client) GetProject(ctx context.Context, namespace, project string) (*Project, error) {
	var p Project
	if err := c.api.GetJSON(ctx, joinPath(namespace, project), nil, nil, &p); err != nil {
		return nil, queryError(err)
	}
	return &p, nil
}

func joinPath(parts ...string) string {
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			escaped = append(escaped, url.PathEscape(p))
		}
	}
	return strings.Join(escaped, "/")
}

func queryError(err error) error {
	var statusErr *apiclient.StatusError
	if !errors.As(err, &statusErr) {
		return &QueryError{Detail: "service unreachable", Err: err}
	}
	if errors.Is(err, apiclient.ErrNotFound) {
		var body struct {
			Error string `json:"error"`
		}
		if statusErr.DecodeBody(&body) == nil && body.Error != "" {
			return &QueryError{Detail: body.Error, Err: err}
		}
	}
	return &QueryError{Detail: fmt.Sprintf("%d: %s", statusErr.StatusCode, statusErr.Reason()), Err: err}
}
