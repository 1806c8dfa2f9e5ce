// Package fasjson is a client for the Fedora Accounts JSON API
package fasjson

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"Zodbot/internal/clients/apiclient"
	"Zodbot/internal/core/identity"
)

// MembershipType selects the group membership list to fetch
type MembershipType string

const (
	Members  MembershipType = "members"
	Sponsors MembershipType = "sponsors"
)

// memberFields limits group listings to what the bot prints
const memberFields = "username,human_name,ircnicks"

// Group is a Fedora Accounts group
type Group struct {
	Groupname   string   `json:"groupname"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	MailingList string   `json:"mailing_list,omitempty"`
	IRC         []string `json:"irc,omitempty"`
}

// GroupNotFoundError is returned for groups that do not exist
type GroupNotFoundError struct {
	Groupname string
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("Sorry, but group '%s' does not exist", e.Groupname)
}

type envelope[T any] struct {
	Result T `json:"result"`
}

// Client talks to FASJSON. It implements identity.Directory.
type Client struct {
	api *apiclient.Client
}

var _ identity.Directory = (*Client)(nil)

// NewClient creates a FASJSON client. cfg.BaseURL is the service root
// (e.g. https://fasjson.fedoraproject.org); the v1 API prefix is added here.
func NewClient(cfg apiclient.Config) *Client {
	cfg.BaseURL = cfg.BaseURL + "/v1"
	if cfg.Name == "" {
		cfg.Name = "fasjson"
	}
	return &Client{api: apiclient.New(cfg)}
}

// GetAccount returns the profile of username
func (c *Client) GetAccount(ctx context.Context, username string) (*identity.Profile, error) {
	var resp envelope[*identity.Profile]
	err := c.api.GetJSON(ctx, "users/"+url.PathEscape(username)+"/", nil, nil, &resp)
	if err != nil {
		return nil, directoryError(err)
	}
	if resp.Result == nil {
		return nil, identity.ErrAccountNotFound
	}
	return resp.Result, nil
}

// FindAccountsByProtocolID returns the accounts with nick in their ircnicks
func (c *Client) FindAccountsByProtocolID(ctx context.Context, nick string) ([]*identity.Profile, error) {
	var resp envelope[[]*identity.Profile]
	query := url.Values{"ircnick__exact": {nick}}
	if err := c.api.GetJSON(ctx, "search/users/", query, nil, &resp); err != nil {
		return nil, directoryError(err)
	}
	return resp.Result, nil
}

// GetGroup returns the group named groupname
func (c *Client) GetGroup(ctx context.Context, groupname string) (*Group, error) {
	var resp envelope[*Group]
	err := c.api.GetJSON(ctx, "groups/"+url.PathEscape(groupname)+"/", nil, nil, &resp)
	if err != nil {
		return nil, groupError(groupname, err)
	}
	if resp.Result == nil {
		return nil, &GroupNotFoundError{Groupname: groupname}
	}
	return resp.Result, nil
}

// GetGroupMembership lists the members or sponsors of groupname
func (c *Client) GetGroupMembership(ctx context.Context, groupname string, kind MembershipType) ([]*identity.Profile, error) {
	var resp envelope[[]*identity.Profile]
	path := "groups/" + url.PathEscape(groupname) + "/" + string(kind) + "/"
	header := http.Header{"X-Fields": {memberFields}}
	if err := c.api.GetJSON(ctx, path, nil, header, &resp); err != nil {
		return nil, groupError(groupname, err)
	}
	return resp.Result, nil
}

func directoryError(err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return fmt.Errorf("%w: %w", identity.ErrAccountNotFound, err)
	}
	return &identity.ServiceError{StatusCode: apiclient.StatusCode(err), Err: err}
}

func groupError(groupname string, err error) error {
	if errors.Is(err, apiclient.ErrNotFound) {
		return &GroupNotFoundError{Groupname: groupname}
	}
	return &identity.ServiceError{StatusCode: apiclient.StatusCode(err), Err: err}
}
