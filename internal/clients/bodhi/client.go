// Package bodhi queries the Bodhi update system for Fedora release metadata
package bodhi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"Zodbot/internal/clients/apiclient"
)

const currentReleaseKey = "current"

// Release is a Bodhi release record
type Release struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	IDPrefix string `json:"id_prefix"`
	State    string `json:"state"`
	EOL      string `json:"eol"`
}

// QueryError is a failed Bodhi request, rendered for chat
type QueryError struct {
	Err    error
	Detail string
}

func (e *QueryError) Error() string {
	return "Issue querying Bodhi: " + e.Detail
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to Bodhi
type Client struct {
	api *apiclient.Client
	// cache is nil when caching is disabled
	cache *expirable.LRU[string, Release]
}

// NewClient creates a Bodhi client. The current release is cached for cacheTTL;
// zero disables caching.
func NewClient(cfg apiclient.Config, cacheTTL time.Duration) *Client {
	if cfg.Name == "" {
		cfg.Name = "bodhi"
	}
	client := &Client{api: apiclient.New(cfg)}
	if cacheTTL > 0 {
		client.cache = expirable.NewLRU[string, Release](1, nil, cacheTTL)
	}
	return client
}

// CurrentRelease returns the newest current Fedora release, picked by end of life
func (c *Client) CurrentRelease(ctx context.Context) (*Release, error) {
	if c.cache != nil {
		if release, ok := c.cache.Get(currentReleaseKey); ok {
			return &release, nil
		}
	}

	var resp struct {
		Releases []Release `json:"releases"`
	}
	err := c.api.GetJSON(ctx, "releases/", url.Values{"state": {"current"}}, nil, &resp)
	if err != nil {
		return nil, queryError(err)
	}

	var fedora []Release
	for _, r := range resp.Releases {
		if r.IDPrefix == "FEDORA" {
			fedora = append(fedora, r)
		}
	}
	if len(fedora) == 0 {
		return nil, &QueryError{Detail: "no current Fedora release"}
	}
	// eol dates are ISO formatted, so they sort as strings
	sort.SliceStable(fedora, func(i, j int) bool { return fedora[i].EOL < fedora[j].EOL })
	newest := fedora[len(fedora)-1]

	if c.cache != nil {
		c.cache.Add(currentReleaseKey, newest)
	}
	return &newest, nil
}

// CurrentVersion returns the version of the current release, e.g. "38"
func (c *Client) CurrentVersion(ctx context.Context) (string, error) {
	release, err := c.CurrentRelease(ctx)
	if err != nil {
		return "", err
	}
	return release.Version, nil
}

func queryError(err error) error {
	var statusErr *apiclient.StatusError
	if !errors.As(err, &statusErr) {
		return &QueryError{Detail: "service unreachable", Err: err}
	}
	if errors.Is(err, apiclient.ErrNotFound) {
		var body struct {
			Errors []struct {
				Description string `json:"description"`
			} `json:"errors"`
		}
		if statusErr.DecodeBody(&body) == nil && len(body.Errors) > 0 {
			descriptions := make([]string, 0, len(body.Errors))
			for _, e := range body.Errors {
				descriptions = append(descriptions, e.Description)
			}
			return &QueryError{Detail: strings.Join(descriptions, ","), Err: err}
		}
	}
	return &QueryError{Detail: fmt.Sprintf("%d: %s", statusErr.StatusCode, statusErr.Reason()), Err: err}
}
