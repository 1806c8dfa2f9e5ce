// Package fedocal reads meetings from the Fedora calendar
package fedocal

import (
	"context"
	"errors"
	"sort"
	"time"

	"Zodbot/internal/clients/apiclient"
)

const meetingTimeLayout = "2006-01-02 15:04:05"

// Meeting is a FedoCal meeting as published by the API
type Meeting struct {
	Name      string `json:"meeting_name"`
	Date      string `json:"meeting_date"`
	TimeStart string `json:"meeting_time_start"`
	Location  string `json:"meeting_location"`
}

// StartTime returns the meeting start time, which FedoCal publishes in UTC
func (m Meeting) StartTime() (time.Time, error) {
	return time.ParseInLocation(meetingTimeLayout, m.Date+" "+m.TimeStart, time.UTC)
}

// ScheduledMeeting pairs a meeting with its parsed start time
type ScheduledMeeting struct {
	Start time.Time
	Meeting
}

// QueryError is a failed FedoCal request, rendered for chat
type QueryError struct {
	Err     error
	Message string
}

func (e *QueryError) Error() string {
	return "FedoCal query issue: " + e.Message
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Client talks to FedoCal
type Client struct {
	api *apiclient.Client
}

// NewClient creates a FedoCal client; cfg.BaseURL is the API root
func NewClient(cfg apiclient.Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "fedocal"
	}
	return &Client{api: apiclient.New(cfg)}
}

// Meetings returns every meeting FedoCal lists
func (c *Client) Meetings(ctx context.Context) ([]Meeting, error) {
	var resp struct {
		Meetings []Meeting `json:"meetings"`
	}
	if err := c.api.GetJSON(ctx, "meetings", nil, nil, &resp); err != nil {
		var statusErr *apiclient.StatusError
		if errors.As(err, &statusErr) {
			var body struct {
				Message string `json:"message"`
			}
			_ = statusErr.DecodeBody(&body)
			if body.Message == "" {
				body.Message = statusErr.Error()
			}
			return nil, &QueryError{Message: body.Message, Err: err}
		}
		return nil, &QueryError{Message: "service unreachable", Err: err}
	}
	return resp.Meetings, nil
}

// FutureMeetings returns the meetings starting after now, soonest first.
// Meetings with unparseable times are skipped.
func (c *Client) FutureMeetings(ctx context.Context, now time.Time) ([]ScheduledMeeting, error) {
	meetings, err := c.Meetings(ctx)
	if err != nil {
		return nil, err
	}

	var future []ScheduledMeeting
	for _, m := range meetings {
		start, err := m.StartTime()
		if err != nil || !start.After(now) {
			continue
		}
		future = append(future, ScheduledMeeting{Start: start, Meeting: m})
	}
	sort.SliceStable(future, func(i, j int) bool { return future[i].Start.Before(future[j].Start) })
	return future, nil
}
