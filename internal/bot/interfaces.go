package bot

import (
	"context"
	"time"

	"Zodbot/internal/clients/bugzilla"
	"Zodbot/internal/clients/fasjson"
	"Zodbot/internal/clients/fedocal"
	"Zodbot/internal/clients/fedorastatus"
	"Zodbot/internal/clients/pagure"
	"Zodbot/internal/core/identity"
	"Zodbot/internal/matrix"
)

// Chat is the Matrix surface the bot talks through
type Chat interface {
	UserID() string
	SendMarkdown(ctx context.Context, roomID, md string, opts matrix.MarkdownOptions) (string, error)
	SendReaction(ctx context.Context, roomID, eventID, key string) (string, error)
	MarkRead(ctx context.Context, roomID, eventID string) error
	GetEvent(ctx context.Context, roomID, eventID string) (*matrix.Event, error)
}

// IdentityResolver maps chat subjects onto Fedora accounts
type IdentityResolver interface {
	Resolve(ctx context.Context, raw string, msg identity.Message) (*identity.Profile, error)
}

// Groups reads Fedora Accounts groups
type Groups interface {
	GetGroup(ctx context.Context, groupname string) (*fasjson.Group, error)
	GetGroupMembership(ctx context.Context, groupname string, kind fasjson.MembershipType) ([]*identity.Profile, error)
}

// Bugs reads Bugzilla
type Bugs interface {
	GetBug(ctx context.Context, id string) (*bugzilla.Bug, error)
	BugURL(id string) string
}

// Issues reads pagure.io issues
type Issues interface {
	GetIssue(ctx context.Context, project, id string) (*pagure.Issue, error)
}

// Projects reads dist-git projects
type Projects interface {
	GetProject(ctx context.Context, namespace, project string) (*pagure.Project, error)
}

// StatusPage reads Fedora Status
type StatusPage interface {
	URL() string
	Outages(ctx context.Context, kind fedorastatus.OutageType) ([]fedorastatus.Outage, error)
}

// Calendar reads FedoCal
type Calendar interface {
	FutureMeetings(ctx context.Context, now time.Time) ([]fedocal.ScheduledMeeting, error)
}

// Throttle limits how often one sender may run commands
type Throttle interface {
	Allow(key string) bool
}

// Metrics records what the bot does
type Metrics interface {
	IncCommand(command, outcome string)
	IncResolution(outcome string)
	IncCookiesGiven()
}

type nopMetrics struct{}

func (nopMetrics) IncCommand(string, string) {}
func (nopMetrics) IncResolution(string)      {}
func (nopMetrics) IncCookiesGiven()          {}
