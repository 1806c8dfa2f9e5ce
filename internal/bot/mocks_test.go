package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"Zodbot/internal/clients/bugzilla"
	"Zodbot/internal/clients/fasjson"
	"Zodbot/internal/clients/fedocal"
	"Zodbot/internal/clients/fedorastatus"
	"Zodbot/internal/clients/pagure"
	"Zodbot/internal/core/cookies"
	"Zodbot/internal/core/identity"
	"Zodbot/internal/core/oncall"
	"Zodbot/internal/matrix"

	"github.com/stretchr/testify/mock"
	"maunium.net/go/mautrix"
)

type sentMessage struct {
	RoomID   string
	Markdown string
	Opts     matrix.MarkdownOptions
}

type fakeChat struct {
	mu        sync.Mutex
	sent      []sentMessage
	reactions []string
	read      []string
	events    map[string]*matrix.Event
}

func (f *fakeChat) UserID() string { return "@zodbot:fedora.im" }

func (f *fakeChat) SendMarkdown(_ context.Context, roomID, md string, opts matrix.MarkdownOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{RoomID: roomID, Markdown: md, Opts: opts})
	return "$sent", nil
}

func (f *fakeChat) SendReaction(_ context.Context, _, eventID, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, eventID+" "+key)
	return "$reaction", nil
}

func (f *fakeChat) MarkRead(_ context.Context, _, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read = append(f.read, eventID)
	return nil
}

func (f *fakeChat) GetEvent(_ context.Context, _, eventID string) (*matrix.Event, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, fmt.Errorf("matrix: get event %s failed: %w", eventID, mautrix.MNotFound)
	}
	return event, nil
}

type MockResolver struct{ mock.Mock }

func (m *MockResolver) Resolve(ctx context.Context, raw string, msg identity.Message) (*identity.Profile, error) {
	args := m.Called(ctx, raw, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

type MockGroups struct{ mock.Mock }

func (m *MockGroups) GetGroup(ctx context.Context, groupname string) (*fasjson.Group, error) {
	args := m.Called(ctx, groupname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fasjson.Group), args.Error(1)
}

func (m *MockGroups) GetGroupMembership(ctx context.Context, groupname string, kind fasjson.MembershipType) ([]*identity.Profile, error) {
	args := m.Called(ctx, groupname, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*identity.Profile), args.Error(1)
}

type MockBugs struct{ mock.Mock }

func (m *MockBugs) GetBug(ctx context.Context, id string) (*bugzilla.Bug, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bugzilla.Bug), args.Error(1)
}

func (m *MockBugs) BugURL(id string) string {
	return "https://bugzilla.redhat.com/" + id
}

type MockIssues struct{ mock.Mock }

func (m *MockIssues) GetIssue(ctx context.Context, project, id string) (*pagure.Issue, error) {
	args := m.Called(ctx, project, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagure.Issue), args.Error(1)
}

type MockProjects struct{ mock.Mock }

func (m *MockProjects) GetProject(ctx context.Context, namespace, project string) (*pagure.Project, error) {
	args := m.Called(ctx, namespace, project)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagure.Project), args.Error(1)
}

type MockStatus struct{ mock.Mock }

func (m *MockStatus) URL() string { return "https://status.fedoraproject.org" }

func (m *MockStatus) Outages(ctx context.Context, kind fedorastatus.OutageType) ([]fedorastatus.Outage, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fedorastatus.Outage), args.Error(1)
}

type MockCalendar struct{ mock.Mock }

func (m *MockCalendar) FutureMeetings(ctx context.Context, now time.Time) ([]fedocal.ScheduledMeeting, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fedocal.ScheduledMeeting), args.Error(1)
}

type MockOncall struct{ mock.Mock }

func (m *MockOncall) List(ctx context.Context) ([]oncall.Entry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]oncall.Entry), args.Error(1)
}

func (m *MockOncall) Add(ctx context.Context, profile *identity.Profile) (oncall.Entry, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(oncall.Entry), args.Error(1)
}

func (m *MockOncall) Remove(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

type MockCookies struct{ mock.Mock }

func (m *MockCookies) Give(ctx context.Context, from, to string) (*cookies.Receipt, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cookies.Receipt), args.Error(1)
}

func (m *MockCookies) Count(ctx context.Context, username string) (cookies.Tally, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(cookies.Tally), args.Error(1)
}

type recordingMetrics struct {
	commands    map[string]int
	resolutions map[string]int
	cookies     int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{commands: map[string]int{}, resolutions: map[string]int{}}
}

func (r *recordingMetrics) IncCommand(command, outcome string) { r.commands[command+"/"+outcome]++ }
func (r *recordingMetrics) IncResolution(outcome string)      { r.resolutions[outcome]++ }
func (r *recordingMetrics) IncCookiesGiven()                  { r.cookies++ }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }
