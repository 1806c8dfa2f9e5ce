package cookies

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, cookie Cookie) error {
	return m.Called(ctx, cookie).Error(0)
}

func (m *MockRepository) Tally(ctx context.Context, username string) (Tally, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(Tally), args.Error(1)
}

type MockReleaseSource struct {
	mock.Mock
}

func (m *MockReleaseSource) CurrentVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event GiveCookieEvent) error {
	return m.Called(ctx, event).Error(0)
}

func newTestService(repo *MockRepository, releases *MockReleaseSource, publisher Publisher) *cookieService {
	svc := NewCookieService(repo, releases, publisher, nil).(*cookieService)
	svc.now = func() time.Time { return time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestGive(t *testing.T) {
	repo := new(MockRepository)
	releases := new(MockReleaseSource)
	publisher := new(MockPublisher)
	svc := newTestService(repo, releases, publisher)
	ctx := context.Background()
	tally := Tally{
		Username:  "bob",
		Total:     3,
		ByRelease: []ReleaseCount{{Release: "38", Count: 1}, {Release: "37", Count: 2}},
	}

	releases.On("CurrentVersion", ctx).Return("38", nil)
	repo.On("Create", ctx, Cookie{
		From: "alice", To: "bob", Release: "38",
		GivenAt: time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC),
	}).Return(nil)
	repo.On("Tally", ctx, "bob").Return(tally, nil)
	publisher.On("Publish", ctx, GiveCookieEvent{
		Sender:         "alice",
		Recipient:      "bob",
		Total:          3,
		FedoraRelease:  "38",
		CountByRelease: map[string]int{"38": 1, "37": 2},
	}).Return(nil)

	receipt, err := svc.Give(ctx, "alice", "bob")

	require.NoError(t, err)
	assert.Equal(t, "38", receipt.Release)
	assert.Equal(t, 3, receipt.Tally.Total)
	assert.Equal(t, 1, receipt.Tally.CountFor("38"))
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestGive_Self(t *testing.T) {
	repo := new(MockRepository)
	releases := new(MockReleaseSource)
	svc := newTestService(repo, releases, nil)

	_, err := svc.Give(context.Background(), "alice", "alice")

	assert.ErrorIs(t, err, ErrSelfGift)
	assert.Equal(t, "You can't give a cookie to yourself", err.Error())
	releases.AssertNotCalled(t, "CurrentVersion", mock.Anything)
}

func TestGive_AlreadyGiven(t *testing.T) {
	repo := new(MockRepository)
	releases := new(MockReleaseSource)
	svc := newTestService(repo, releases, nil)
	releases.On("CurrentVersion", mock.Anything).Return("38", nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateCookie)

	_, err := svc.Give(context.Background(), "alice", "bob")

	var given *AlreadyGivenError
	require.ErrorAs(t, err, &given)
	assert.ErrorIs(t, err, ErrDuplicateCookie)
	assert.Equal(t, "alice has already given cookies to bob during the F38 timeframe", err.Error())
}

func TestGive_ReleaseLookupFails(t *testing.T) {
	repo := new(MockRepository)
	releases := new(MockReleaseSource)
	svc := newTestService(repo, releases, nil)
	boom := errors.New("Issue querying Bodhi: service unreachable")
	releases.On("CurrentVersion", mock.Anything).Return("", boom)

	_, err := svc.Give(context.Background(), "alice", "bob")

	assert.Equal(t, boom, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGive_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(MockRepository)
	releases := new(MockReleaseSource)
	publisher := new(MockPublisher)
	svc := newTestService(repo, releases, publisher)
	releases.On("CurrentVersion", mock.Anything).Return("38", nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Tally", mock.Anything, "bob").Return(Tally{Username: "bob", Total: 1}, nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	receipt, err := svc.Give(context.Background(), "alice", "bob")

	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Tally.Total)
}

func TestCount(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, new(MockReleaseSource), nil)
	repo.On("Tally", mock.Anything, "bob").Return(Tally{Username: "bob"}, nil)

	tally, err := svc.Count(context.Background(), "bob")

	require.NoError(t, err)
	assert.Zero(t, tally.Total)
	assert.Zero(t, tally.CountFor("38"))
}
