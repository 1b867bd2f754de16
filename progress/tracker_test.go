package progress_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gsem/gradebot/auth"
	"github.com/gsem/gradebot/progress"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store/storefake"
	"github.com/gsem/gradebot/tokens"
	"github.com/stretchr/testify/require"
)

var userOlga = sessions.Identity{PlatformID: 2001, Handle: "olga"}

// testFixture holds all test dependencies
type testFixture struct {
	store   *storefake.FakeStore
	auth    *auth.Service
	tracker *progress.Tracker
	batch   []*tokens.Token
}

// setupTestFixture creates a store with a two-student roster and a tracker over it
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	fs := storefake.NewFakeStore()
	authService, err := auth.NewService(fs)
	require.NoError(t, err)
	tracker, err := progress.NewTracker(fs)
	require.NoError(t, err)

	roster := "Ivanov Ivan IU-1\nAbramova Olga IU-2\n"
	batch, err := tokens.ImportRoster(strings.NewReader(roster), tokens.NewDate(2030, time.June, 1))
	require.NoError(t, err)
	require.NoError(t, authService.IssueTokens(context.Background(), batch))

	return &testFixture{
		store:   fs,
		auth:    authService,
		tracker: tracker,
		batch:   tokens.SortedBatch(batch),
	}
}

func (f *testFixture) login(t *testing.T, id sessions.Identity, token string) {
	t.Helper()
	_, err := f.auth.Login(context.Background(), id, []string{token})
	require.NoError(t, err)
}

func TestNewTrackerRequiresStore(t *testing.T) {
	_, err := progress.NewTracker(nil)
	require.Error(t, err)
}

func TestMarkDoneIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.batch[0].Token
	f.login(t, userOlga, token)

	require.NoError(t, f.tracker.MarkDone(ctx, token, "task3"))
	require.NoError(t, f.tracker.MarkDone(ctx, token, "task3"))

	got, err := f.tracker.GetProgress(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sessions.Progress{"task3": true}, got)
}

func TestGetProgressReturnsCopy(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.batch[0].Token
	f.login(t, userOlga, token)
	require.NoError(t, f.tracker.MarkDone(ctx, token, "task1"))

	got, err := f.tracker.GetProgress(ctx, token)
	require.NoError(t, err)
	got["task9"] = true

	again, err := f.tracker.GetProgress(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sessions.Progress{"task1": true}, again)
}

func TestProgressRequiresActiveSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.batch[0].Token

	require.ErrorIs(t, f.tracker.MarkDone(ctx, token, "task1"), auth.ErrNoActiveSession)
	_, err := f.tracker.GetProgress(ctx, token)
	require.ErrorIs(t, err, auth.ErrNoActiveSession)

	f.login(t, userOlga, token)
	require.NoError(t, f.tracker.MarkDone(ctx, token, "task1"))
	require.NoError(t, f.auth.LogOut(ctx, userOlga))

	require.ErrorIs(t, f.tracker.MarkDone(ctx, token, "task2"), auth.ErrNoActiveSession)
	_, err = f.tracker.GetProgress(ctx, token)
	require.ErrorIs(t, err, auth.ErrNoActiveSession)
}

func TestProgressSurvivesLogoutAndLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.batch[1].Token

	f.login(t, userOlga, token)
	require.NoError(t, f.tracker.MarkDone(ctx, token, "task2"))
	require.NoError(t, f.tracker.MarkDone(ctx, token, "task10"))
	require.NoError(t, f.auth.LogOut(ctx, userOlga))
	f.login(t, userOlga, token)

	got, err := f.tracker.GetProgress(ctx, token)
	require.NoError(t, err)
	require.Equal(t, sessions.Progress{"task2": true, "task10": true}, got)
}

func TestReport(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	ivan := f.batch[0]
	require.Equal(t, "Ivanov", ivan.LastName)
	f.login(t, userOlga, ivan.Token)
	require.NoError(t, f.tracker.MarkDone(ctx, ivan.Token, "task4"))

	rows, err := f.tracker.Report(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, "IU-1", rows[0].Group)
	require.True(t, rows[0].Active)
	require.Equal(t, sessions.Progress{"task4": true}, rows[0].Progress)

	require.Equal(t, "Abramova", rows[1].LastName)
	require.False(t, rows[1].Active)
	require.Empty(t, rows[1].Progress)
}

func TestStorageErrorsPassThrough(t *testing.T) {
	f := setupTestFixture(t)
	f.store.FailWith = context.DeadlineExceeded

	err := f.tracker.MarkDone(context.Background(), f.batch[0].Token, "task1")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
