package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gsem/gradebot/auth"
	apperrors "github.com/gsem/gradebot/internal/errors"
	"github.com/gsem/gradebot/sessions"
	"github.com/gsem/gradebot/store"
	"github.com/gsem/gradebot/store/storefake"
	"github.com/gsem/gradebot/tokens"
	"github.com/stretchr/testify/require"
)

var (
	testNow  = time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	userPetr = sessions.Identity{PlatformID: 1001, Handle: "petr"}
	userAnna = sessions.Identity{PlatformID: 1002, Handle: "anna"}
)

// testFixture holds all test dependencies
type testFixture struct {
	store   *storefake.FakeStore
	service *auth.Service
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	fs := storefake.NewFakeStore()
	service, err := auth.NewService(fs, auth.WithNowTime(func() time.Time { return testNow }))
	require.NoError(t, err)

	return &testFixture{
		store:   fs,
		service: service,
	}
}

// issueRoster imports roster text and persists it, returning the tokens in roster order
func (f *testFixture) issueRoster(t *testing.T, roster string) []*tokens.Token {
	t.Helper()

	batch, err := tokens.ImportRoster(strings.NewReader(roster), tokens.NewDate(2030, time.January, 1))
	require.NoError(t, err)
	require.NoError(t, f.service.IssueTokens(context.Background(), batch))
	return tokens.SortedBatch(batch)
}

func (f *testFixture) token(t *testing.T, token string) *tokens.Token {
	t.Helper()

	var rec *tokens.Token
	require.NoError(t, f.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		rec, err = tx.GetToken(token)
		return err
	}))
	return rec
}

func (f *testFixture) session(t *testing.T, token string) *sessions.Session {
	t.Helper()

	var rec *sessions.Session
	require.NoError(t, f.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		rec, err = tx.GetSession(token)
		return err
	}))
	return rec
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := auth.NewService(nil)
	require.Error(t, err)
}

func TestEndToEndTokenLifecycle(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	issued := f.issueRoster(t, "Ivanov Petr KN-201\n")
	token := issued[0].Token
	rec := f.token(t, token)
	require.Equal(t, "KN-201", rec.Group)
	require.False(t, rec.InUse)

	got, err := f.service.Login(ctx, userPetr, []string{token})
	require.NoError(t, err)
	require.Equal(t, token, got)

	current, err := f.service.CurrentTokenFor(ctx, userPetr)
	require.NoError(t, err)
	require.Equal(t, token, current)

	_, err = f.service.Login(ctx, userAnna, []string{token})
	require.ErrorIs(t, err, auth.ErrTokenAlreadyInUse)

	require.NoError(t, f.service.LogOut(ctx, userPetr))

	_, err = f.service.Login(ctx, userAnna, []string{token})
	require.NoError(t, err)

	rec = f.token(t, token)
	require.True(t, rec.InUse)
	require.Equal(t, "anna", *rec.BoundHandle)
}

func TestFirstLoginCreatesSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.issueRoster(t, "Ivanov Petr KN-201\n")[0].Token

	used, err := f.service.WasTokenUsedBefore(ctx, token)
	require.NoError(t, err)
	require.False(t, used)

	require.NoError(t, f.service.LogIn(ctx, token, userPetr))

	used, err = f.service.WasTokenUsedBefore(ctx, token)
	require.NoError(t, err)
	require.True(t, used)

	s := f.session(t, token)
	require.True(t, s.Active)
	require.Equal(t, "Petr", s.FirstName)
	require.Equal(t, "Ivanov", s.LastName)
	require.Equal(t, "KN-201", s.Group)
	require.Equal(t, int64(1001), *s.BoundID)
	require.Equal(t, "petr", *s.BoundHandle)
	require.True(t, testNow.Equal(s.StartedAt))
	require.Equal(t, "2030-01-01", s.Deadline.Format(tokens.DateLayout))
	require.Empty(t, s.Progress)
}

func TestReloginKeepsSessionAndProgress(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.issueRoster(t, "Ivanov Petr KN-201\n")[0].Token

	require.NoError(t, f.service.LogIn(ctx, token, userPetr))
	require.NoError(t, f.store.Update(ctx, func(tx store.Tx) error {
		s, err := tx.GetSession(token)
		if err != nil {
			return err
		}
		s.Progress["task1"] = true
		return tx.PutSession(s)
	}))

	require.NoError(t, f.service.LogOut(ctx, userPetr))
	s := f.session(t, token)
	require.False(t, s.Active)
	require.Nil(t, s.BoundHandle)
	require.Nil(t, s.BoundID)
	require.True(t, s.Progress["task1"])
	rec := f.token(t, token)
	require.False(t, rec.InUse)
	require.Nil(t, rec.BoundHandle)

	require.NoError(t, f.service.LogIn(ctx, token, userPetr))

	var count int
	require.NoError(t, f.store.View(ctx, func(tx store.Tx) error {
		count = len(tx.ListSessions())
		return nil
	}))
	require.Equal(t, 1, count)

	s = f.session(t, token)
	require.True(t, s.Active)
	require.True(t, s.Progress["task1"])
	require.True(t, testNow.Equal(s.StartedAt))
}

func TestValidateLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.issueRoster(t, "Ivanov Petr KN-201\n")[0].Token

	tests := []struct {
		name string
		id   sessions.Identity
		args []string
		err  error
	}{
		{name: "valid", id: userPetr, args: []string{token}},
		{name: "no arguments", id: userPetr, args: nil, err: auth.ErrNoArguments},
		{name: "too many arguments", id: userPetr, args: []string{token, "extra"}, err: auth.ErrTooManyArguments},
		{name: "unknown token", id: userPetr, args: []string{"not-a-token"}, err: auth.ErrInvalidToken},
		{name: "anonymous", id: sessions.Identity{PlatformID: 5}, args: []string{token}, err: auth.ErrAnonymousUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.service.ValidateLogin(ctx, tt.id, tt.args)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, token, got)
		})
	}
}

func TestAlreadyLoggedInRegardlessOfToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	issued := f.issueRoster(t, "Ivanov Petr KN-201\nSidorova Anna KN-201\n")

	_, err := f.service.Login(ctx, userPetr, []string{issued[0].Token})
	require.NoError(t, err)

	_, err = f.service.ValidateLogin(ctx, userPetr, []string{issued[0].Token})
	require.ErrorIs(t, err, auth.ErrAlreadyLoggedIn)

	_, err = f.service.ValidateLogin(ctx, userPetr, []string{issued[1].Token})
	require.ErrorIs(t, err, auth.ErrAlreadyLoggedIn)

	_, err = f.service.ValidateLogin(ctx, userPetr, nil)
	require.ErrorIs(t, err, auth.ErrAlreadyLoggedIn)

	require.ErrorIs(t, f.service.LogIn(ctx, issued[1].Token, userPetr), auth.ErrAlreadyLoggedIn)
}

func TestLogInUnknownToken(t *testing.T) {
	f := setupTestFixture(t)
	err := f.service.LogIn(context.Background(), "missing", userPetr)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLogOutWithoutSession(t *testing.T) {
	f := setupTestFixture(t)
	err := f.service.LogOut(context.Background(), userPetr)
	require.ErrorIs(t, err, auth.ErrNoActiveSession)

	reason, ok := auth.ReasonOf(err)
	require.True(t, ok)
	require.Equal(t, auth.ReasonNoActiveSession, reason)
}

func TestCurrentTokenFor(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.service.CurrentTokenFor(ctx, userPetr)
	require.ErrorIs(t, err, auth.ErrTokenNotFound)

	_, err = f.service.CurrentTokenFor(ctx, sessions.Identity{PlatformID: 9})
	require.ErrorIs(t, err, auth.ErrTokenNotFound)
}

func TestIssueTokensNeverOverwrites(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	token := f.issueRoster(t, "Ivanov Petr KN-201\n")[0].Token

	err := f.service.IssueTokens(ctx, map[string]*tokens.Token{
		token: {Token: token, LastName: "Other", FirstName: "Person", Group: "KN-999"},
	})
	require.ErrorIs(t, err, auth.ErrTokenAlreadyIssued)
	require.Equal(t, "KN-201", f.token(t, token).Group)
}

func TestStorageErrorsPassThrough(t *testing.T) {
	f := setupTestFixture(t)
	f.store.FailWith = apperrors.Storage(errors.New("disk full"), "test")

	_, err := f.service.Login(context.Background(), userPetr, []string{"x"})
	require.ErrorIs(t, err, apperrors.ErrStorage)
	_, ok := auth.ReasonOf(err)
	require.False(t, ok)
}

func TestReasonStrings(t *testing.T) {
	require.Equal(t, "token already in use", auth.ReasonTokenAlreadyInUse.String())
	require.Equal(t, "unknown reason", auth.Reason(0).String())
	require.EqualError(t, auth.ErrInvalidToken, "auth: invalid token")
}
