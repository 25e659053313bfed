package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialsphere/internal/models"
	"socialsphere/internal/repository"
	"socialsphere/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sessionRepoStub is a stub for repository.SessionRepository.
type sessionRepoStub struct {
	getCurrentUserFn func(context.Context) (*models.User, error)
	loginFn          func(context.Context, string) (*models.User, error)
	signupFn         func(context.Context, string, string) (*models.User, error)
	logoutFn         func(context.Context) error
}

func (s *sessionRepoStub) GetCurrentUser(ctx context.Context) (*models.User, error) {
	return s.getCurrentUserFn(ctx)
}
func (s *sessionRepoStub) Login(ctx context.Context, email string) (*models.User, error) {
	return s.loginFn(ctx, email)
}
func (s *sessionRepoStub) Signup(ctx context.Context, name, email string) (*models.User, error) {
	return s.signupFn(ctx, name, email)
}
func (s *sessionRepoStub) Logout(ctx context.Context) error {
	return s.logoutFn(ctx)
}

func loggedInAs(user *models.User) *sessionRepoStub {
	return &sessionRepoStub{
		getCurrentUserFn: func(context.Context) (*models.User, error) { return user, nil },
		loginFn:          func(context.Context, string) (*models.User, error) { return nil, errors.New("unexpected Login") },
		signupFn:         func(context.Context, string, string) (*models.User, error) { return nil, errors.New("unexpected Signup") },
		logoutFn:         func(context.Context) error { return nil },
	}
}

// assistantStub is a stub for ContentAssistant.
type assistantStub struct {
	captionFn  func(context.Context, string) string
	adCopyFn   func(context.Context, string, string) string
	moderateFn func(context.Context, string) bool
	moderated  []string
}

func (a *assistantStub) GenerateCaption(ctx context.Context, topic string) string {
	return a.captionFn(ctx, topic)
}
func (a *assistantStub) GenerateAdCopy(ctx context.Context, name, description string) string {
	return a.adCopyFn(ctx, name, description)
}
func (a *assistantStub) Moderate(ctx context.Context, text string) bool {
	a.moderated = append(a.moderated, text)
	return a.moderateFn(ctx, text)
}

func allowAll() *assistantStub {
	return &assistantStub{
		captionFn:  func(_ context.Context, topic string) string { return "Caption about " + topic },
		adCopyFn:   func(_ context.Context, name, _ string) string { return "Headline: " + name },
		moderateFn: func(context.Context, string) bool { return true },
	}
}

var testNow = time.UnixMilli(1_700_000_000_000)

func newMemoryDB(t *testing.T) repository.DB {
	t.Helper()
	return repository.NewDB(storage.NewMemoryStore(storage.Options{}),
		repository.WithClock(func() time.Time { return testNow }))
}

func login(t *testing.T, db repository.DB, email string) *models.User {
	t.Helper()
	user, err := db.Login(context.Background(), email)
	require.NoError(t, err)
	return user
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestRequireUser(t *testing.T) {
	t.Run("No session", func(t *testing.T) {
		_, _, err := requireUser(context.Background(), loggedInAs(nil))
		assertCode(t, err, models.CodeUnauthorized)
	})

	t.Run("Repository error passes through", func(t *testing.T) {
		boom := models.NewDataCorruptError("active_user", errors.New("bad json"))
		stub := loggedInAs(nil)
		stub.getCurrentUserFn = func(context.Context) (*models.User, error) { return nil, boom }
		_, _, err := requireUser(context.Background(), stub)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Logged in", func(t *testing.T) {
		_, user, err := requireUser(context.Background(), loggedInAs(&models.User{ID: "u1"}))
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})
}

func TestAuthService_LoginOrSignup(t *testing.T) {
	t.Run("Existing email logs in", func(t *testing.T) {
		svc := NewAuthService(newMemoryDB(t))
		user, created, err := svc.LoginOrSignup(context.Background(), "ignored", "alex@test.com")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("Unknown email signs up with default name", func(t *testing.T) {
		db := newMemoryDB(t)
		svc := NewAuthService(db)
		user, created, err := svc.LoginOrSignup(context.Background(), "  ", "new@test.com")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "New User", user.Name)

		current, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Equal(t, user.ID, current.ID)
	})

	t.Run("Email required", func(t *testing.T) {
		svc := NewAuthService(loggedInAs(nil))
		_, _, err := svc.LoginOrSignup(context.Background(), "Ann", "")
		assertCode(t, err, models.CodeValidation)
	})

	t.Run("Login failure other than not found is returned", func(t *testing.T) {
		stub := loggedInAs(nil)
		stub.loginFn = func(context.Context, string) (*models.User, error) {
			return nil, models.NewInternalError(errors.New("store down"))
		}
		svc := NewAuthService(stub)
		_, _, err := svc.LoginOrSignup(context.Background(), "Ann", "ann@test.com")
		assertCode(t, err, models.CodeInternal)
	})

	t.Run("Logout", func(t *testing.T) {
		db := newMemoryDB(t)
		login(t, db, "alex@test.com")
		svc := NewAuthService(db)
		require.NoError(t, svc.Logout(context.Background()))
		current, err := svc.CurrentUser(context.Background())
		require.NoError(t, err)
		assert.Nil(t, current)
	})
}

func TestMessengerService(t *testing.T) {
	db := newMemoryDB(t)
	svc := NewMessengerService(db, db, db)
	ctx := context.Background()

	_, err := svc.Contacts(ctx)
	assertCode(t, err, models.CodeUnauthorized)

	login(t, db, "alex@test.com")

	contacts, err := svc.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "u2", contacts[0].ID)

	_, err = svc.Send(ctx, "u2", "Hi Sarah")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "u2", "   ")
	assertCode(t, err, models.CodeValidation)
	_, err = svc.Send(ctx, "nobody", "hello?")
	assertCode(t, err, models.CodeNotFound)

	conversation, err := svc.Conversation(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, conversation, 1)
	assert.Equal(t, "u1", conversation[0].SenderID)
	assert.Equal(t, "Hi Sarah", conversation[0].Text)
}

func TestProfileService_UpdateProfileIsPartial(t *testing.T) {
	db := newMemoryDB(t)
	svc := NewProfileService(db, db)
	ctx := context.Background()

	_, err := svc.Profile(ctx)
	assertCode(t, err, models.CodeUnauthorized)

	login(t, db, "sarah@test.com")
	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{Bio: "Back home for now."})
	require.NoError(t, err)
	assert.Equal(t, "Sarah Smith", updated.Name)
	assert.Equal(t, "Back home for now.", updated.Bio)
	assert.Equal(t, "https://picsum.photos/seed/sarah/200", updated.Avatar)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Back home for now.", profile.Bio)

	// the feed shows the new name on old posts
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{Name: "Sarah S."})
	require.NoError(t, err)
	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sarah S.", posts[1].UserName)
}

func TestGroupService(t *testing.T) {
	db := newMemoryDB(t)
	svc := NewGroupService(db, db)
	ctx := context.Background()

	_, err := svc.CreateGroup(ctx, CreateGroupInput{Name: "Hikers"})
	assertCode(t, err, models.CodeUnauthorized)

	login(t, db, "alex@test.com")
	_, err = svc.CreateGroup(ctx, CreateGroupInput{Name: " "})
	assertCode(t, err, models.CodeValidation)

	group, err := svc.CreateGroup(ctx, CreateGroupInput{Name: "Trail Runners", Description: "Weekend runs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, group.Members)
	assert.Equal(t, "https://picsum.photos/seed/Trail%20Runners/1000/300", group.Cover)

	login(t, db, "sarah@test.com")
	joined, err := svc.JoinGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, joined.Members)

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"u1", "u2"}, groups[0].Members)
}

func TestNew_WiresAllServices(t *testing.T) {
	s := New(newMemoryDB(t), allowAll())
	assert.NotNil(t, s.Auth)
	assert.NotNil(t, s.Feed)
	assert.NotNil(t, s.Marketplace)
	assert.NotNil(t, s.Messenger)
	assert.NotNil(t, s.Profile)
	assert.NotNil(t, s.Groups)
}
