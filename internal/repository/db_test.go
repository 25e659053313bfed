package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"socialsphere/internal/models"
	"socialsphere/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func sequentialIDs() func() string {
	var n int64
	return func() string {
		return fmt.Sprintf("id%d", atomic.AddInt64(&n, 1))
	}
}

func newTestDB(t *testing.T) (DB, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore(storage.Options{Namespace: "socialsphere_"})
	db := NewDB(store,
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
	)
	return db, store
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, code), "expected %s, got %v", code, err)
}

func TestListUsers_SeedsOnFirstAccess(t *testing.T) {
	db, store := newTestDB(t)
	ctx := context.Background()

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alex Johnson", users[0].Name)
	assert.Equal(t, "Sarah Smith", users[1].Name)

	_, found, err := store.Read(ctx, KeyUsers)
	require.NoError(t, err)
	assert.True(t, found, "seed data must be persisted")

	again, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, again)
}

func TestListUsers_DoesNotReseedExistingCollection(t *testing.T) {
	db, store := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, KeyUsers, []byte(`[{"id":"x","name":"Only","email":"only@test.com","friends":[]}]`)))

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Only", users[0].Name)
}

func TestListUsers_CorruptDataFailsFast(t *testing.T) {
	db, store := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, KeyUsers, []byte(`{not json`)))

	_, err := db.ListUsers(ctx)
	assertAppErrorCode(t, err, models.CodeDataCorrupt)

	// the corrupt value is left in place for inspection
	raw, _, err := store.Read(ctx, KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(raw))

	_, err = db.Signup(ctx, "Ann", "ann@test.com")
	assertAppErrorCode(t, err, models.CodeDataCorrupt)
}

func TestReset_ReseedsAfterCorruption(t *testing.T) {
	db, store := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, KeyPosts, []byte(`corrupt`)))

	_, err := db.ListPosts(ctx)
	assertAppErrorCode(t, err, models.CodeDataCorrupt)

	require.NoError(t, db.Reset(ctx))

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestListPosts_SeedsDefaultFeed(t *testing.T) {
	db, _ := newTestDB(t)

	posts, err := db.ListPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})
	assert.Equal(t, fixedNow.Add(-time.Hour).UnixMilli(), posts[0].Timestamp)
	assert.True(t, posts[2].IsSponsored)
	assert.Equal(t, "SocialSphere Ads", posts[2].UserName)
}

func TestSavePost_PrependsInReverseInsertionOrder(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		_, err := db.SavePost(ctx, models.Post{ID: fmt.Sprintf("n%d", i), UserID: "u1", Type: models.PostTypeText, Content: "x"})
		require.NoError(t, err)
	}

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 7)
	got := []string{posts[0].ID, posts[1].ID, posts[2].ID, posts[3].ID}
	assert.Equal(t, []string{"n4", "n3", "n2", "n1"}, got)
	assert.Equal(t, "p1", posts[4].ID)
}

func TestSavePost_FillsDefaults(t *testing.T) {
	db, _ := newTestDB(t)

	saved, err := db.SavePost(context.Background(), models.Post{UserID: "u1", Type: models.PostTypeText, Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "id1", saved.ID)
	assert.Equal(t, fixedNow.UnixMilli(), saved.Timestamp)
	assert.Equal(t, int64(1), saved.Version)
	assert.NotNil(t, saved.Likes)
	assert.NotNil(t, saved.Comments)
}

func TestUpdatePost_ReplacesOnlyMatchingPost(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	before, err := db.ListPosts(ctx)
	require.NoError(t, err)

	edited := before[1]
	edited.Content = "Edited content"
	edited.Shares = 99

	updated, err := db.UpdatePost(ctx, edited)
	require.NoError(t, err)
	assert.Equal(t, before[1].Version+1, updated.Version)

	after, err := db.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, "Edited content", after[1].Content)
	assert.Equal(t, 99, after[1].Shares)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
}

func TestUpdatePost_MissingIDIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.UpdatePost(context.Background(), models.Post{ID: "ghost"})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestUpdatePost_StaleVersionIsConflict(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	p, err := db.GetPost(ctx, "p1")
	require.NoError(t, err)

	_, err = db.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)

	p.Content = "lost update"
	_, err = db.UpdatePost(ctx, *p)
	assertAppErrorCode(t, err, models.CodeConflict)

	current, err := db.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Loving the mountain views today!", current.Content)
	assert.Contains(t, current.Likes, "u1")
}

func TestToggleLike_TwiceRestoresLikes(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	original, err := db.GetPost(ctx, "p1")
	require.NoError(t, err)

	liked, err := db.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, liked.Likes)

	unliked, err := db.ToggleLike(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.Equal(t, original.Likes, unliked.Likes)

	_, err = db.ToggleLike(ctx, "nope", "u1")
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestAddComment_Appends(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	post, err := db.AddComment(ctx, "p2", models.Comment{UserID: "u2", UserName: "Sarah Smith", Text: "Thanks!"})
	require.NoError(t, err)
	require.Len(t, post.Comments, 2)
	assert.Equal(t, "c1", post.Comments[0].ID)
	assert.Equal(t, "Thanks!", post.Comments[1].Text)
	assert.Equal(t, "id1", post.Comments[1].ID)
	assert.Equal(t, fixedNow.UnixMilli(), post.Comments[1].Timestamp)
}

func TestListPosts_RefreshesAuthorSnapshots(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	alex, err := db.GetUser(ctx, "u1")
	require.NoError(t, err)
	alex.Name = "Alexandra Johnson"
	alex.Avatar = "https://picsum.photos/seed/alexandra/200"
	require.NoError(t, db.UpdateUser(ctx, *alex))

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra Johnson", posts[0].UserName)
	assert.Equal(t, "https://picsum.photos/seed/alexandra/200", posts[0].UserAvatar)
	assert.Equal(t, "Alexandra Johnson", posts[1].Comments[0].UserName)
	// authors outside the user collection keep their snapshot
	assert.Equal(t, "SocialSphere Ads", posts[2].UserName)
}

func TestUpdateUser_MissingIsNotFound(t *testing.T) {
	db, _ := newTestDB(t)

	err := db.UpdateUser(context.Background(), models.User{ID: "ghost"})
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestLogin(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	current, err := db.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	first, err := db.Login(ctx, "sarah@test.com")
	require.NoError(t, err)
	second, err := db.Login(ctx, "sarah@test.com")
	require.NoError(t, err)
	assert.Equal(t, "u2", first.ID)
	assert.Equal(t, first.ID, second.ID)

	current, err = db.GetCurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "u2", current.ID)
}

func TestLogin_IsCaseSensitiveAndMissesAreNotFound(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.Login(ctx, "SARAH@test.com")
	assert.True(t, models.IsNotFound(err))

	current, err := db.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestSignup_AlwaysCreatesNewUser(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	a, err := db.Signup(ctx, "Jamie", "jamie@test.com")
	require.NoError(t, err)
	b, err := db.Signup(ctx, "Jamie", "jamie@test.com")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "https://picsum.photos/seed/Jamie/200", a.Avatar)
	assert.Equal(t, "https://picsum.photos/seed/Jamie-cover/1000/300", a.CoverPhoto)
	assert.Equal(t, "New SocialSphere user", a.Bio)
	assert.Empty(t, a.Friends)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 4)
	assert.Equal(t, b.ID, users[3].ID)

	current, err := db.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID, current.ID)

	// login picks the first match
	logged, err := db.Login(ctx, "jamie@test.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, logged.ID)
}

func TestLogout_ClearsOnlySession(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	_, err := db.Signup(ctx, "Kai", "kai@test.com")
	require.NoError(t, err)
	require.NoError(t, db.Logout(ctx))

	current, err := db.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)

	users, err := db.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestGetCurrentUser_DanglingSession(t *testing.T) {
	db, store := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, KeySession, []byte(`{"userId":"gone","startedAt":1}`)))

	current, err := db.GetCurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestProducts(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	products, err := db.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	_, err = db.SaveProduct(ctx, models.Product{Title: "Bike", Price: 120})
	require.NoError(t, err)

	products, err = db.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Bike", products[0].Title)
	assert.Equal(t, 120.0, products[0].Price)

	_, err = db.SaveProduct(ctx, models.Product{Title: "Lamp", Price: 15})
	require.NoError(t, err)
	products, err = db.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", products[0].Title)
}

func TestMessages_ConversationIsChronologicalAndScoped(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	send := func(from, to, text string, ts int64) {
		_, err := db.SendMessage(ctx, models.Message{SenderID: from, ReceiverID: to, Text: text, Timestamp: ts})
		require.NoError(t, err)
	}
	send("u1", "u2", "second", 20)
	send("u2", "u1", "first", 10)
	send("u1", "u3", "elsewhere", 15)
	send("u2", "u1", "third", 30)

	conversation, err := db.ListMessages(ctx, "u1", "u2")
	require.NoError(t, err)
	require.Len(t, conversation, 3)
	assert.Equal(t, "first", conversation[0].Text)
	assert.Equal(t, "second", conversation[1].Text)
	assert.Equal(t, "third", conversation[2].Text)

	none, err := db.ListMessages(ctx, "u2", "u3")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGroups_JoinHasSetSemantics(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	g, err := db.SaveGroup(ctx, models.Group{Name: "Hikers"})
	require.NoError(t, err)

	_, err = db.JoinGroup(ctx, g.ID, "u1")
	require.NoError(t, err)
	joined, err := db.JoinGroup(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, joined.Members)

	_, err = db.JoinGroup(ctx, "missing", "u1")
	assertAppErrorCode(t, err, models.CodeNotFound)

	groups, err := db.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Hikers", groups[0].Name)
}

func TestSavePost_QuotaExceededKeepsPreviousFeed(t *testing.T) {
	store := storage.NewMemoryStore(storage.Options{QuotaBytes: 4096})
	db := NewDB(store)
	ctx := context.Background()

	_, err := db.ListPosts(ctx)
	require.NoError(t, err)

	big := make([]byte, 5000)
	for i := range big {
		big[i] = 'a'
	}
	_, err = db.SavePost(ctx, models.Post{UserID: "u1", Type: models.PostTypeText, Content: string(big)})
	assertAppErrorCode(t, err, models.CodeQuotaExceeded)

	posts, err := db.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestSavePost_ConcurrentWritersLoseNothing(t *testing.T) {
	const writers = 25

	stores := map[string]func(t *testing.T) storage.Store{
		"memory": func(*testing.T) storage.Store {
			return storage.NewMemoryStore(storage.Options{})
		},
		"redis": func(t *testing.T) storage.Store {
			mr := miniredis.RunT(t)
			return storage.NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}),
				storage.Options{Namespace: "socialsphere_", MaxRetries: 1000})
		},
	}

	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			db := NewDB(open(t))
			ctx := context.Background()

			var wg sync.WaitGroup
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, err := db.SavePost(ctx, models.Post{UserID: "u1", Type: models.PostTypeText, Content: fmt.Sprintf("post %d", i)})
					assert.NoError(t, err)
				}(i)
			}
			wg.Wait()

			posts, err := db.ListPosts(ctx)
			require.NoError(t, err)
			assert.Len(t, posts, writers+3)
		})
	}
}
