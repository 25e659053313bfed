// Package repository implements the typed data layer on top of a key/value
// store. Each collection is one JSON document; every mutation is an atomic
// read-modify-write through storage.Store.Update.
package repository

import (
	"context"
	"time"

	"socialsphere/internal/models"
	"socialsphere/internal/storage"

	"github.com/google/uuid"
)

// Collection keys, relative to the store namespace.
const (
	KeyUsers    = "users"
	KeyPosts    = "posts"
	KeyMessages = "messages"
	KeyProducts = "products"
	KeyGroups   = "groups"
	KeySession  = "active_user"
)

// AllKeys lists every key the repository persists.
var AllKeys = []string{KeyUsers, KeyPosts, KeyMessages, KeyProducts, KeyGroups, KeySession}

// DB is the application's data access API.
type DB interface {
	UserRepository
	PostRepository
	SessionRepository
	ProductRepository
	MessageRepository
	GroupRepository

	// Reset removes every persisted collection; the next read re-seeds.
	Reset(ctx context.Context) error
}

// UserRepository defines user data access.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) error
	SaveUsers(ctx context.Context, users []models.User) error
}

// PostRepository defines post data access.
type PostRepository interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	SavePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (*models.Post, error)
	ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error)
	AddComment(ctx context.Context, postID string, comment models.Comment) (*models.Post, error)
}

// SessionRepository defines the single current-user session.
type SessionRepository interface {
	GetCurrentUser(ctx context.Context) (*models.User, error)
	Login(ctx context.Context, email string) (*models.User, error)
	Signup(ctx context.Context, name, email string) (*models.User, error)
	Logout(ctx context.Context) error
}

// ProductRepository defines marketplace data access.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	SaveProduct(ctx context.Context, product models.Product) (*models.Product, error)
}

// MessageRepository defines direct message data access.
type MessageRepository interface {
	ListMessages(ctx context.Context, userA, userB string) ([]models.Message, error)
	SendMessage(ctx context.Context, msg models.Message) (*models.Message, error)
}

// GroupRepository defines group data access.
type GroupRepository interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	SaveGroup(ctx context.Context, group models.Group) (*models.Group, error)
	JoinGroup(ctx context.Context, groupID, userID string) (*models.Group, error)
}

// Option configures a DB.
type Option func(*storeDB)

// WithClock overrides the time source used for timestamps and seed data.
func WithClock(now func() time.Time) Option {
	return func(d *storeDB) { d.now = now }
}

// WithIDGenerator overrides how new entity IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(d *storeDB) { d.newID = newID }
}

type storeDB struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

// NewDB creates the repository over store.
func NewDB(store storage.Store, opts ...Option) DB {
	d := &storeDB{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *storeDB) nowMillis() int64 {
	return d.now().UnixMilli()
}

func (d *storeDB) Reset(ctx context.Context) error {
	for _, key := range AllKeys {
		if err := d.store.Remove(ctx, key); err != nil {
			return mapStoreError(err)
		}
	}
	return nil
}
