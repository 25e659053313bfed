package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"socialsphere/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// FactoryOptions tunes generated data.
type FactoryOptions struct {
	// MaxDays bounds how far back generated timestamps reach.
	MaxDays int
	// Seed makes generation deterministic when non-zero.
	Seed int64
}

// Factory builds demo entities. It does not persist anything.
type Factory struct {
	faker *gofakeit.Faker
	rng   *rand.Rand
	opts  FactoryOptions
	now   func() time.Time
}

// NewFactory creates a Factory. A zero Seed draws one from the clock.
func NewFactory(opts FactoryOptions) *Factory {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 30
	}
	return &Factory{
		faker: gofakeit.New(opts.Seed),
		rng:   rand.New(rand.NewSource(opts.Seed)),
		opts:  opts,
		now:   time.Now,
	}
}

func (f *Factory) pastMillis() int64 {
	back := time.Duration(f.rng.Intn(f.opts.MaxDays))*24*time.Hour +
		time.Duration(f.rng.Intn(24))*time.Hour +
		time.Duration(f.rng.Intn(60))*time.Minute
	return f.now().Add(-back).UnixMilli()
}

// BuildUser returns a user with picsum avatar and cover derived from the name.
func (f *Factory) BuildUser() models.User {
	name := f.faker.Name()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return models.User{
		ID:         "u-" + f.faker.UUID(),
		Name:       name,
		Email:      f.faker.Email(),
		Avatar:     fmt.Sprintf("https://picsum.photos/seed/%s/200", slug),
		CoverPhoto: fmt.Sprintf("https://picsum.photos/seed/%s-cover/1000/300", slug),
		Bio:        f.faker.Sentence(8),
		Friends:    []string{},
	}
}

// BuildUsers returns n users wired into a sparse friendship mesh.
func (f *Factory) BuildUsers(n int) []models.User {
	users := make([]models.User, n)
	for i := range users {
		users[i] = f.BuildUser()
	}
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if f.rng.Intn(4) == 0 {
				users[i].Friends = append(users[i].Friends, users[j].ID)
				users[j].Friends = append(users[j].Friends, users[i].ID)
			}
		}
	}
	return users
}

// BuildPost returns a post by author, liked and commented on by members of audience.
func (f *Factory) BuildPost(author models.User, audience []models.User) models.Post {
	types := []models.PostType{models.PostTypeText, models.PostTypeImage, models.PostTypeImage, models.PostTypeVideo}
	post := models.Post{
		ID:         "p-" + f.faker.UUID(),
		UserID:     author.ID,
		UserName:   author.Name,
		UserAvatar: author.Avatar,
		Type:       types[f.rng.Intn(len(types))],
		Content:    f.faker.Sentence(12),
		Likes:      []string{},
		Comments:   []models.Comment{},
		Shares:     f.rng.Intn(5),
		Timestamp:  f.pastMillis(),
		Version:    1,
	}
	if post.Type != models.PostTypeText {
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
	}

	for _, u := range audience {
		if u.ID == author.ID {
			continue
		}
		if f.rng.Intn(3) == 0 {
			post.Likes = append(post.Likes, u.ID)
		}
		if f.rng.Intn(5) == 0 {
			post.Comments = append(post.Comments, models.Comment{
				ID:         "c-" + f.faker.UUID(),
				UserID:     u.ID,
				UserName:   u.Name,
				UserAvatar: u.Avatar,
				Text:       f.faker.Sentence(6),
				Timestamp:  post.Timestamp + int64(f.rng.Intn(3600_000)),
			})
		}
	}
	return post
}

// BuildProduct returns a listing sold by seller.
func (f *Factory) BuildProduct(seller models.User) models.Product {
	title := f.faker.ProductName()
	return models.Product{
		ID:          "prod-" + f.faker.UUID(),
		SellerID:    seller.ID,
		Title:       title,
		Description: f.faker.ProductDescription(),
		Price:       f.faker.Price(5, 500),
		Location:    f.faker.City(),
		Category:    f.faker.ProductCategory(),
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/400/400", strings.ReplaceAll(title, " ", "-")),
	}
}

// BuildGroup returns a group whose members are drawn from users.
func (f *Factory) BuildGroup(users []models.User) models.Group {
	name := f.faker.Company() + " Club"
	g := models.Group{
		ID:          "g-" + f.faker.UUID(),
		Name:        name,
		Description: f.faker.Sentence(10),
		Cover:       fmt.Sprintf("https://picsum.photos/seed/%s/1000/300", f.faker.UUID()),
		Members:     []string{},
		IsPrivate:   f.rng.Intn(4) == 0,
	}
	for _, u := range users {
		if f.rng.Intn(2) == 0 {
			g.Members = append(g.Members, u.ID)
		}
	}
	return g
}

// BuildMessage returns a message from one user to another.
func (f *Factory) BuildMessage(from, to models.User) models.Message {
	return models.Message{
		ID:         "m-" + f.faker.UUID(),
		SenderID:   from.ID,
		ReceiverID: to.ID,
		Text:       f.faker.Sentence(7),
		Timestamp:  f.pastMillis(),
	}
}
