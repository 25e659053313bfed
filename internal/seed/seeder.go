package seed

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"socialsphere/internal/models"
	"socialsphere/internal/observability"
)

// Sink persists generated data. The repository satisfies it.
type Sink interface {
	SaveUsers(ctx context.Context, users []models.User) error
	SavePost(ctx context.Context, post models.Post) (*models.Post, error)
	SaveProduct(ctx context.Context, product models.Product) (*models.Product, error)
	SaveGroup(ctx context.Context, group models.Group) (*models.Group, error)
	SendMessage(ctx context.Context, msg models.Message) (*models.Message, error)
}

// Seeder writes factory-built demo data through a Sink.
type Seeder struct {
	sink    Sink
	factory *Factory
	logger  *slog.Logger
}

func NewSeeder(sink Sink, factory *Factory) *Seeder {
	return &Seeder{
		sink:    sink,
		factory: factory,
		logger:  observability.GlobalLogger.With(slog.String("component", "seeder")),
	}
}

// SeedSocialMesh creates n users who are all friends with each other.
func (s *Seeder) SeedSocialMesh(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	users := s.factory.BuildUsers(n)
	if err := s.sink.SaveUsers(ctx, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	s.logger.InfoContext(ctx, "seeded users", slog.Int("count", len(users)))
	return users, nil
}

// SeedEngagement creates n posts by random users with likes and comments
// from the others. Posts are written oldest first so the feed reads
// newest-first.
func (s *Seeder) SeedEngagement(ctx context.Context, users []models.User, n int) ([]models.Post, error) {
	if len(users) == 0 || n <= 0 {
		return nil, nil
	}
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author, users))
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Timestamp < posts[j].Timestamp })

	for _, p := range posts {
		if _, err := s.sink.SavePost(ctx, p); err != nil {
			return nil, fmt.Errorf("save post %s: %w", p.ID, err)
		}
	}
	s.logger.InfoContext(ctx, "seeded posts", slog.Int("count", len(posts)))
	return posts, nil
}

func (s *Seeder) SeedMarketplace(ctx context.Context, users []models.User, n int) error {
	if len(users) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		seller := users[s.factory.rng.Intn(len(users))]
		if _, err := s.sink.SaveProduct(ctx, s.factory.BuildProduct(seller)); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seeded products", slog.Int("count", n))
	return nil
}

// SeedCommunities creates groups and a few direct messages between users.
func (s *Seeder) SeedCommunities(ctx context.Context, users []models.User, groups, messages int) error {
	if len(users) < 2 {
		return nil
	}
	for i := 0; i < groups; i++ {
		if _, err := s.sink.SaveGroup(ctx, s.factory.BuildGroup(users)); err != nil {
			return fmt.Errorf("save group: %w", err)
		}
	}
	for i := 0; i < messages; i++ {
		from := s.factory.rng.Intn(len(users))
		to := (from + 1 + s.factory.rng.Intn(len(users)-1)) % len(users)
		if _, err := s.sink.SendMessage(ctx, s.factory.BuildMessage(users[from], users[to])); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	s.logger.InfoContext(ctx, "seeded communities", slog.Int("groups", groups), slog.Int("messages", messages))
	return nil
}
