package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Database struct {
	store       Store
	projectRepo *ProjectRepo
	commentRepo *CommentRepo
	userRepo    *UserRepo
}

type dbOptions struct {
	breaker *BreakerSettings
}

type Option func(*dbOptions)

// WithBreaker puts a circuit breaker around every collection.
func WithBreaker(s BreakerSettings) Option {
	return func(o *dbOptions) {
		o.breaker = &s
	}
}

// New initializes a new Database with every repository sharing store.
func New(store Store, opts ...Option) Database {
	var o dbOptions
	for _, opt := range opts {
		opt(&o)
	}

	collection := func(name string) Collection {
		coll := store.Collection(name)
		if o.breaker != nil {
			coll = withBreaker(coll, newBreaker(store.Name()+"-"+name, *o.breaker))
		}
		return withMetrics(coll, store.Name(), name)
	}

	return Database{
		store:       store,
		projectRepo: NewProjectRepo(collection(ProjectsCollection)),
		commentRepo: NewCommentRepo(collection(CommentsCollection)),
		userRepo:    NewUserRepo(collection(UsersCollection)),
	}
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) CommentRepo() *CommentRepo {
	return d.commentRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Migrate prepares every collection concurrently.
func (d Database) Migrate(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range collectionNames {
		g.Go(func() error {
			return d.store.Migrate(ctx, name)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Str("store", d.store.Name()).Strs("collections", collectionNames).Msg("collections migrated")
	return nil
}

func (d Database) Ping(ctx context.Context) error {
	return d.store.Ping(ctx)
}

func (d Database) Close(ctx context.Context) error {
	return d.store.Close(ctx)
}

func (d Database) StoreName() string {
	return d.store.Name()
}
