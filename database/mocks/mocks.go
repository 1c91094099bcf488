package mocks

import (
	"context"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/stretchr/testify/mock"
)

// Collection is a mock for database.Collection.
type Collection struct {
	mock.Mock
}

var _ database.Collection = (*Collection)(nil)

func (m *Collection) FindOne(ctx context.Context, filter database.Filter) (models.RawRecord, error) {
	args := m.Called(ctx, filter)
	if raw, ok := args.Get(0).(models.RawRecord); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) FindMany(ctx context.Context, filter database.Filter) ([]models.RawRecord, error) {
	args := m.Called(ctx, filter)
	if raws, ok := args.Get(0).([]models.RawRecord); ok {
		return raws, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) InsertOne(ctx context.Context, doc models.RawRecord) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *Collection) UpdateOne(ctx context.Context, filter database.Filter, update database.Update) (models.RawRecord, error) {
	args := m.Called(ctx, filter, update)
	if raw, ok := args.Get(0).(models.RawRecord); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) ToggleOne(ctx context.Context, filter database.Filter, toggle database.Toggle) (models.RawRecord, error) {
	args := m.Called(ctx, filter, toggle)
	if raw, ok := args.Get(0).(models.RawRecord); ok {
		return raw, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Collection) DeleteOne(ctx context.Context, filter database.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

// Store is a mock for database.Store that hands out Collections by name.
type Store struct {
	mock.Mock
	Collections map[string]*Collection
}

func NewStore() *Store {
	return &Store{Collections: map[string]*Collection{
		database.ProjectsCollection: {},
		database.CommentsCollection: {},
		database.UsersCollection:    {},
	}}
}

func (m *Store) Name() string { return "mock" }

func (m *Store) Collection(name string) database.Collection {
	return m.Collections[name]
}

func (m *Store) Migrate(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *Store) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
