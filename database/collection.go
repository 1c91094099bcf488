package database

import (
	"context"
	"errors"

	"github.com/rpupo63/colbee-backend/models"
)

// ErrNoRecord is returned by a Collection when a filter matches nothing.
var ErrNoRecord = errors.New("no matching record")

// Filter is an equality match on one of the lookup fields every store
// indexes. The zero Filter matches every record.
type Filter struct {
	Field string
	Value string
}

func ByID(id string) Filter { return Filter{Field: models.KeyID, Value: id} }

func ByInternalID(id string) Filter { return Filter{Field: models.KeyInternalID, Value: id} }

func ByProject(projectID string) Filter { return Filter{Field: models.KeyProjectID, Value: projectID} }

func (f Filter) IsZero() bool { return f.Field == "" }

// Update sets Set's keys and removes Unset's keys in a single write.
type Update struct {
	Set   models.RawRecord
	Unset []string
}

// Toggle flips a boolean field in a single write. When Field is absent the
// current value is read from the first present Fallbacks key. Fallbacks are
// removed and Set is applied in the same write.
type Toggle struct {
	Field     string
	Fallbacks []string
	Set       models.RawRecord
}

// Collection is a document collection addressed by Filter. Reads and writes
// return raw documents; `_id` always carries the store's internal id as a
// 24-character hex string.
type Collection interface {
	FindOne(ctx context.Context, filter Filter) (models.RawRecord, error)
	FindMany(ctx context.Context, filter Filter) ([]models.RawRecord, error)
	InsertOne(ctx context.Context, doc models.RawRecord) (string, error)
	// UpdateOne returns the document as it is after the update.
	UpdateOne(ctx context.Context, filter Filter, update Update) (models.RawRecord, error)
	// ToggleOne returns the document as it is after the toggle.
	ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (models.RawRecord, error)
	DeleteOne(ctx context.Context, filter Filter) error
}

// Store owns a connection and hands out its collections.
type Store interface {
	Name() string
	Collection(name string) Collection
	// Migrate creates the named collection and its lookup indexes if missing.
	Migrate(ctx context.Context, name string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

const (
	ProjectsCollection = "projects"
	CommentsCollection = "comments"
	UsersCollection    = "users"
)

var collectionNames = []string{ProjectsCollection, CommentsCollection, UsersCollection}
