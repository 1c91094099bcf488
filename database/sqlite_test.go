package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rpupo63/colbee-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// NewTestStore creates an in-memory SQLite store with every collection
// migrated.
func NewTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close(context.Background()) })

	for _, name := range collectionNames {
		require.NoError(t, store.Migrate(context.Background(), name))
	}
	return store
}

func TestSQLiteStore_MigrateIsIdempotent(t *testing.T) {
	store := NewTestStore(t)
	require.NoError(t, store.Migrate(context.Background(), ProjectsCollection))
}

func TestSQLiteCollection_InsertAndFind(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	internalID, err := coll.InsertOne(ctx, models.RawRecord{"id": "p-1", "name": "Alpha", "totalTaskCount": 3})
	require.NoError(t, err)
	assert.Len(t, internalID, 24)

	byID, err := coll.FindOne(ctx, ByID("p-1"))
	require.NoError(t, err)
	assert.Equal(t, internalID, byID[models.KeyInternalID])
	assert.Equal(t, "Alpha", byID["name"])

	byInternal, err := coll.FindOne(ctx, ByInternalID(internalID))
	require.NoError(t, err)
	assert.Equal(t, "p-1", byInternal["id"])

	p := models.NormalizeProject(byInternal)
	assert.Equal(t, 3, p.TotalTaskCount)

	_, err = coll.FindOne(ctx, ByID("missing"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSQLiteCollection_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	_, err := coll.InsertOne(ctx, models.RawRecord{"id": "dup"})
	require.NoError(t, err)
	_, err = coll.InsertOne(ctx, models.RawRecord{"id": "dup"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestSQLiteCollection_FindManyByProject(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(CommentsCollection)

	for _, doc := range []models.RawRecord{
		{"id": "c-1", "projectId": "p-1", "content": "a"},
		{"id": "c-2", "projectId": "p-2", "content": "b"},
		{"id": "c-3", "projectId": "p-1", "content": "c"},
	} {
		_, err := coll.InsertOne(ctx, doc)
		require.NoError(t, err)
	}

	raws, err := coll.FindMany(ctx, ByProject("p-1"))
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "c-1", raws[0]["id"])
	assert.Equal(t, "c-3", raws[1]["id"])

	all, err := coll.FindMany(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := coll.FindMany(ctx, ByProject("p-9"))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSQLiteCollection_UpdateSetsAndUnsets(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	_, err := coll.InsertOne(ctx, models.RawRecord{"id": "p-1", "ProjectName": "Old", "dayleft": 4})
	require.NoError(t, err)

	raw, err := coll.UpdateOne(ctx, ByID("p-1"), Update{
		Set:   models.RawRecord{"name": "New", "daysLeft": 4},
		Unset: []string{"ProjectName", "dayleft"},
	})
	require.NoError(t, err)

	assert.Equal(t, "New", raw["name"])
	assert.NotContains(t, raw, "ProjectName")
	assert.NotContains(t, raw, "dayleft")

	stored, err := coll.FindOne(ctx, ByID("p-1"))
	require.NoError(t, err)
	assert.Equal(t, "New", stored["name"])

	_, err = coll.UpdateOne(ctx, ByID("missing"), Update{Set: models.RawRecord{"name": "x"}})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSQLiteCollection_ToggleReadsLegacyKey(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	_, err := coll.InsertOne(ctx, models.RawRecord{"id": "p-1", "favourite": true})
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw, err := coll.ToggleOne(ctx, ByID("p-1"), Toggle{
		Field:     "isFavorite",
		Fallbacks: []string{"favourite", "favorite"},
		Set:       models.RawRecord{models.KeyUpdatedAt: now},
	})
	require.NoError(t, err)

	assert.Equal(t, false, raw["isFavorite"])
	assert.NotContains(t, raw, "favourite")
	assert.Equal(t, now, models.NormalizeProject(raw).UpdatedAt)

	raw, err = coll.ToggleOne(ctx, ByID("p-1"), Toggle{Field: "isFavorite", Fallbacks: []string{"favourite"}})
	require.NoError(t, err)
	assert.Equal(t, true, raw["isFavorite"])

	_, err = coll.ToggleOne(ctx, ByID("missing"), Toggle{Field: "isFavorite"})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSQLiteCollection_ConcurrentTogglesAreNotLost(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	_, err := coll.InsertOne(ctx, models.RawRecord{"id": "p-1", "isFavorite": false})
	require.NoError(t, err)

	const toggles = 11
	var wg sync.WaitGroup
	for range toggles {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := coll.ToggleOne(ctx, ByID("p-1"), Toggle{Field: "isFavorite"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	raw, err := coll.FindOne(ctx, ByID("p-1"))
	require.NoError(t, err)
	assert.True(t, models.NormalizeProject(raw).IsFavorite, "odd number of toggles ends favorited")
}

func TestSQLiteCollection_Delete(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	internalID, err := coll.InsertOne(ctx, models.RawRecord{"id": "p-1"})
	require.NoError(t, err)

	require.NoError(t, coll.DeleteOne(ctx, ByInternalID(internalID)))
	assert.ErrorIs(t, coll.DeleteOne(ctx, ByInternalID(internalID)), ErrNoRecord)

	_, err = coll.FindOne(ctx, ByID("p-1"))
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestSQLiteCollection_RejectsUnknownFilterField(t *testing.T) {
	coll := NewTestStore(t).Collection(ProjectsCollection)

	_, err := coll.FindOne(context.Background(), Filter{Field: "name", Value: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRecord)
}
