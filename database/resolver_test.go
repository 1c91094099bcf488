package database

import (
	"context"
	"errors"
	"testing"

	"github.com/rpupo63/colbee-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_MatchesEitherIdentifier(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	internalID, err := coll.InsertOne(ctx, models.RawRecord{"id": "3f1d2c4e-uuid", "name": "Alpha"})
	require.NoError(t, err)

	resolver := NewResolver(coll)

	byID, filter, err := resolver.Resolve(ctx, "3f1d2c4e-uuid")
	require.NoError(t, err)
	assert.Equal(t, ByID("3f1d2c4e-uuid"), filter)

	byInternal, filter, err := resolver.Resolve(ctx, internalID)
	require.NoError(t, err)
	assert.Equal(t, ByInternalID(internalID), filter)

	assert.Equal(t, byID, byInternal)
}

func TestResolver_IDStageWinsOverInternalStage(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)

	first, err := coll.InsertOne(ctx, models.RawRecord{"id": "first"})
	require.NoError(t, err)
	// a record whose generated id happens to equal another record's internal id
	_, err = coll.InsertOne(ctx, models.RawRecord{"id": first, "name": "shadow"})
	require.NoError(t, err)

	raw, filter, err := NewResolver(coll).Resolve(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, ByID(first), filter)
	assert.Equal(t, "shadow", raw["name"])
}

func TestResolver_MalformedIdentifiersAreMisses(t *testing.T) {
	ctx := context.Background()
	coll := NewTestStore(t).Collection(ProjectsCollection)
	resolver := NewResolver(coll)

	for _, ref := range []string{"", "not-an-id", "zzzzzzzzzzzzzzzzzzzzzzzz", "65f1c0ffee", "65f1c0ffee0000000000abcd"} {
		_, _, err := resolver.Resolve(ctx, ref)
		assert.ErrorIs(t, err, ErrNoRecord, "ref %q", ref)
	}
}

type scriptedCollection struct {
	Collection
	calls   []Filter
	results map[string]models.RawRecord
	err     error
}

func (c *scriptedCollection) FindOne(_ context.Context, filter Filter) (models.RawRecord, error) {
	c.calls = append(c.calls, filter)
	if c.err != nil {
		return nil, c.err
	}
	if raw, ok := c.results[filter.Field+"="+filter.Value]; ok {
		return raw, nil
	}
	return nil, ErrNoRecord
}

func TestResolver_SkipsInternalStageForNonObjectIDs(t *testing.T) {
	coll := &scriptedCollection{}

	_, _, err := NewResolver(coll).Resolve(context.Background(), "plain-uuid")

	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Equal(t, []Filter{ByID("plain-uuid")}, coll.calls)
}

func TestResolver_PropagatesStoreFailures(t *testing.T) {
	boom := errors.New("connection reset")
	coll := &scriptedCollection{err: boom}

	_, _, err := NewResolver(coll).Resolve(context.Background(), "65f1c0ffee0000000000abcd")

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoRecord)
	assert.Len(t, coll.calls, 1)
}
