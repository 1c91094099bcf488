package database

import (
	"context"
	"errors"

	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
)

// documentRepo holds the operations shared by every repo. Results are
// already classified: a miss is a not-found *errs.ApiErr, anything else
// from the store is a storage *errs.ApiErr.
type documentRepo struct {
	coll     Collection
	resolver Resolver
	entity   string
	plural   string
}

func newDocumentRepo(coll Collection, entity, plural string) documentRepo {
	return documentRepo{
		coll:     coll,
		resolver: NewResolver(coll),
		entity:   entity,
		plural:   plural,
	}
}

func (r documentRepo) fail(operation string, err error) error {
	if errors.Is(err, ErrNoRecord) {
		return errs.NewNotFound(r.entity)
	}
	return errs.NewDatabaseError(operation, r.entity, err)
}

// Resolve looks ref up by generated id, then by internal id.
func (r documentRepo) Resolve(ctx context.Context, ref string) (models.RawRecord, Filter, error) {
	raw, filter, err := r.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, Filter{}, r.fail("find", err)
	}
	return raw, filter, nil
}

func (r documentRepo) FindAll(ctx context.Context) ([]models.RawRecord, error) {
	raws, err := r.coll.FindMany(ctx, Filter{})
	if err != nil {
		return nil, errs.NewDatabaseError("find", r.plural, err)
	}
	return raws, nil
}

// Add inserts doc and returns its internal id.
func (r documentRepo) Add(ctx context.Context, doc models.RawRecord) (string, error) {
	internalID, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", errs.NewDatabaseError("create", r.entity, err)
	}
	return internalID, nil
}

// Update applies update to the record filter matches and returns it as
// stored afterwards.
func (r documentRepo) Update(ctx context.Context, filter Filter, update Update) (models.RawRecord, error) {
	raw, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, r.fail("update", err)
	}
	return raw, nil
}

func (r documentRepo) Delete(ctx context.Context, filter Filter) error {
	if err := r.coll.DeleteOne(ctx, filter); err != nil {
		return r.fail("delete", err)
	}
	return nil
}
