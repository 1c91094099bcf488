package database

import (
	"context"
	"errors"

	"github.com/rpupo63/colbee-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver finds a record by either of its identifiers: the generated `id`
// first, then the store's internal id when ref looks like one.
type Resolver struct {
	coll Collection
}

func NewResolver(coll Collection) Resolver {
	return Resolver{coll: coll}
}

// Resolve returns the record ref names and the filter that matched it, so
// follow-up writes address the same record. A ref that matches nothing,
// malformed ones included, yields ErrNoRecord. Store failures are returned
// as they are.
func (r Resolver) Resolve(ctx context.Context, ref string) (models.RawRecord, Filter, error) {
	if ref == "" {
		return nil, Filter{}, ErrNoRecord
	}

	filter := ByID(ref)
	raw, err := r.coll.FindOne(ctx, filter)
	if err == nil {
		return raw, filter, nil
	}
	if !errors.Is(err, ErrNoRecord) {
		return nil, Filter{}, err
	}

	if !primitive.IsValidObjectID(ref) {
		return nil, Filter{}, ErrNoRecord
	}

	filter = ByInternalID(ref)
	raw, err = r.coll.FindOne(ctx, filter)
	if err != nil {
		return nil, Filter{}, err
	}
	return raw, filter, nil
}
