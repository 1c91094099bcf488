package database

import (
	"context"

	"github.com/rpupo63/colbee-backend/models"
)

// UserRepo addresses users by internal id only.
type UserRepo struct {
	documentRepo
}

func NewUserRepo(coll Collection) *UserRepo {
	return &UserRepo{newDocumentRepo(coll, "user", "users")}
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (models.RawRecord, error) {
	raw, err := r.coll.FindOne(ctx, ByInternalID(id))
	if err != nil {
		return nil, r.fail("find", err)
	}
	return raw, nil
}

func (r *UserRepo) UpdateByID(ctx context.Context, id string, update Update) (models.RawRecord, error) {
	return r.Update(ctx, ByInternalID(id), update)
}
