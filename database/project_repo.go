package database

import (
	"context"
	"time"

	"github.com/rpupo63/colbee-backend/models"
)

type ProjectRepo struct {
	documentRepo
}

func NewProjectRepo(coll Collection) *ProjectRepo {
	return &ProjectRepo{newDocumentRepo(coll, "project", "projects")}
}

// ToggleFavorite flips isFavorite on the matched project in one write,
// folding any legacy spelling into the canonical key.
func (r *ProjectRepo) ToggleFavorite(ctx context.Context, filter Filter, now time.Time) (models.RawRecord, error) {
	raw, err := r.coll.ToggleOne(ctx, filter, Toggle{
		Field:     models.ProjectFavorite.Canonical(),
		Fallbacks: models.ProjectFavorite.Legacy(),
		Set:       models.RawRecord{models.KeyUpdatedAt: now},
	})
	if err != nil {
		return nil, r.fail("toggle favorite on", err)
	}
	return raw, nil
}
