package database

import (
	"context"

	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
)

type CommentRepo struct {
	documentRepo
}

func NewCommentRepo(coll Collection) *CommentRepo {
	return &CommentRepo{newDocumentRepo(coll, "comment", "comments")}
}

// FindByProject returns the comments whose projectId is projectID.
func (r *CommentRepo) FindByProject(ctx context.Context, projectID string) ([]models.RawRecord, error) {
	raws, err := r.coll.FindMany(ctx, ByProject(projectID))
	if err != nil {
		return nil, errs.NewDatabaseError("find", "comments", err)
	}
	return raws, nil
}
