package services

import (
	"context"
	"sort"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type CommentService struct {
	comments *database.CommentRepo
	projects *database.ProjectRepo
	opts     options
	logger   zerolog.Logger
}

func NewCommentService(comments *database.CommentRepo, projects *database.ProjectRepo, opts ...Option) *CommentService {
	return &CommentService{
		comments: comments,
		projects: projects,
		opts:     newOptions(opts),
		logger:   log.With().Str("serviceName", "commentService").Logger(),
	}
}

// Create attaches a comment to the project projectRef resolves to. The
// comment stores the project's canonical id and a snapshot of its name.
func (s *CommentService) Create(ctx context.Context, projectRef string, input models.RawRecord) (models.Comment, error) {
	content, err := validateCommentContent(input)
	if err != nil {
		return models.Comment{}, err
	}
	line, err := validateLineNumber(input)
	if err != nil {
		return models.Comment{}, err
	}

	raw, _, err := s.projects.Resolve(ctx, projectRef)
	if err != nil {
		return models.Comment{}, err
	}
	project := models.NormalizeProject(raw)

	now := s.opts.timestamp()
	comment := models.Comment{
		ID:          s.opts.newID(),
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Content:     content,
		LineNumber:  line,
		Author:      models.DefaultCommentAuthor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if name, ok := models.ToText(input[models.CommentProjectName.Canonical()]); ok {
		comment.ProjectName = name
	}
	if author, ok := models.ToText(input[models.CommentAuthor.Canonical()]); ok {
		comment.Author = author
	}

	internalID, err := s.comments.Add(ctx, comment.Document())
	if err != nil {
		return models.Comment{}, err
	}
	comment.InternalID = internalID

	s.logger.Debug().Str("commentId", comment.ID).Str("projectId", project.ID).Msg("comment created")
	return comment, nil
}

// ListByProject returns the comments whose projectId is the project's
// canonical id, newest first.
func (s *CommentService) ListByProject(ctx context.Context, projectRef string) ([]models.Comment, error) {
	raw, _, err := s.projects.Resolve(ctx, projectRef)
	if err != nil {
		return nil, err
	}
	project := models.NormalizeProject(raw)

	raws, err := s.comments.FindByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(raws))
	for i := len(raws) - 1; i >= 0; i-- {
		comments = append(comments, models.NormalizeComment(raws[i]))
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

// Update replaces a comment's content.
func (s *CommentService) Update(ctx context.Context, ref string, input models.RawRecord) (models.Comment, error) {
	content, err := validateCommentContent(input)
	if err != nil {
		return models.Comment{}, err
	}

	_, filter, err := s.comments.Resolve(ctx, ref)
	if err != nil {
		return models.Comment{}, err
	}

	stored, err := s.comments.Update(ctx, filter, database.Update{Set: models.RawRecord{
		models.CommentContent.Canonical(): content,
		models.KeyUpdatedAt:               s.opts.timestamp(),
	}})
	if err != nil {
		return models.Comment{}, err
	}
	return models.NormalizeComment(stored), nil
}

func (s *CommentService) Delete(ctx context.Context, ref string) error {
	_, filter, err := s.comments.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, filter); err != nil {
		return err
	}
	s.logger.Debug().Str("ref", ref).Msg("comment deleted")
	return nil
}
