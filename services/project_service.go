package services

import (
	"context"
	"sort"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ProjectService runs the project lifecycle. Every record it returns has
// been through models.NormalizeProject.
type ProjectService struct {
	repo   *database.ProjectRepo
	opts   options
	logger zerolog.Logger
}

func NewProjectService(repo *database.ProjectRepo, opts ...Option) *ProjectService {
	return &ProjectService{
		repo:   repo,
		opts:   newOptions(opts),
		logger: log.With().Str("serviceName", "projectService").Logger(),
	}
}

// List returns every project, oldest first. Records without a createdAt
// sort ahead of the rest in store order.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	raws, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, len(raws))
	for _, raw := range raws {
		projects = append(projects, models.NormalizeProject(raw))
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.Before(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, ref string) (models.Project, error) {
	raw, _, err := s.repo.Resolve(ctx, ref)
	if err != nil {
		return models.Project{}, err
	}
	return models.NormalizeProject(raw), nil
}

// Create stores a new project under a freshly generated id. A caller-sent
// id is ignored.
func (s *ProjectService) Create(ctx context.Context, input models.RawRecord) (models.Project, error) {
	if err := validateProject(input, true); err != nil {
		return models.Project{}, err
	}

	now := s.opts.timestamp()
	project := models.NormalizeProject(input.Without(
		models.KeyID, models.KeyInternalID, models.KeyCreatedAt, models.KeyUpdatedAt,
	))
	project.ID = s.opts.newID()
	project.CreatedAt = now
	project.UpdatedAt = now

	internalID, err := s.repo.Add(ctx, project.Document())
	if err != nil {
		return models.Project{}, err
	}
	project.InternalID = internalID

	s.logger.Debug().Str("projectId", project.ID).Msg("project created")
	return project, nil
}

// Update writes the canonical form of the fields patch names, plus
// updatedAt, in one update-by-filter. Fields the patch leaves out are not
// rewritten, so a concurrent toggle survives a rename.
func (s *ProjectService) Update(ctx context.Context, ref string, patch models.RawRecord) (models.Project, error) {
	if err := validateProject(patch, false); err != nil {
		return models.Project{}, err
	}

	_, filter, err := s.repo.Resolve(ctx, ref)
	if err != nil {
		return models.Project{}, err
	}

	set, unset := models.ProjectChanges(patch)
	set[models.KeyUpdatedAt] = s.opts.timestamp()

	stored, err := s.repo.Update(ctx, filter, database.Update{Set: set, Unset: unset})
	if err != nil {
		return models.Project{}, err
	}

	project := models.NormalizeProject(stored)
	s.logger.Debug().Str("projectId", project.ID).Msg("project updated")
	return project, nil
}

// Delete removes the project. Its comments are left in place.
func (s *ProjectService) Delete(ctx context.Context, ref string) error {
	_, filter, err := s.repo.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, filter); err != nil {
		return err
	}
	s.logger.Debug().Str("ref", ref).Msg("project deleted")
	return nil
}

// ToggleFavorite flips isFavorite atomically and returns the project as
// stored afterwards.
func (s *ProjectService) ToggleFavorite(ctx context.Context, ref string) (models.Project, error) {
	_, filter, err := s.repo.Resolve(ctx, ref)
	if err != nil {
		return models.Project{}, err
	}

	raw, err := s.repo.ToggleFavorite(ctx, filter, s.opts.timestamp())
	if err != nil {
		return models.Project{}, err
	}
	return models.NormalizeProject(raw), nil
}
