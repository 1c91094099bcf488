package services

import (
	"context"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileService reads and edits user profiles. Users are addressed by
// their internal id only.
type ProfileService struct {
	repo   *database.UserRepo
	opts   options
	logger zerolog.Logger
}

func NewProfileService(repo *database.UserRepo, opts ...Option) *ProfileService {
	return &ProfileService{
		repo:   repo,
		opts:   newOptions(opts),
		logger: log.With().Str("serviceName", "profileService").Logger(),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (models.User, error) {
	if !primitive.IsValidObjectID(userID) {
		return models.User{}, errs.NewInvalidIdentifierError("user", userID)
	}
	raw, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	return models.NormalizeUser(raw), nil
}

// Update applies input to the profile. Credentials, identifiers and the
// creation time cannot be changed this way and are dropped silently.
func (s *ProfileService) Update(ctx context.Context, userID string, input models.RawRecord) (models.User, error) {
	if !primitive.IsValidObjectID(userID) {
		return models.User{}, errs.NewInvalidIdentifierError("user", userID)
	}

	set := input.Without(models.UserProtectedKeys...)
	for _, field := range []models.Aliases{
		models.UserEmail, models.UserName, models.UserFirstName, models.UserLastName,
		models.UserPhotoURL, models.UserRole,
	} {
		if err := eachPresent(set, field, requireString); err != nil {
			return models.User{}, err
		}
	}
	set[models.KeyUpdatedAt] = s.opts.timestamp()

	raw, err := s.repo.UpdateByID(ctx, userID, database.Update{Set: set})
	if err != nil {
		return models.User{}, err
	}

	s.logger.Debug().Str("userId", userID).Strs("fields", keys(set)).Msg("profile updated")
	return models.NormalizeUser(raw), nil
}

// requireString accepts empty strings, which clear a profile field.
func requireString(key string, value any) error {
	if _, ok := value.(string); !ok {
		return errs.NewInvalidFieldError(key, "must be a string")
	}
	return nil
}

func keys(r models.RawRecord) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
