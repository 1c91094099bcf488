package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type profileHandler struct {
	responder Responder
	logger    zerolog.Logger
	profiles  *services.ProfileService
}

func newProfileHandler(profiles *services.ProfileService) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder: NewResponder(logger),
		logger:    logger,
		profiles:  profiles,
	}
}

// getProfile retrieves a user's public profile
// @Summary Get profile
// @Tags Profile
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {object} models.User "Profile"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid user id"
// @Failure 404 {object} ErrorResponse "Not Found - User not found"
// @Router /profile/{userID} [get]
func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.profiles.Get(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, user)
	}
}

// updateProfile edits a user's profile
// @Summary Update profile
// @Description Updates profile fields. Password, identifiers and createdAt are ignored.
// @Tags Profile
// @Accept json
// @Produce json
// @Param userID path string true "User id"
// @Param profile body models.User true "Profile fields"
// @Success 200 {object} models.User "Updated profile"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid profile data"
// @Failure 403 {object} ErrorResponse "Forbidden - Token belongs to another user"
// @Failure 404 {object} ErrorResponse "Not Found - User not found"
// @Router /profile/{userID} [put]
func (h profileHandler) updateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")

		if authUserID, ok := ctxGetUserID(r.Context()); ok && authUserID != userID {
			h.responder.WriteError(w, errs.NewForbiddenError("cannot edit another user's profile"))
			return
		}

		input, err := h.responder.DecodeRecord(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.profiles.Update(r.Context(), userID, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("userId", userID).Msg("profile updated")
		h.responder.WriteJSON(w, user)
	}
}
