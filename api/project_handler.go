package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  *services.ProjectService
}

func newProjectHandler(projects *services.ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// projectRef reads the projectID path parameter, which may be either the
// project's id or its internal id.
func projectRef(r *http.Request) (string, error) {
	ref := chi.URLParam(r, "projectID")
	if ref == "" {
		return "", errs.NewBadRequestError("missing projectID")
	}
	return ref, nil
}

// getAllProjects retrieves all projects
// @Summary Get all projects
// @Description Retrieves every project in canonical form, oldest first
// @Tags Projects
// @Produce json
// @Success 200 {array} models.Project "List of projects"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching projects"
// @Router /projects [get]
func (h projectHandler) getAllProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := h.projects.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, projects)
	}
}

// getProject retrieves a specific project
// @Summary Get project
// @Description Retrieves a project by its id or internal id
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Success 200 {object} models.Project "Project details"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching project"
// @Router /projects/{projectID} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Get(r.Context(), ref)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// createProject creates a new project
// @Summary Create project
// @Description Creates a project. Legacy field spellings are accepted and stored canonically.
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body models.Project true "Project data"
// @Success 201 {object} models.Project "Created project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating project"
// @Router /projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := h.responder.DecodeRecord(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Create(r.Context(), input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("projectId", project.ID).Msg("project created")
		h.responder.WriteJSONStatus(w, http.StatusCreated, project)
	}
}

// updateProject updates an existing project
// @Summary Update project
// @Description Applies a partial update and rewrites the project in canonical form
// @Tags Projects
// @Accept json
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Param project body models.Project true "Fields to change"
// @Success 200 {object} models.Project "Updated project"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid project data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating project"
// @Router /projects/{projectID} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		patch, err := h.responder.DecodeRecord(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.Update(r.Context(), ref, patch)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}

// deleteProject deletes a project
// @Summary Delete project
// @Description Deletes a project. Its comments are kept.
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Success 200 {object} StatusResponse "Project deleted successfully"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error deleting project"
// @Router /projects/{projectID} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.projects.Delete(r.Context(), ref); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("ref", ref).Msg("project deleted")
		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "project deleted successfully",
		})
	}
}

// toggleFavorite flips a project's favorite flag
// @Summary Toggle favorite
// @Description Atomically flips isFavorite and returns the stored project
// @Tags Projects
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Success 200 {object} models.Project "Project after the toggle"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating project"
// @Router /projects/{projectID}/favorite [patch]
func (h projectHandler) toggleFavorite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		project, err := h.projects.ToggleFavorite(r.Context(), ref)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, project)
	}
}
