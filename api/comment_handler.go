package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rpupo63/colbee-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  *services.CommentService
}

func newCommentHandler(comments *services.CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
	}
}

// listComments retrieves a project's comments
// @Summary List project comments
// @Description Retrieves the comments of a project, newest first
// @Tags Comments
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Success 200 {array} models.Comment "Comments"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error fetching comments"
// @Router /projects/{projectID}/comments [get]
func (h commentHandler) listComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comments, err := h.comments.ListByProject(r.Context(), ref)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, comments)
	}
}

// createComment attaches a comment to a project
// @Summary Create comment
// @Description Creates a comment on a project, optionally anchored to a line
// @Tags Comments
// @Accept json
// @Produce json
// @Param projectID path string true "Project id or internal id"
// @Param comment body models.Comment true "Comment data"
// @Success 201 {object} models.Comment "Created comment"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid comment data"
// @Failure 404 {object} ErrorResponse "Not Found - Project not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error creating comment"
// @Router /projects/{projectID}/comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, err := projectRef(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		input, err := h.responder.DecodeRecord(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Create(r.Context(), ref, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, comment)
	}
}

// updateComment replaces a comment's content
// @Summary Update comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path string true "Comment id or internal id"
// @Param comment body models.Comment true "New content"
// @Success 200 {object} models.Comment "Updated comment"
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid comment data"
// @Failure 404 {object} ErrorResponse "Not Found - Comment not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error updating comment"
// @Router /comments/{commentID} [put]
func (h commentHandler) updateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "commentID")
		if ref == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing commentID"))
			return
		}

		input, err := h.responder.DecodeRecord(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.Update(r.Context(), ref, input)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, comment)
	}
}

// deleteComment deletes a comment
// @Summary Delete comment
// @Tags Comments
// @Produce json
// @Param commentID path string true "Comment id or internal id"
// @Success 200 {object} StatusResponse "Comment deleted successfully"
// @Failure 404 {object} ErrorResponse "Not Found - Comment not found"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Error deleting comment"
// @Router /comments/{commentID} [delete]
func (h commentHandler) deleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := chi.URLParam(r, "commentID")
		if ref == "" {
			h.responder.WriteError(w, errs.NewBadRequestError("missing commentID"))
			return
		}

		if err := h.comments.Delete(r.Context(), ref); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, StatusResponse{
			Status:  "success",
			Message: "comment deleted successfully",
		})
	}
}
