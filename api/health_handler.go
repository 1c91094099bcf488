package api

import (
	"net/http"
	"time"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	db          database.Database
	startupTime time.Time
}

func newHealthHandler(db database.Database, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()

	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		db:          db,
		startupTime: startupTime,
	}
}

// health reports whether the storage backend answers
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service healthy"
// @Failure 503 {object} ErrorResponse "Storage unreachable"
// @Router /health [get]
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.Error().Err(err).Str("store", h.db.StoreName()).Msg("storage ping failed")
			h.responder.WriteJSONStatus(w, http.StatusServiceUnavailable, ErrorResponse{
				Error:   errs.ErrDatabaseConnection.Error(),
				Status:  "error",
				Details: "Unable to reach " + h.db.StoreName(),
			})
			return
		}

		h.responder.WriteJSON(w, HealthResponse{
			Status:  "ok",
			Store:   h.db.StoreName(),
			Uptime:  time.Since(h.startupTime).Round(time.Second).String(),
			Storage: "reachable",
		})
	}
}
