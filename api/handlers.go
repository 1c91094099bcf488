package api

import (
	"time"

	"github.com/rpupo63/colbee-backend/database"
	"github.com/rpupo63/colbee-backend/services"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(db database.Database, startupTime time.Time, opts ...services.Option) *routeHandlers {
	projects := services.NewProjectService(db.ProjectRepo(), opts...)
	comments := services.NewCommentService(db.CommentRepo(), db.ProjectRepo(), opts...)
	profiles := services.NewProfileService(db.UserRepo(), opts...)

	return &routeHandlers{
		projectHandler: newProjectHandler(projects),
		commentHandler: newCommentHandler(comments),
		profileHandler: newProfileHandler(profiles),
		healthHandler:  newHealthHandler(db, startupTime),
	}
}
