package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes mounts the resource routes twice, under /api and at the root,
// so both URL styles existing clients use keep working.
func setupRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", resourceRoutes(handlers, authMiddleware))
	r.Group(resourceRoutes(handlers, authMiddleware))
}

func resourceRoutes(handlers *routeHandlers, authMiddleware authMiddleware) func(chi.Router) {
	return func(r chi.Router) {
		r.Use(authMiddleware.authenticate)
		r.Use(ColoredHTTPLoggingMiddleware)

		// Project Handler endpoints
		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Post("/projects", handlers.projectHandler.createProject())
		r.Get("/projects/{projectID}", handlers.projectHandler.getProject())
		r.Put("/projects/{projectID}", handlers.projectHandler.updateProject())
		r.Delete("/projects/{projectID}", handlers.projectHandler.deleteProject())
		r.Patch("/projects/{projectID}/favorite", handlers.projectHandler.toggleFavorite())

		// Comment Handler endpoints
		r.Get("/projects/{projectID}/comments", handlers.commentHandler.listComments())
		r.Post("/projects/{projectID}/comments", handlers.commentHandler.createComment())
		r.Put("/comments/{commentID}", handlers.commentHandler.updateComment())
		r.Delete("/comments/{commentID}", handlers.commentHandler.deleteComment())

		// Profile Handler endpoints
		r.Get("/profile/{userID}", handlers.profileHandler.getProfile())
		r.Put("/profile/{userID}", handlers.profileHandler.updateProfile())
	}
}
