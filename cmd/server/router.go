package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ctlabs/taskrouter/internal/api"
	apiMiddleware "github.com/ctlabs/taskrouter/internal/api/middleware"
	"github.com/ctlabs/taskrouter/internal/domain"
	"github.com/ctlabs/taskrouter/internal/service/auth"
)

// setupRouter registers the routes and middleware. Each protected route
// names the action its caller must be allowed to perform.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(middleware.Recoverer)

	taskHandler := api.NewTaskHandler(app.taskService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.gate)

	r.With(authMiddleware.RequireAction(auth.ActionSubmitTask)).Post("/submit", taskHandler.Submit)
	r.With(authMiddleware.RequireAction(auth.ActionTaskInfo)).Get("/taskinfo", taskHandler.TaskInfo)

	for _, taskType := range domain.TaskTypes() {
		r.With(authMiddleware.RequireAction(auth.SubmitAction(taskType))).
			Post("/submit/"+string(taskType), taskHandler.SubmitTyped(taskType))
	}

	r.Post("/health", api.Health)

	return r
}
