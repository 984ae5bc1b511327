package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/focal-api/internal/api"
	"github.com/phrazzld/focal-api/internal/api/middleware"
)

// newRouter builds the HTTP routing table. Everything under /api except the
// session endpoint requires a valid bearer token.
func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(deps.sessions, deps.logger)
	taskHandler := api.NewTaskHandler(deps.taskStore, deps.coordinator, deps.logger)
	focusHandler := api.NewFocusHandler(deps.resolver, deps.logger)
	comparisonHandler := api.NewComparisonHandler(deps.comparisons, deps.logger)
	dependencyHandler := api.NewDependencyHandler(deps.depManager, deps.logger)
	postponeHandler := api.NewPostponeHandler(deps.coordinator, deps.logger)
	suggestionHandler := api.NewSuggestionHandler(deps.taskStore, deps.generator, deps.logger)
	schedulerHandler := api.NewSchedulerHandler(deps.scheduler, deps.logger)

	authMiddleware := middleware.NewAuthMiddleware(deps.sessions)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/session", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.CreateTask)
				r.Get("/", taskHandler.ListTasks)
				r.Get("/{id}", taskHandler.GetTask)
				r.Patch("/{id}/tier", taskHandler.ChangeTier)
				r.Post("/{id}/delegate", taskHandler.Delegate)
				r.Post("/{id}/someday", taskHandler.MoveToSomeday)
				r.Post("/{id}/trash", taskHandler.MoveToTrash)
				r.Post("/{id}/complete", taskHandler.Complete)
				r.Post("/{id}/activate", taskHandler.Activate)

				r.Post("/{id}/defer", postponeHandler.DeferTask)
				r.Post("/{id}/follow-up", postponeHandler.ResolveFollowUp)
				r.Post("/{id}/someday-review", postponeHandler.ResolveSomedayReview)
				r.Post("/{id}/intervention", postponeHandler.ResolveIntervention)

				r.Post("/{id}/dependencies", dependencyHandler.AddDependency)
				r.Delete("/{id}/dependencies/{blockingID}", dependencyHandler.RemoveDependency)
				r.Get("/{id}/blockers", dependencyHandler.GetBlockers)
				r.Get("/{id}/dependency-tree", dependencyHandler.GetDependencyTree)

				r.Get("/{id}/subtask-suggestions", suggestionHandler.GetSubtaskSuggestions)
			})

			r.Get("/focus", focusHandler.GetFocus)
			r.Get("/ranking", focusHandler.GetRankedTasks)

			r.Post("/comparisons", comparisonHandler.RecordComparison)
			r.Post("/comparisons/skip", comparisonHandler.SkipComparison)

			r.Route("/scheduler/jobs", func(r chi.Router) {
				r.Get("/", schedulerHandler.ListJobs)
				r.Post("/{name}/trigger", schedulerHandler.TriggerJob)
			})
		})
	})

	return r
}
