package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"

	"github.com/crmlite/leadboard/app"
	"github.com/crmlite/leadboard/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api/v1", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	csrf := middlewares.NewCSRFService(app.CSRFTTL)

	api := chi.NewRouter()

	// Public contact form.
	api.Get("/csrf-token", CSRFToken(csrf))
	api.With(middlewares.CSRF(csrf)).Post("/contact-submissions", ContactSubmission(app))

	// Admin dashboard.
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.CookieAuth(app.BearerServer))
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/dashboard-page", DashboardPage(app))
		r.Put("/update-submission-status", UpdateSubmissionStatus(app))
		r.Post("/add-submissions", AddSubmission(app))
		r.Post("/get-submissions-comment", GetSubmissionComments(app))
		r.Post("/create-submissions-comment", CreateSubmissionComment(app))
		r.Get("/statistics", Statistics(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
