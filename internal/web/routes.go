package web

import (
	"github.com/go-chi/chi/v5"
	"github.com/luckymoturi/AttendanceProject/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	enrollHandler := handlers.NewEnrollHandler(s.service)
	eventsHandler := handlers.NewEventsHandler(s.service)
	identitiesHandler := handlers.NewIdentitiesHandler(s.service)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Enrollment
		r.Post("/enroll", enrollHandler.Enroll)

		// Attendance
		r.Post("/checkin", eventsHandler.CheckIn)
		r.Post("/checkout", eventsHandler.CheckOut)

		// Identities
		r.Get("/identities", identitiesHandler.List)
		r.Delete("/identities/{name}", identitiesHandler.Delete)
		r.Get("/identities/{name}/events", identitiesHandler.Events)
		r.Get("/identities/{name}/report", identitiesHandler.Report)

		// Administration
		r.Post("/reset", identitiesHandler.Reset)
	})
}
