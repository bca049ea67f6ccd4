package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	aihandler "github.com/alexiscpa/legal-consultant/internal/handler/ai"
	authhandler "github.com/alexiscpa/legal-consultant/internal/handler/auth"
	"github.com/alexiscpa/legal-consultant/internal/handler/records"
	"github.com/alexiscpa/legal-consultant/internal/handler/users"
	"github.com/alexiscpa/legal-consultant/internal/middleware"
	aiservice "github.com/alexiscpa/legal-consultant/internal/service/ai"
	authservice "github.com/alexiscpa/legal-consultant/internal/service/auth"
	"github.com/alexiscpa/legal-consultant/pkg/utils"
)

// NewRouter wires HTTP routes to core services. The gate composes in fixed
// order per group: authenticate, then approved status, then admin role.
func NewRouter(log *slog.Logger, gate *middleware.Gate, authSvc *authservice.Service, gateway *aiservice.Gateway, recordStore records.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	authHandler := authhandler.New(authSvc)
	usersHandler := users.New(authSvc)
	aiHandler := aihandler.New(log, gateway)
	recordsHandler := records.New(recordStore)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		authHandler.RegisterPublicRoutes(api)

		// Session routes: any authenticated account, including pending ones,
		// so the client can show the waiting screen from /auth/me.
		api.Group(func(session chi.Router) {
			session.Use(gate.Authenticate)
			authHandler.RegisterSessionRoutes(session)
		})

		// Data routes: approved accounts only.
		api.Group(func(data chi.Router) {
			data.Use(gate.Authenticate)
			data.Use(middleware.RequireApproved)
			aiHandler.RegisterRoutes(data)
			recordsHandler.RegisterRoutes(data)
		})

		// Administration routes: role implies authority regardless of status.
		api.Group(func(admin chi.Router) {
			admin.Use(gate.Authenticate)
			admin.Use(middleware.RequireAdmin)
			usersHandler.RegisterRoutes(admin)
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
