package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/auth"
	exporthttp "github.com/MrJamesThe3rd/backoffice/internal/http/export"
	"github.com/MrJamesThe3rd/backoffice/internal/http/importcsv"
	recordhttp "github.com/MrJamesThe3rd/backoffice/internal/http/record"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type Services struct {
	Records *record.Service
	Imports *importer.Service
	Exports *export.Service
}

// New mounts every kind under /api/v1 at its resource path, behind the
// bearer-token check.
func New(verifier *auth.Verifier, allowedOrigins []string, svc Services) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(verifier.Middleware)

		r.Get("/auth/me", auth.Me)

		for _, kind := range record.Kinds {
			r.Route(api.Path(kind), func(r chi.Router) {
				r.Route("/import", importcsv.NewHandler(kind, svc.Imports, svc.Records).Routes)
				r.Route("/export", exporthttp.NewHandler(kind, svc.Records, svc.Exports).Routes)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					recordhttp.NewHandler(kind, svc.Records).Routes(r)
				})
			})
		}
	})

	return router
}
