package api

import (
	"net/http"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/auth"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/service"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

const requestTimeout = 30 * time.Second

type Dependencies struct {
	Meds     *service.MedicationService
	Sessions *service.SessionService
	Hub      *ws.Hub
	JWT      *auth.JWTConfig
	Log      *zap.Logger

	CORSOrigins []string
	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit int
}

func Routes(d Dependencies) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.JWT == nil {
		d.JWT = auth.NewJWTConfig("")
	}
	if len(d.CORSOrigins) == 0 {
		d.CORSOrigins = []string{"*"}
	}

	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.RealIP)
	root.Use(middleware.Recoverer)
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", auth.DevHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if d.RateLimit > 0 {
		root.Use(httprate.LimitByIP(d.RateLimit, time.Second))
	}
	root.Use(RequestLogger(d.Log))

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	root.Route("/v1", func(r chi.Router) {
		r.Use(d.JWT.Middleware)

		// Upgraded connections outlive any request timeout.
		r.Get("/ws", d.wsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/catalog", d.getCatalog)

			r.Post("/sessions", d.createSession)
			r.Get("/sessions/{id}", d.getSession)
			r.Delete("/sessions/{id}", d.discardSession)
			r.Post("/sessions/{id}/answers", d.answerSession)
			r.Post("/sessions/{id}/next", d.nextSession)
			r.Post("/sessions/{id}/previous", d.previousSession)
			r.Post("/sessions/{id}/reset", d.resetSession)
			r.Post("/sessions/{id}/jump", d.jumpSession)
			r.Put("/sessions/{id}/dose-times/{slotId}", d.editDoseTime)
			r.Post("/sessions/{id}/complete", d.completeSession)

			r.Get("/medications", d.listMedications)
			r.Post("/medications", d.createMedication)
			r.Delete("/medications", d.clearMedications)
			r.Post("/medications/batch-delete", d.batchDeleteMedications)
			r.Post("/medications/sweep", d.sweepMedications)
			r.Get("/medications/{id}", d.getMedication)
			r.Put("/medications/{id}", d.replaceMedication)
			r.Delete("/medications/{id}", d.deleteMedication)
			r.Post("/medications/{id}/status", d.setMedicationStatus)

			r.Get("/patients", d.listPatients)
			r.Get("/stats", d.getStats)

			r.Get("/export", d.exportMedications)
			r.Post("/import", d.importMedications)
			r.Get("/exports", d.listArchives)
			r.Post("/exports", d.archiveExport)
			r.Get("/exports/{name}", d.getArchive)
		})
	})

	return root
}
