package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/brandlink/engine/internal/api/handlers"
	mw "github.com/brandlink/engine/internal/api/middleware"
	"github.com/brandlink/engine/internal/audit"
	"github.com/brandlink/engine/internal/repository"
	"github.com/brandlink/engine/internal/services"
	"github.com/brandlink/engine/internal/storage"
)

type Dependencies struct {
	Store         *storage.Engine
	Audit         *audit.Recorder
	Users         repository.UserRepository
	Campaigns     repository.CampaignRepository
	Collaborators repository.CollaboratorRepository
	Attachments   repository.AttachmentRepository
	Ratings       repository.RatingRepository
	Conversations services.ConversationService
	Aggregates    services.AggregationService

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS(dep.CORSOrigins))
	if dep.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst))
	}
	r.Use(chimid.Compress(5))
	r.Use(mw.Identity)

	hh := handlers.NewHealthHandler(dep.Store)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	users := handlers.NewUsersHandler(dep.Users)
	campaigns := handlers.NewCampaignsHandler(dep.Campaigns)
	collaborators := handlers.NewCollaboratorsHandler(dep.Collaborators)
	attachments := handlers.NewAttachmentsHandler(dep.Attachments)
	ratings := handlers.NewRatingsHandler(dep.Ratings)
	conversations := handlers.NewConversationsHandler(dep.Conversations)
	stats := handlers.NewStatsHandler(dep.Aggregates)
	auditLog := handlers.NewAuditHandler(dep.Audit)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/users", func(ur chi.Router) {
			// Sign-up is the only anonymous write.
			ur.Post("/", users.Create)
			ur.Group(func(g chi.Router) {
				g.Use(mw.RequireIdentity)
				g.Get("/", users.List)
				g.Get("/by-email", users.GetByEmail)
				g.Get("/{id}", users.Get)
				g.Patch("/{id}", users.Update)
				g.Delete("/{id}", users.Delete)
			})
		})

		api.Group(func(protected chi.Router) {
			protected.Use(mw.RequireIdentity)

			protected.Route("/campaigns", func(cr chi.Router) {
				cr.Get("/", campaigns.List)
				cr.Post("/", campaigns.Create)
				cr.Get("/{id}", campaigns.Get)
				cr.Patch("/{id}", campaigns.Update)
				cr.Delete("/{id}", campaigns.Delete)
				cr.Get("/{id}/platforms", campaigns.Platforms)
				cr.Post("/{id}/platforms", campaigns.AddPlatform)
				cr.Put("/{id}/platforms", campaigns.ReplacePlatforms)
				cr.Delete("/{id}/platforms/{platform}", campaigns.RemovePlatform)
			})

			protected.Route("/collaborators", func(cr chi.Router) {
				cr.Get("/", collaborators.List)
				cr.Post("/", collaborators.Create)
				cr.Get("/{id}", collaborators.Get)
				cr.Patch("/{id}", collaborators.Update)
				cr.Delete("/{id}", collaborators.Delete)
			})

			protected.Route("/attachments", func(ar chi.Router) {
				ar.Get("/unattached", attachments.ListUnattached)
				ar.Post("/", attachments.Create)
				ar.Get("/{id}", attachments.Get)
				ar.Patch("/{id}", attachments.Update)
				ar.Delete("/{id}", attachments.Delete)
			})

			protected.Route("/ratings", func(rr chi.Router) {
				rr.Get("/", ratings.List)
				rr.Post("/", ratings.Create)
			})

			protected.Route("/conversations", func(cr chi.Router) {
				cr.Get("/", conversations.List)
				cr.Post("/", conversations.Open)
				cr.Delete("/{id}", conversations.Delete)
				cr.Get("/{id}/messages", conversations.Messages)
				cr.Post("/{id}/messages", conversations.Send)
				cr.Post("/{id}/read", conversations.MarkRead)
			})
			protected.Delete("/messages/{id}", conversations.DeleteMessage)

			protected.Route("/stats", func(sr chi.Router) {
				sr.Get("/brands/{id}/spent", stats.BrandSpent)
				sr.Get("/brands/{id}/dashboard", stats.BrandDashboard)
				sr.Get("/influencers/{id}", stats.InfluencerCounters)
				sr.Get("/users/{id}/rating", stats.RatingAverage)
			})

			protected.Get("/audit", auditLog.List)
		})
	})

	return r
}
