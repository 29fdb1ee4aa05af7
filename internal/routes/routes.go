package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything Setup mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Reports    *handlers.ReportHandler
	Showcase   *handlers.ShowcaseHandler
	Moderation *handlers.ModerationHandler
	Webhooks   *handlers.WebhookHandler
	Payments   *handlers.PaymentHandler

	// ReportThrottle guards anonymous report submission.
	ReportThrottle fiber.Handler
}

func Setup(app *fiber.App, cfg *config.Config, h Handlers) {
	api := app.Group("/api")

	// Webhooks are mounted before the IP limiter; the processor retries from
	// a small set of addresses.
	webhooks := api.Group("/webhooks")
	webhooks.Post("/stripe", h.Webhooks.HandleStripe)

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)
	api.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Stricter limit for credential and submission endpoints: 10 req/min per IP
	strict := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})

	api.Post("/auth/login", strict, h.Auth.Login)

	// Reports: anonymous, owned by fingerprint
	api.Post("/reports", h.ReportThrottle, h.Reports.Create)
	api.Get("/reports", h.Reports.ListApproved)
	api.Get("/reports/mine", h.Reports.ListMine)
	api.Delete("/reports/:id", h.Reports.Delete)
	api.Post("/risk/assess", h.Reports.Assess)

	// Showcase: owned by contact phone
	api.Get("/showcase", h.Showcase.ListActive)
	api.Get("/showcase/eligibility", h.Showcase.Eligibility)
	api.Post("/showcase", strict, h.Showcase.Submit)
	api.Get("/showcase/mine", h.Showcase.ListMine)
	api.Get("/showcase/checkout/:session", h.Payments.Status)
	api.Put("/showcase/:id", h.Showcase.Edit)
	api.Post("/showcase/:id/repost", h.Showcase.Repost)
	api.Delete("/showcase/:id", h.Showcase.Delete)

	// Admin moderation panel (moderator JWT or admin token)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Get("/moderation/reports", h.Moderation.ListReports)
	admin.Post("/moderation/reports/bulk", h.Moderation.BulkReports)
	admin.Get("/moderation/reports/:id", h.Moderation.GetReport)
	admin.Put("/moderation/reports/:id", h.Moderation.ActionReport)
	admin.Delete("/moderation/reports/:id", h.Moderation.DeleteReport)

	admin.Get("/showcase", h.Moderation.ListPosts)
	admin.Post("/showcase/bulk", h.Moderation.BulkPosts)
	admin.Put("/showcase/:id/status", h.Moderation.SetPostStatus)
	admin.Post("/showcase/:id/repost", h.Moderation.RepostPost)
	admin.Delete("/showcase/:id", h.Moderation.DeletePost)

	admin.Get("/stats", h.Moderation.Stats)
}
