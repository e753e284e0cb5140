package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"gym-management-api/internal/middleware"
	"gym-management-api/internal/store"
)

type Handler struct {
	store  *store.Store
	log    *zap.Logger
	secret string
}

func New(st *store.Store, log *zap.Logger, secret string) *Handler {
	return &Handler{store: st, log: log, secret: secret}
}

// Mount registers all routes. Register/login are rate limited; everything
// else requires a bearer token; setup endpoints require the admin role.
func (h *Handler) Mount(app *fiber.App, rl *middleware.RateLimiter) {
	limited := middleware.RateLimit(rl)
	app.Post("/api/auth/register", limited, h.RegisterUser)
	app.Post("/api/auth/login", limited, h.Login)

	api := app.Group("/api", middleware.Protected(h.secret))

	api.Get("/members", h.ListMembers)
	api.Post("/members", h.CreateMember)
	api.Get("/members/stats", h.MemberStats)
	api.Get("/members/export", h.ExportMembers)
	api.Get("/members/:id", h.GetMember)
	api.Put("/members/:id", h.UpdateMember)
	api.Delete("/members/:id", h.DeleteMember)
	api.Post("/members/:id/freeze", h.FreezeMember)
	api.Delete("/members/:id/freeze", h.UnfreezeMember)

	api.Get("/trainers", h.ListTrainers)
	api.Post("/trainers", h.CreateTrainer)
	api.Get("/trainers/stats", h.TrainerStats)
	api.Get("/trainers/:id", h.GetTrainer)
	api.Put("/trainers/:id", h.UpdateTrainer)
	api.Delete("/trainers/:id", h.DeleteTrainer)
	api.Get("/trainers/:id/availability", h.ListAvailability)
	api.Post("/trainers/:id/availability", h.CreateAvailability)
	api.Delete("/availability/:id", h.DeleteAvailability)

	api.Get("/plans", h.ListPlans)
	api.Post("/plans", h.CreatePlan)
	api.Get("/plans/:id", h.GetPlan)
	api.Put("/plans/:id", h.UpdatePlan)
	api.Delete("/plans/:id", h.DeletePlan)

	api.Get("/subscriptions", h.ListSubscriptions)
	api.Post("/subscriptions", h.CreateSubscription)
	api.Get("/subscriptions/stats", h.SubscriptionStats)
	api.Get("/subscriptions/:id", h.GetSubscription)
	api.Put("/subscriptions/:id", h.UpdateSubscription)
	api.Delete("/subscriptions/:id", h.DeleteSubscription)

	api.Get("/sessions", h.ListSessions)
	api.Post("/sessions", h.CreateSession)
	api.Post("/sessions/check-conflicts", h.CheckConflicts)
	api.Get("/sessions/conflicts", h.ListConflictLog)
	api.Get("/sessions/stats", h.SessionStats)
	api.Get("/sessions/export", h.ExportSessions)
	api.Get("/sessions/:id", h.GetSession)
	api.Put("/sessions/:id", h.UpdateSession)
	api.Delete("/sessions/:id", h.DeleteSession)
	api.Post("/sessions/:id/confirm", h.ConfirmSession)
	api.Post("/sessions/:id/start", h.StartSession)
	api.Post("/sessions/:id/complete", h.CompleteSession)
	api.Post("/sessions/:id/cancel", h.CancelSession)
	api.Post("/sessions/:id/reschedule", h.RescheduleSession)
	api.Post("/sessions/:id/no-show", h.MarkNoShow)
	api.Get("/sessions/:id/comments", h.ListComments)
	api.Post("/sessions/:id/comments", h.CreateComment)

	setup := api.Group("/setup", middleware.RequireAdmin())
	setup.Post("/membership-plans", h.SeedMembershipPlans)
	setup.Post("/training-sessions-schema", h.EnsureSessionSchema)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

// storeErr maps store sentinels onto HTTP statuses; anything unexpected is
// logged and reported as a generic internal error.
func (h *Handler) storeErr(c *fiber.Ctx, err error) error {
	var illegal *store.IllegalTransitionError
	switch {
	case errors.Is(err, store.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, store.ErrReferenced),
		errors.Is(err, store.ErrOverlap):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &illegal):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": illegal.Error()})
	default:
		h.log.Error("store error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
