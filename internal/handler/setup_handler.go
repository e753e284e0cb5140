package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/model"
)

// defaultPlans is the starter catalogue seeded into fresh deployments.
// Existing plans with the same name are left untouched.
var defaultPlans = []model.MembershipPlan{
	{
		Name:         "Basic",
		Description:  "Gym floor access during staffed hours",
		Price:        29.99,
		DurationDays: 30,
		Features:     []string{"gym_access"},
		Active:       true,
	},
	{
		Name:         "Standard",
		Description:  "Gym floor plus group classes",
		Price:        49.99,
		DurationDays: 30,
		Features:     []string{"gym_access", "group_classes"},
		Active:       true,
	},
	{
		Name:         "Premium",
		Description:  "Everything in Standard plus two personal sessions a month",
		Price:        89.99,
		DurationDays: 30,
		Features:     []string{"gym_access", "group_classes", "personal_sessions", "sauna"},
		Active:       true,
	},
	{
		Name:         "Annual",
		Description:  "Twelve months of Standard at a discount",
		Price:        499.99,
		DurationDays: 365,
		Features:     []string{"gym_access", "group_classes"},
		Active:       true,
	},
}

func (h *Handler) SeedMembershipPlans(c *fiber.Ctx) error {
	plans := make([]model.MembershipPlan, len(defaultPlans))
	copy(plans, defaultPlans)
	for i := range plans {
		plans[i].ID = uuid.New().String()
	}

	inserted, err := h.store.SeedPlans(c.Context(), plans)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"inserted": inserted, "skipped": len(plans) - inserted})
}

func (h *Handler) EnsureSessionSchema(c *fiber.Ctx) error {
	if err := h.store.EnsureSessionSchema(c.Context()); err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
