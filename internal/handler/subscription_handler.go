package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/model"
)

type subscriptionRequest struct {
	MemberID  string   `json:"memberId"`
	PlanID    string   `json:"planId"`
	StartDate string   `json:"startDate"`
	Status    string   `json:"status"`
	Price     *float64 `json:"price"`
}

var subscriptionStatuses = map[string]bool{
	"active": true, "frozen": true, "cancelled": true, "expired": true,
}

func (h *Handler) ListSubscriptions(c *fiber.Ctx) error {
	subs, err := h.store.ListSubscriptions(c.Context(), c.Query("memberId"), c.Query("status"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"subscriptions": subs})
}

func (h *Handler) GetSubscription(c *fiber.Ctx) error {
	sub, err := h.store.GetSubscription(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(sub)
}

// CreateSubscription derives the end date and default price from the plan.
func (h *Handler) CreateSubscription(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.MemberID == "" {
		return badRequest(c, "Member is required")
	}
	if req.PlanID == "" {
		return badRequest(c, "Plan is required")
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		d, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return badRequest(c, "startDate must be YYYY-MM-DD")
		}
		start = d
	}

	plan, err := h.store.GetPlan(c.Context(), req.PlanID)
	if err != nil {
		return h.storeErr(c, err)
	}

	price := plan.Price
	if req.Price != nil {
		price = *req.Price
	}

	sub := &model.Subscription{
		ID:        uuid.New().String(),
		MemberID:  req.MemberID,
		PlanID:    req.PlanID,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, plan.DurationDays),
		Status:    "active",
		Price:     price,
	}
	if err := h.store.CreateSubscription(c.Context(), sub); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sub)
}

func (h *Handler) UpdateSubscription(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	current, err := h.store.GetSubscription(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}

	if req.PlanID != "" {
		current.PlanID = req.PlanID
	}
	if req.StartDate != "" {
		d, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			return badRequest(c, "startDate must be YYYY-MM-DD")
		}
		current.StartDate = d
	}
	if req.Status != "" {
		if !subscriptionStatuses[req.Status] {
			return badRequest(c, "unknown subscription status")
		}
		current.Status = req.Status
	}
	if req.Price != nil {
		current.Price = *req.Price
	}

	plan, err := h.store.GetPlan(c.Context(), current.PlanID)
	if err != nil {
		return h.storeErr(c, err)
	}
	current.EndDate = current.StartDate.AddDate(0, 0, plan.DurationDays)

	if err := h.store.UpdateSubscription(c.Context(), current); err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(current)
}

func (h *Handler) DeleteSubscription(c *fiber.Ctx) error {
	if err := h.store.DeleteSubscription(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) SubscriptionStats(c *fiber.Ctx) error {
	st, err := h.store.SubscriptionStats(c.Context())
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(st)
}
