package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/model"
)

type planRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"durationDays"`
	Features     []string `json:"features"`
	Active       *bool    `json:"active"`
}

func (r planRequest) validate() string {
	if r.Name == "" {
		return "Plan name is required"
	}
	if r.Price < 0 {
		return "Price must not be negative"
	}
	if r.DurationDays <= 0 {
		return "Duration must be positive"
	}
	return ""
}

func (h *Handler) ListPlans(c *fiber.Ctx) error {
	plans, err := h.store.ListPlans(c.Context(), c.Query("active") == "true")
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"plans": plans})
}

func (h *Handler) GetPlan(c *fiber.Ctx) error {
	p, err := h.store.GetPlan(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) CreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	p := &model.MembershipPlan{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Features:     req.Features,
		Active:       req.Active == nil || *req.Active,
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if err := h.store.CreatePlan(c.Context(), p); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *Handler) UpdatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	p := &model.MembershipPlan{
		ID:           c.Params("id"),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		Features:     req.Features,
		Active:       req.Active == nil || *req.Active,
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	if err := h.store.UpdatePlan(c.Context(), p); err != nil {
		return h.storeErr(c, err)
	}
	updated, err := h.store.GetPlan(c.Context(), p.ID)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeletePlan(c *fiber.Ctx) error {
	if err := h.store.DeletePlan(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
