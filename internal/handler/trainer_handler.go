package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"gym-management-api/internal/model"
	"gym-management-api/internal/schedule"
)

type trainerRequest struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Specialization string  `json:"specialization"`
	HourlyRate     float64 `json:"hourlyRate"`
	Active         *bool   `json:"active"`
}

func (r trainerRequest) validate() string {
	if r.FirstName == "" {
		return "First name is required"
	}
	if r.LastName == "" {
		return "Last name is required"
	}
	if r.Email == "" {
		return "Email is required"
	}
	if r.HourlyRate < 0 {
		return "Hourly rate must not be negative"
	}
	return ""
}

func (r trainerRequest) active() bool {
	if r.Active == nil {
		return true
	}
	return *r.Active
}

func (h *Handler) ListTrainers(c *fiber.Ctx) error {
	trainers, err := h.store.ListTrainers(c.Context(), c.Query("active") == "true")
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"trainers": trainers})
}

func (h *Handler) GetTrainer(c *fiber.Ctx) error {
	t, err := h.store.GetTrainer(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(t)
}

func (h *Handler) CreateTrainer(c *fiber.Ctx) error {
	var req trainerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	t := &model.Trainer{
		ID:             uuid.New().String(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		HourlyRate:     req.HourlyRate,
		Active:         req.active(),
	}
	if err := h.store.CreateTrainer(c.Context(), t); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

func (h *Handler) UpdateTrainer(c *fiber.Ctx) error {
	var req trainerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	t := &model.Trainer{
		ID:             c.Params("id"),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		HourlyRate:     req.HourlyRate,
		Active:         req.active(),
	}
	if err := h.store.UpdateTrainer(c.Context(), t); err != nil {
		return h.storeErr(c, err)
	}
	updated, err := h.store.GetTrainer(c.Context(), t.ID)
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) DeleteTrainer(c *fiber.Ctx) error {
	if err := h.store.DeleteTrainer(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) TrainerStats(c *fiber.Ctx) error {
	st, err := h.store.TrainerStats(c.Context())
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(st)
}

type availabilityRequest struct {
	DayOfWeek     int     `json:"dayOfWeek"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	EffectiveFrom *string `json:"effectiveFrom"`
	EffectiveTo   *string `json:"effectiveTo"`
	IsAvailable   *bool   `json:"isAvailable"`
}

func (h *Handler) ListAvailability(c *fiber.Ctx) error {
	windows, err := h.store.ListAvailability(c.Context(), c.Params("id"))
	if err != nil {
		return h.storeErr(c, err)
	}
	return c.JSON(fiber.Map{"availability": windows})
}

func (h *Handler) CreateAvailability(c *fiber.Ctx) error {
	var req availabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return badRequest(c, "dayOfWeek must be between 0 and 6")
	}
	from, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return badRequest(c, "startTime must be HH:MM")
	}
	to, err := schedule.ParseClock(req.EndTime)
	if err != nil {
		return badRequest(c, "endTime must be HH:MM")
	}
	if to <= from {
		return badRequest(c, "endTime must be after startTime")
	}

	a := &model.TrainerAvailability{
		ID:          uuid.New().String(),
		TrainerID:   c.Params("id"),
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		a.IsAvailable = *req.IsAvailable
	}
	if req.EffectiveFrom != nil {
		d, err := time.Parse("2006-01-02", *req.EffectiveFrom)
		if err != nil {
			return badRequest(c, "effectiveFrom must be YYYY-MM-DD")
		}
		a.EffectiveFrom = &d
	}
	if req.EffectiveTo != nil {
		d, err := time.Parse("2006-01-02", *req.EffectiveTo)
		if err != nil {
			return badRequest(c, "effectiveTo must be YYYY-MM-DD")
		}
		a.EffectiveTo = &d
	}

	if err := h.store.CreateAvailability(c.Context(), a); err != nil {
		return h.storeErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(a)
}

func (h *Handler) DeleteAvailability(c *fiber.Ctx) error {
	if err := h.store.DeleteAvailability(c.Context(), c.Params("id")); err != nil {
		return h.storeErr(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
